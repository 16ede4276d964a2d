// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session construction errors.
var (
	ErrNoBaseURL = errors.New("session requires a backend base URL")
	ErrNoCompany = errors.New("session requires a company short name")
	ErrNoUser    = errors.New("session requires an external user identifier")
)

// Session is the immutable per-run identity used for every outbound query.
type Session struct {
	// ID identifies this client run (logging and diagnostics only).
	ID string

	// Token is the backend session token. Empty means unauthenticated;
	// the transport then omits the token header entirely.
	Token string

	// ExternalUserID is forwarded as external_user_id on every query.
	ExternalUserID string

	// BaseURL is the backend base URL without a trailing slash.
	BaseURL string

	// Company is the tenant short name used in the query path.
	Company string

	// StartedAt is when this session was created.
	StartedAt time.Time
}

// New builds a Session, validating the parts every query depends on.
func New(baseURL, company, externalUserID, token string) (Session, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return Session{}, ErrNoBaseURL
	}
	if strings.TrimSpace(company) == "" {
		return Session{}, ErrNoCompany
	}
	if strings.TrimSpace(externalUserID) == "" {
		return Session{}, ErrNoUser
	}
	return Session{
		ID:             uuid.NewString(),
		Token:          strings.TrimSpace(token),
		ExternalUserID: externalUserID,
		BaseURL:        baseURL,
		Company:        company,
		StartedAt:      time.Now(),
	}, nil
}

// Authenticated reports whether a session token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
