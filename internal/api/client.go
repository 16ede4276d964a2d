// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/payload"
	"github.com/iatoolkit/iachat-tui/internal/session"
)

// MaxResponseSize caps response bodies to prevent memory exhaustion from a
// misbehaving backend.
const MaxResponseSize = 10 * 1024 * 1024

// Sentinel errors for outcome classification.
var (
	// ErrCancelled indicates the request context was cancelled before a
	// response arrived.
	ErrCancelled = errors.New("request cancelled")

	// ErrDeadline indicates the request deadline expired.
	ErrDeadline = errors.New("request deadline exceeded")

	// ErrConnectivity indicates no response could be obtained at all.
	ErrConnectivity = errors.New("no response from server")

	// ErrMalformedResponse indicates a success status with an undecodable body.
	ErrMalformedResponse = errors.New("malformed response body")
)

// User-facing outcome messages. The cancellation and timeout wordings are
// deliberately distinct; tests assert they are never swapped.
const (
	MsgCancelled    = "Request cancelled."
	MsgTimedOut     = "The request timed out. Please resubmit your question."
	MsgConnectivity = "Could not reach the server. Check your connection and try again."
	MsgServerError  = "The server could not process the request."
	MsgMalformed    = "The server returned an unreadable response."
)

// ServerError is a non-success response whose body carried (or failed to
// carry) an error_message.
type ServerError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// QueryResponse is a successful llm_query reply.
type QueryResponse struct {
	Answer        string         `json:"answer"`
	AditionalData *AditionalData `json:"aditional_data,omitempty"`
}

// AditionalData carries structured extras alongside the answer. The field
// name matches the backend's spelling on the wire.
type AditionalData struct {
	ClassifyDocuments []map[string]any `json:"classify_documents,omitempty"`
}

// errorResponse is the error body shape for non-success statuses.
type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

// =============================================================================
// OUTCOME
// =============================================================================

// Status classifies how a request ended.
type Status int

const (
	StatusCompleted Status = iota
	StatusCancelled
	StatusTimedOut
	StatusFailed
)

// String returns the status name for logs and tests.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the single funnel every request resolves through. Exactly one
// Outcome is produced per Query call; Response is set only for
// StatusCompleted, Err and Message for everything else.
type Outcome struct {
	Status   Status
	Response *QueryResponse
	Err      error
	Message  string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues llm_query calls for one session. Timeouts are owned by the
// caller's context, not the http.Client, so the controller's deadline is
// the only deadline in play.
type Client struct {
	sess   session.Session
	header string // session token header name
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Client for the given session. tokenHeader names the
// header used to forward the session token when one exists.
func NewClient(sess session.Session, tokenHeader string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		sess:   sess,
		header: tokenHeader,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// endpoint returns the tenant-scoped query URL.
func (c *Client) endpoint() string {
	return c.sess.BaseURL + "/" + c.sess.Company + "/llm_query"
}

// Query posts the assembled payload and classifies the result. All paths
// (cancellation, timeout, server error, connectivity failure, malformed
// body, success) converge on the returned Outcome.
func (c *Client) Query(ctx context.Context, q *payload.Query) Outcome {
	body, err := json.Marshal(q)
	if err != nil {
		// Marshalling a plain struct of strings cannot realistically fail;
		// treat it as a transport failure rather than panic.
		return Outcome{Status: StatusFailed, Err: err, Message: MsgConnectivity}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: StatusFailed, Err: err, Message: MsgConnectivity}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sess.Authenticated() {
		req.Header.Set(c.header, c.sess.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		// Interruption while reading the body is still a cancel/timeout.
		if out, interrupted := c.interruption(ctx); interrupted {
			return out
		}
		c.logger.Warn("llm_query body read failed", zap.Error(err))
		return Outcome{Status: StatusFailed, Err: ErrConnectivity, Message: MsgConnectivity}
	}

	c.logger.Debug("llm_query response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyServerError(resp.StatusCode, raw)
	}

	var qr QueryResponse
	if err := json.Unmarshal(raw, &qr); err != nil {
		c.logger.Warn("llm_query returned undecodable success body", zap.Error(err))
		return Outcome{
			Status:  StatusFailed,
			Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, err),
			Message: MsgMalformed,
		}
	}

	return Outcome{Status: StatusCompleted, Response: &qr}
}

// classifyTransportError distinguishes cancellation, deadline expiry and
// connectivity failures. No response body exists on any of these paths, so
// nothing is parsed.
func (c *Client) classifyTransportError(ctx context.Context, err error) Outcome {
	if out, interrupted := c.interruption(ctx); interrupted {
		return out
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Outcome{Status: StatusCancelled, Err: ErrCancelled, Message: MsgCancelled}
	case errors.Is(err, context.DeadlineExceeded):
		return Outcome{Status: StatusTimedOut, Err: ErrDeadline, Message: MsgTimedOut}
	default:
		c.logger.Warn("llm_query transport failure", zap.Error(err))
		return Outcome{
			Status:  StatusFailed,
			Err:     fmt.Errorf("%w: %v", ErrConnectivity, err),
			Message: MsgConnectivity,
		}
	}
}

// interruption maps a done context to its outcome. The context is the
// source of truth: Canceled means the token was signalled, DeadlineExceeded
// means the timer fired first.
func (c *Client) interruption(ctx context.Context) (Outcome, bool) {
	switch ctx.Err() {
	case context.Canceled:
		return Outcome{Status: StatusCancelled, Err: ErrCancelled, Message: MsgCancelled}, true
	case context.DeadlineExceeded:
		return Outcome{Status: StatusTimedOut, Err: ErrDeadline, Message: MsgTimedOut}, true
	default:
		return Outcome{}, false
	}
}

// classifyServerError attempts to decode {error_message} from a non-success
// body, falling back to the generic server message when the body is
// unparsable or the field is blank.
func (c *Client) classifyServerError(status int, raw []byte) Outcome {
	msg := MsgServerError
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.ErrorMessage != "" {
		msg = er.ErrorMessage
	}
	c.logger.Warn("llm_query server error", zap.Int("status", status), zap.String("message", msg))
	return Outcome{
		Status:  StatusFailed,
		Err:     &ServerError{Status: status, Message: msg},
		Message: msg,
	}
}

// readBody reads the response body under the size cap.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded %d bytes", MaxResponseSize)
	}
	return raw, nil
}
