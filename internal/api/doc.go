// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the IAToolkit llm_query
// endpoint.
//
// Query returns a single Outcome no matter how the call ends: success,
// user cancellation, deadline expiry, server error, connectivity failure,
// or an undecodable body. Callers handle exactly one result per request;
// there is no second channel for errors to leak through. Failures are
// terminal: the client never retries, resubmission is a fresh user intent.
package api
