// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle owns the chat request state machine.
//
// A Controller turns user intents (Send, Cancel) into at most one in-flight
// backend query at a time:
//
//	Idle → Sending → InFlight → {Completed, Cancelled, TimedOut, Failed} → Idle
//
// A Send intent while a request is in flight is reinterpreted as a Cancel
// intent; a second concurrent request is never started. The cancellation
// token, the deadline and the "user cancelled" flag all live on the request
// instance, never on shared state, so rapid cancel-then-resend sequences
// cannot misattribute one request's outcome to another. Every exit path
// releases the request's resources exactly once and emits a state-change
// event before the controller resets to Idle.
package lifecycle
