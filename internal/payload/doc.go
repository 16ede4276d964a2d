// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payload assembles the outbound llm_query request body.
//
// A Snapshot captures the form state by value the moment a submission
// begins, so later edits to the input cannot mutate an in-flight payload.
// Attachment contents are base64-encoded concurrently, one goroutine per
// file, and Assemble joins on every encoding before returning: a Query can
// never carry a partially encoded file list.
package payload
