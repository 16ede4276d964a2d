// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the append-only chat transcript and the rules
// for turning submissions and responses into entries.
//
// Entries are never mutated or removed once appended. The edit affordance
// on a user entry recalls the original question text into the input; it
// does not touch the transcript. Bot responses come in two shapes: a plain
// answer, and a document-validation result rendered as one card per
// record. Malformed validation records are skipped with a diagnostic and
// never retried; their siblings still render.
package transcript
