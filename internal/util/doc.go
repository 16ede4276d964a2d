// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string helpers for the status bar.
//
// Everything here is display-oriented: width-aware truncation that
// accounts for double-width (CJK) characters, and first-line extraction
// for single-line displays of multi-line errors.
package util
