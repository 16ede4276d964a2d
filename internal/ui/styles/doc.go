// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the iachat TUI.
package styles
