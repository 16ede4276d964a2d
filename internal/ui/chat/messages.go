// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/iatoolkit/iachat-tui/internal/config"
	"github.com/iatoolkit/iachat-tui/internal/lifecycle"
)

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================
// These arrive via program.Send from goroutines outside the Bubble Tea loop.

// LifecycleEventMsg wraps a controller event. The controller's notify hook
// forwards every event here; the view is a pure projection of them.
type LifecycleEventMsg struct {
	Event lifecycle.Event
}

// ConfigReloadedMsg announces a successful config hot reload.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ConfigReloadFailedMsg announces a failed reload. The previous config
// stays in effect.
type ConfigReloadFailedMsg struct {
	Err error
}

// =============================================================================
// INTERNAL MESSAGES
// =============================================================================

// noticeExpiredMsg clears a transient status notice.
type noticeExpiredMsg struct {
	seq int
}
