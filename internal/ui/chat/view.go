// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/iatoolkit/iachat-tui/internal/util"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the complete chat interface: transcript viewport, input
// line, and status bar. The input line doubles as the in-flight indicator;
// the two are mutually exclusive by construction.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.vp.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spin.View())
		b.WriteString(" waiting for response")
		b.WriteString(m.theme.StopAffordance.Render("  esc to stop"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusBar())

	return b.String()
}

// statusBar summarizes session and form state on one line.
func (m Model) statusBar() string {
	var parts []string

	if m.cfg != nil {
		parts = append(parts, m.theme.StatusKey.Render("company ")+
			m.theme.StatusValue.Render(m.cfg.Server.Company))
	}
	if m.promptName != "" {
		parts = append(parts, m.theme.StatusKey.Render("prompt ")+
			m.theme.StatusValue.Render(m.promptName))
	}
	if m.fieldValue != "" {
		parts = append(parts, m.theme.StatusKey.Render(m.fieldLabel()+" ")+
			m.theme.StatusValue.Render(m.fieldValue))
	}
	if s := m.attachmentSummary(); s != "" {
		parts = append(parts, m.theme.StatusKey.Render("attached ")+
			m.theme.StatusValue.Render(s))
	}
	if m.notice != "" {
		// Notices can carry multi-line error text; the bar shows one line.
		notice := util.FirstLine(m.notice)
		if m.width > 40 {
			notice = util.TruncateWidth(notice, m.width/2)
		}
		parts = append(parts, m.theme.Notice.Render(notice))
	}

	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}
