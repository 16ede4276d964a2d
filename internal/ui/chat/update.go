// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/lifecycle"
	"github.com/iatoolkit/iachat-tui/internal/transcript"
)

const noticeDuration = 3 * time.Second

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case LifecycleEventMsg:
		return m.handleLifecycleEvent(msg.Event)

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.renderer = transcript.NewRenderer(transcript.RendererOptions{
			Theme:          m.theme,
			Markdown:       msg.Config.UI.Markdown,
			ShowTimestamps: msg.Config.UI.ShowTimestamps,
			Width:          m.width,
		})
		m.refreshViewport()
		return m.withNotice("configuration reloaded")

	case ConfigReloadFailedMsg:
		return m.withNotice("config reload failed, keeping previous settings")

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.busy {
			return m.cancelInFlight()
		}
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.busy {
			return m.cancelInFlight()
		}
		return m, nil

	case "enter":
		return m.handleEnter()

	case "ctrl+e":
		return m.recallLastQuestion()

	case "pgup":
		m.vp.LineUp(m.vp.Height / 2)
		return m, nil

	case "pgdown":
		m.vp.LineDown(m.vp.Height / 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter interprets the submit affordance. While a request is in
// flight the affordance reads "stop" and maps to a Cancel intent.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.busy {
		return m.cancelInFlight()
	}

	value := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(value, "/") {
		return m.runCommand(value)
	}

	err := m.controller.Send(m.form())
	if err != nil {
		if errors.Is(err, lifecycle.ErrEmptySubmission) {
			return m.withNotice(err.Error())
		}
		m.logger.Warn("submission rejected", zap.Error(err))
		return m.withNotice(err.Error())
	}

	// Accepted. The Sending event echoes the submission; the form's
	// one-shot parts are consumed now so they cannot leak into the next
	// submission.
	m.clearForm()
	return m, nil
}

func (m Model) cancelInFlight() (tea.Model, tea.Cmd) {
	if err := m.controller.Cancel(); err != nil {
		m.logger.Debug("cancel intent ignored", zap.Error(err))
	}
	return m, nil
}

// recallLastQuestion copies the most recent editable question back into the
// input. The transcript entry itself is never mutated.
func (m Model) recallLastQuestion() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	entry, ok := m.transcript.LastEditable()
	if !ok {
		return m.withNotice("nothing to edit")
	}
	m.input.SetValue(entry.Question)
	m.input.CursorEnd()
	return m, nil
}

// =============================================================================
// LIFECYCLE EVENTS
// =============================================================================

// handleLifecycleEvent projects a controller event onto the view. Events
// for a request other than the one being tracked are stale and ignored,
// except Sending, which starts tracking a new request.
func (m Model) handleLifecycleEvent(ev lifecycle.Event) (tea.Model, tea.Cmd) {
	switch ev.State {
	case lifecycle.StateSending:
		m.busy = true
		m.requestID = ev.RequestID
		m.notice = ""
		m.transcript.AppendUser(ev.Snapshot)
		m.refreshViewport()
		return m, m.spin.Tick

	case lifecycle.StateInFlight:
		return m, nil
	}

	if !ev.State.Terminal() || ev.RequestID != m.requestID {
		return m, nil
	}

	m.busy = false
	m.requestID = ""

	if ev.Outcome == nil {
		return m, nil
	}
	switch ev.State {
	case lifecycle.StateCompleted:
		m.transcript.AppendBot(ev.Outcome.Response)
	default:
		m.transcript.AppendError(ev.Outcome.Message)
	}
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// LAYOUT AND HELPERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// One line each for input and status bar, plus a separator.
	vpHeight := msg.Height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.vp = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.vp.Width = msg.Width
		m.vp.Height = vpHeight
	}
	m.input.Width = msg.Width - 4
	m.renderer.SetWidth(msg.Width)
	m.refreshViewport()
	return m
}

// refreshViewport rebuilds the viewport content from the transcript and
// follows the tail.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	msgs := m.transcript.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, entry := range msgs {
		blocks = append(blocks, m.renderer.RenderMessage(entry))
	}
	m.vp.SetContent(strings.Join(blocks, "\n\n"))
	m.vp.GotoBottom()
}

// withNotice shows a transient status notice.
func (m Model) withNotice(text string) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq
	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
