// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/payload"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const helpText = `Available commands:
  /help              Show this help
  /prompt            List configured prompts
  /prompt <name>     Select a prompt for the next submission
  /prompt off        Clear the prompt selection
  /attach <path>     Attach a file to the next submission
  /attachments       List pending attachments
  /detach <n>        Remove attachment number n
  /field <value>     Set the extra field (empty to clear)
  /clear             Clear the transcript
  /quit              Exit

Enter submits. While a request is in flight, Enter or Esc stops it.
Ctrl+E recalls your last question for editing.`

// runCommand executes one slash command. The input line is consumed either
// way; unknown commands produce a notice, not a submission.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(line)
	name := parts[0]
	args := parts[1:]

	switch name {
	case "/help":
		m.transcript.AppendSystem(helpText)
		m.refreshViewport()
		return m, nil

	case "/prompt":
		return m.cmdPrompt(args)

	case "/attach":
		return m.cmdAttach(args)

	case "/attachments":
		return m.cmdAttachments()

	case "/detach":
		return m.cmdDetach(args)

	case "/field":
		return m.cmdField(args)

	case "/clear":
		m.transcript.Clear()
		m.refreshViewport()
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	default:
		return m.withNotice(fmt.Sprintf("unknown command %s, try /help", name))
	}
}

func (m Model) cmdPrompt(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		if m.cfg == nil || len(m.cfg.Prompts) == 0 {
			return m.withNotice("no prompts configured")
		}
		var b strings.Builder
		b.WriteString("Configured prompts:\n")
		for _, p := range m.cfg.Prompts {
			marker := "  "
			if p.Name == m.promptName {
				marker = "* "
			}
			fmt.Fprintf(&b, "%s%s - %s\n", marker, p.Name, p.Description)
		}
		m.transcript.AppendSystem(strings.TrimRight(b.String(), "\n"))
		m.refreshViewport()
		return m, nil
	}

	if args[0] == "off" {
		m.promptName = ""
		m.promptDescription = ""
		return m.withNotice("prompt cleared")
	}

	if m.cfg == nil {
		return m.withNotice("no prompts configured")
	}
	p, ok := m.cfg.PromptByName(args[0])
	if !ok {
		return m.withNotice(fmt.Sprintf("unknown prompt %q", args[0]))
	}
	m.promptName = p.Name
	m.promptDescription = p.Description
	return m.withNotice(fmt.Sprintf("prompt %q selected", p.Name))
}

func (m Model) cmdAttach(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.withNotice("usage: /attach <path>")
	}
	path := strings.Join(args, " ")

	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("attachment read failed", zap.String("path", path), zap.Error(err))
		return m.withNotice(fmt.Sprintf("cannot read %s", path))
	}
	if m.cfg != nil && int64(len(data)) > m.cfg.Server.MaxAttachmentBytes {
		return m.withNotice(fmt.Sprintf("%s exceeds the %d byte attachment limit",
			filepath.Base(path), m.cfg.Server.MaxAttachmentBytes))
	}

	m.attachments = append(m.attachments, payload.Attachment{
		Filename: filepath.Base(path),
		Data:     data,
	})
	return m.withNotice(fmt.Sprintf("attached %s (%d bytes)", filepath.Base(path), len(data)))
}

func (m Model) cmdAttachments() (tea.Model, tea.Cmd) {
	if len(m.attachments) == 0 {
		return m.withNotice("no attachments pending")
	}
	var b strings.Builder
	b.WriteString("Pending attachments:\n")
	for i, a := range m.attachments {
		fmt.Fprintf(&b, "  %d. %s (%d bytes)\n", i+1, a.Filename, len(a.Data))
	}
	m.transcript.AppendSystem(strings.TrimRight(b.String(), "\n"))
	m.refreshViewport()
	return m, nil
}

func (m Model) cmdDetach(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.withNotice("usage: /detach <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(m.attachments) {
		return m.withNotice(fmt.Sprintf("no attachment number %s", args[0]))
	}
	removed := m.attachments[n-1].Filename
	m.attachments = append(m.attachments[:n-1], m.attachments[n:]...)
	return m.withNotice(fmt.Sprintf("detached %s", removed))
}

func (m Model) cmdField(args []string) (tea.Model, tea.Cmd) {
	if m.cfg == nil || !m.cfg.Field.Enabled {
		return m.withNotice("no extra field is configured")
	}
	if len(args) == 0 {
		m.fieldValue = ""
		return m.withNotice(fmt.Sprintf("%s cleared", m.fieldLabel()))
	}
	m.fieldValue = strings.Join(args, " ")
	return m.withNotice(fmt.Sprintf("%s set to %q", m.fieldLabel(), m.fieldValue))
}

func (m Model) fieldLabel() string {
	if m.cfg != nil && m.cfg.Field.Label != "" {
		return m.cfg.Field.Label
	}
	return "field"
}
