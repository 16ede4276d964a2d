// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/iatoolkit/iachat-tui/internal/ui/styles"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns transcript entries into styled terminal text.
type Renderer struct {
	theme          *styles.Theme
	markdown       *glamour.TermRenderer
	showTimestamps bool
	width          int
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	Theme          *styles.Theme
	Markdown       bool
	ShowTimestamps bool
	Width          int
}

// NewRenderer builds a renderer. Markdown rendering degrades to plain text
// when the glamour renderer cannot be constructed.
func NewRenderer(opts RendererOptions) *Renderer {
	if opts.Theme == nil {
		opts.Theme = styles.New()
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}

	r := &Renderer{
		theme:          opts.Theme,
		showTimestamps: opts.ShowTimestamps,
		width:          opts.Width,
	}
	if opts.Markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(opts.Width),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// SetWidth resizes the renderer. The markdown renderer is rebuilt so word
// wrap tracks the terminal.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 || width == r.width {
		return
	}
	r.width = width
	if r.markdown != nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.markdown = md
		}
	}
}

// RenderMessage produces the styled block for one entry.
func (r *Renderer) RenderMessage(m Message) string {
	var b strings.Builder

	b.WriteString(r.header(m))
	b.WriteString("\n")
	b.WriteString(r.body(m))

	for _, card := range m.Cards {
		b.WriteString("\n")
		b.WriteString(r.RenderCard(card))
	}

	if m.Editable {
		b.WriteString("\n")
		b.WriteString(r.theme.EditHint.Render("ctrl+e to edit and resend"))
	}

	return b.String()
}

func (r *Renderer) header(m Message) string {
	var label string
	switch m.Role {
	case RoleUser:
		label = r.theme.UserLabel.Render(m.Role.DisplayName())
	case RoleBot:
		label = r.theme.BotLabel.Render(m.Role.DisplayName())
	default:
		label = r.theme.SystemLabel.Render(m.Role.DisplayName())
	}

	if r.showTimestamps {
		ts := r.theme.Timestamp.Render(m.Timestamp.Format("15:04:05"))
		return label + " " + ts
	}
	return label
}

func (r *Renderer) body(m Message) string {
	if m.IsError {
		return r.theme.ErrorText.Render(m.Content)
	}
	if m.Role == RoleBot && r.markdown != nil {
		out, err := r.markdown.Render(m.Content)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return m.Content
}

// RenderCard produces the bordered block for one document-validation result:
// the filename, a type badge, and either a success notice or the itemized
// rejection causes.
func (r *Renderer) RenderCard(card ValidationCard) string {
	var b strings.Builder

	title := r.theme.CardTitle.Render(card.DocumentName)
	badge := r.theme.TypeBadge.Render(card.DocumentType)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge))
	b.WriteString("\n")

	if card.Valid {
		b.WriteString(r.theme.CardValid.Render("✓ Document accepted"))
	} else {
		b.WriteString(r.theme.CardInvalid.Render("✗ Document rejected"))
		for _, cause := range card.Causes {
			b.WriteString("\n")
			b.WriteString(r.theme.CardCauseDot.Render(fmt.Sprintf("  • %s", cause)))
		}
	}

	inner := b.String()
	width := r.width - 4
	if width < 20 {
		width = 20
	}
	return r.theme.CardBorder.Width(width).Render(inner)
}
