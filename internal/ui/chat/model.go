// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/config"
	"github.com/iatoolkit/iachat-tui/internal/lifecycle"
	"github.com/iatoolkit/iachat-tui/internal/payload"
	"github.com/iatoolkit/iachat-tui/internal/transcript"
	"github.com/iatoolkit/iachat-tui/internal/ui/styles"
)

// Controller is the lifecycle surface the view drives. It is satisfied by
// *lifecycle.Controller; tests substitute fakes.
type Controller interface {
	Send(form lifecycle.FormState) error
	Cancel() error
	State() lifecycle.State
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns only
// presentation state; lifecycle state belongs to the controller and reaches
// the view as events.
type Model struct {
	controller Controller
	transcript *transcript.Transcript
	renderer   *transcript.Renderer
	cfg        *config.Config
	theme      *styles.Theme
	logger     *zap.Logger

	input textinput.Model
	vp    viewport.Model
	spin  spinner.Model

	// Form state outside the input line
	promptName        string
	promptDescription string
	fieldValue        string
	attachments       []payload.Attachment

	// Projection of the controller's lifecycle state
	busy      bool
	requestID string

	// Transient status notice
	notice    string
	noticeSeq int

	width    int
	height   int
	ready    bool
	quitting bool
}

// Options configures a chat Model.
type Options struct {
	Controller Controller
	Transcript *transcript.Transcript
	Config     *config.Config
	Theme      *styles.Theme
	Logger     *zap.Logger
}

// New creates the chat view.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Transcript == nil {
		opts.Transcript = transcript.New(opts.Logger)
	}

	ti := textinput.New()
	ti.Placeholder = "Type a question, or /help"
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	m := Model{
		controller: opts.Controller,
		transcript: opts.Transcript,
		cfg:        opts.Config,
		theme:      opts.Theme,
		logger:     opts.Logger,
		input:      ti,
		spin:       sp,
	}
	m.renderer = transcript.NewRenderer(transcript.RendererOptions{
		Theme:          opts.Theme,
		Markdown:       opts.Config != nil && opts.Config.UI.Markdown,
		ShowTimestamps: opts.Config != nil && opts.Config.UI.ShowTimestamps,
	})
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// form captures the live form content for a Send intent.
func (m Model) form() lifecycle.FormState {
	return lifecycle.FormState{
		Question:          m.input.Value(),
		PromptName:        m.promptName,
		PromptDescription: m.promptDescription,
		FieldValue:        m.fieldValue,
		Attachments:       m.attachments,
	}
}

// clearForm resets the one-shot parts of the form after a submission is
// accepted. The field value persists across submissions; prompt selection
// and attachments are consumed.
func (m *Model) clearForm() {
	m.input.Reset()
	m.promptName = ""
	m.promptDescription = ""
	m.attachments = nil
}

// attachmentSummary is the short status-bar form of the attachment list.
func (m Model) attachmentSummary() string {
	switch n := len(m.attachments); n {
	case 0:
		return ""
	case 1:
		return m.attachments[0].Filename
	default:
		return fmt.Sprintf("%d files", n)
	}
}
