// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iatoolkit/iachat-tui/internal/api"
	"github.com/iatoolkit/iachat-tui/internal/config"
	"github.com/iatoolkit/iachat-tui/internal/lifecycle"
	"github.com/iatoolkit/iachat-tui/internal/payload"
	"github.com/iatoolkit/iachat-tui/internal/transcript"
)

// fakeController records intents without running any lifecycle.
type fakeController struct {
	sendCalls   []lifecycle.FormState
	cancelCalls int
	sendErr     error
	state       lifecycle.State
}

func (f *fakeController) Send(form lifecycle.FormState) error {
	f.sendCalls = append(f.sendCalls, form)
	return f.sendErr
}

func (f *fakeController) Cancel() error {
	f.cancelCalls++
	return nil
}

func (f *fakeController) State() lifecycle.State { return f.state }

func newTestModel(fc *fakeController) Model {
	cfg := config.Default()
	cfg.Prompts = []config.PromptConfig{
		{Name: "validate_docs", Description: "Validate the uploaded documents"},
	}
	cfg.Field.Enabled = true
	cfg.Field.Label = "Case"
	cfg.Field.DataKey = "case_number"
	cfg.UI.Markdown = false

	m := New(Options{Controller: fc, Config: cfg, Transcript: transcript.New(nil)})
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return resized.(Model)
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func pressEnter(m Model) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestEnterSubmitsAndClearsForm(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)
	m = typeText(m, "Hello")

	m = pressEnter(m)

	if len(fc.sendCalls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(fc.sendCalls))
	}
	if fc.sendCalls[0].Question != "Hello" {
		t.Errorf("question = %q, want Hello", fc.sendCalls[0].Question)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared after accepted submission: %q", m.input.Value())
	}
}

func TestEnterWhileBusyCancels(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)

	ev, _ := m.Update(LifecycleEventMsg{Event: lifecycle.Event{
		RequestID: "r1",
		State:     lifecycle.StateSending,
		Snapshot:  payload.Snapshot{Question: "q"},
	}})
	m = ev.(Model)

	m = pressEnter(m)

	if len(fc.sendCalls) != 0 {
		t.Errorf("busy enter must not submit, got %d sends", len(fc.sendCalls))
	}
	if fc.cancelCalls != 1 {
		t.Errorf("expected 1 cancel, got %d", fc.cancelCalls)
	}
}

func TestEscWhileBusyCancels(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)

	ev, _ := m.Update(LifecycleEventMsg{Event: lifecycle.Event{
		RequestID: "r1", State: lifecycle.StateSending,
	}})
	m = ev.(Model)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	if fc.cancelCalls != 1 {
		t.Errorf("expected 1 cancel, got %d", fc.cancelCalls)
	}
}

func TestEmptySubmissionShowsNotice(t *testing.T) {
	fc := &fakeController{sendErr: lifecycle.ErrEmptySubmission}
	m := newTestModel(fc)

	m = pressEnter(m)

	if m.notice == "" {
		t.Error("expected a notice for the empty submission")
	}
	if m.transcript.Len() != 0 {
		t.Errorf("empty submission must not reach the transcript, got %d entries", m.transcript.Len())
	}
}

func TestSendingEventEchoesSubmission(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)

	ev, _ := m.Update(LifecycleEventMsg{Event: lifecycle.Event{
		RequestID: "r1",
		State:     lifecycle.StateSending,
		Snapshot:  payload.Snapshot{Question: "Hello"},
	}})
	m = ev.(Model)

	if !m.busy {
		t.Error("sending event must mark the view busy")
	}
	msgs := m.transcript.Messages()
	if len(msgs) != 1 || msgs[0].Content != "Hello" {
		t.Fatalf("expected one echoed entry, got %+v", msgs)
	}
	if !msgs[0].Editable {
		t.Error("a raw question echo must be editable")
	}
}

func TestTerminalEventsProjectOutcome(t *testing.T) {
	cases := []struct {
		name      string
		state     lifecycle.State
		outcome   api.Outcome
		wantText  string
		wantError bool
	}{
		{
			name:     "completed",
			state:    lifecycle.StateCompleted,
			outcome:  api.Outcome{Status: api.StatusCompleted, Response: &api.QueryResponse{Answer: "42"}},
			wantText: "42",
		},
		{
			name:      "cancelled",
			state:     lifecycle.StateCancelled,
			outcome:   api.Outcome{Status: api.StatusCancelled, Message: api.MsgCancelled},
			wantText:  api.MsgCancelled,
			wantError: true,
		},
		{
			name:      "timed out",
			state:     lifecycle.StateTimedOut,
			outcome:   api.Outcome{Status: api.StatusTimedOut, Message: api.MsgTimedOut},
			wantText:  api.MsgTimedOut,
			wantError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeController{}
			m := newTestModel(fc)

			ev, _ := m.Update(LifecycleEventMsg{Event: lifecycle.Event{
				RequestID: "r1", State: lifecycle.StateSending,
			}})
			m = ev.(Model)

			out := tc.outcome
			ev, _ = m.Update(LifecycleEventMsg{Event: lifecycle.Event{
				RequestID: "r1", State: tc.state, Outcome: &out,
			}})
			m = ev.(Model)

			if m.busy {
				t.Error("terminal event must return the view to idle")
			}
			msgs := m.transcript.Messages()
			last := msgs[len(msgs)-1]
			if last.Content != tc.wantText {
				t.Errorf("last entry = %q, want %q", last.Content, tc.wantText)
			}
			if last.IsError != tc.wantError {
				t.Errorf("IsError = %v, want %v", last.IsError, tc.wantError)
			}
		})
	}
}

func TestStaleTerminalEventIgnored(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)

	ev, _ := m.Update(LifecycleEventMsg{Event: lifecycle.Event{
		RequestID: "r2", State: lifecycle.StateSending,
	}})
	m = ev.(Model)

	ev, _ = m.Update(LifecycleEventMsg{Event: lifecycle.Event{
		RequestID: "r1",
		State:     lifecycle.StateCancelled,
		Outcome:   &api.Outcome{Status: api.StatusCancelled, Message: api.MsgCancelled},
	}})
	m = ev.(Model)

	if !m.busy {
		t.Error("a stale terminal event must not end the tracked request")
	}
}

func TestRecallLastQuestion(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)
	m.transcript.AppendUser(payload.Snapshot{Question: "original words"})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)

	if m.input.Value() != "original words" {
		t.Errorf("input = %q, want the recalled question", m.input.Value())
	}
}

func TestPromptCommandSelectsPrompt(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)
	m = typeText(m, "/prompt validate_docs")

	m = pressEnter(m)

	if m.promptName != "validate_docs" {
		t.Errorf("promptName = %q", m.promptName)
	}
	if m.promptDescription != "Validate the uploaded documents" {
		t.Errorf("promptDescription = %q", m.promptDescription)
	}

	// The selected prompt rides the next submission.
	m = pressEnter(m)
	if len(fc.sendCalls) != 1 || fc.sendCalls[0].PromptName != "validate_docs" {
		t.Fatalf("expected submission carrying the prompt, got %+v", fc.sendCalls)
	}
	if m.promptName != "" {
		t.Error("prompt selection must be consumed by the submission")
	}
}

func TestFieldCommand(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)

	m = typeText(m, "/field 12345")
	m = pressEnter(m)
	if m.fieldValue != "12345" {
		t.Errorf("fieldValue = %q", m.fieldValue)
	}

	// The field persists across submissions, unlike the prompt.
	m = typeText(m, "status?")
	m = pressEnter(m)
	if len(fc.sendCalls) != 1 || fc.sendCalls[0].FieldValue != "12345" {
		t.Fatalf("expected submission carrying the field, got %+v", fc.sendCalls)
	}
	if m.fieldValue != "12345" {
		t.Error("field value must survive a submission")
	}

	m = typeText(m, "/field")
	m = pressEnter(m)
	if m.fieldValue != "" {
		t.Errorf("fieldValue after clear = %q", m.fieldValue)
	}
}

func TestUnknownCommandDoesNotSubmit(t *testing.T) {
	fc := &fakeController{}
	m := newTestModel(fc)
	m = typeText(m, "/frobnicate")

	m = pressEnter(m)

	if len(fc.sendCalls) != 0 {
		t.Error("an unknown command must not reach the controller")
	}
	if m.notice == "" {
		t.Error("expected an unknown-command notice")
	}
}
