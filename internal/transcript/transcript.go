// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/api"
	"github.com/iatoolkit/iachat-tui/internal/payload"
)

// =============================================================================
// ROLES AND MESSAGES
// =============================================================================

// Role identifies the sender of a transcript entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// DisplayName returns the label shown next to an entry.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Message is one transcript entry.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time

	// Editable marks a user entry carrying an edit affordance; Question
	// holds the original text the affordance copies back into the input.
	Editable bool
	Question string

	// Cards holds document-validation results for bot entries.
	Cards []ValidationCard

	// IsError styles a system entry as a failure notice.
	IsError bool
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the append-only ordered sequence of entries for one run.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
	logger   *zap.Logger
}

// New creates an empty transcript.
func New(logger *zap.Logger) *Transcript {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcript{logger: logger}
}

// Messages returns a copy of the entries in append order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Clear starts a fresh transcript. The slice is replaced, not mutated, so
// copies handed out earlier stay intact.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// LastEditable returns the most recent entry carrying an edit affordance.
func (t *Transcript) LastEditable() (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Editable {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

func (t *Transcript) append(m Message) Message {
	m.ID = uuid.NewString()
	m.Timestamp = time.Now()
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
	return m
}

// =============================================================================
// APPEND RULES
// =============================================================================

// AppendUser echoes a submission into the transcript. Display and
// editability follow from what the snapshot combined:
//
//  1. field value + question, no prompt  → "{field}: {question}", editable
//  2. field value + prompt, no question  → "{field}: {prompt description}"
//  3. prompt only                        → "{prompt description}"
//  4. anything else                      → the raw question, editable
//
// Only entries showing the user's own words carry the edit affordance;
// prompt descriptions are not the user's text to edit.
func (t *Transcript) AppendUser(snap payload.Snapshot) Message {
	var m Message
	switch {
	case snap.FieldValue != "" && snap.Question != "" && snap.PromptName == "":
		m = Message{Role: RoleUser, Content: snap.FieldValue + ": " + snap.Question,
			Editable: true, Question: snap.Question}
	case snap.FieldValue != "" && snap.Question == "" && snap.PromptName != "":
		m = Message{Role: RoleUser, Content: snap.FieldValue + ": " + snap.PromptDescription}
	case snap.FieldValue == "" && snap.PromptName != "":
		m = Message{Role: RoleUser, Content: snap.PromptDescription}
	default:
		m = Message{Role: RoleUser, Content: snap.Question, Editable: true, Question: snap.Question}
	}
	return t.append(m)
}

// AppendBot renders a successful response: the answer text plus one card
// per well-formed document-validation record.
func (t *Transcript) AppendBot(resp *api.QueryResponse) Message {
	m := Message{Role: RoleBot, Content: resp.Answer}
	if resp.AditionalData != nil && len(resp.AditionalData.ClassifyDocuments) > 0 {
		m.Cards = ParseValidationRecords(resp.AditionalData.ClassifyDocuments, t.logger)
	}
	return t.append(m)
}

// AppendSystem adds an informational notice.
func (t *Transcript) AppendSystem(text string) Message {
	return t.append(Message{Role: RoleSystem, Content: text})
}

// AppendError adds a failure notice. Every terminal error is surfaced
// here; nothing is silently swallowed.
func (t *Transcript) AppendError(text string) Message {
	return t.append(Message{Role: RoleSystem, Content: text, IsError: true})
}
