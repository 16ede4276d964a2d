// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iatoolkit/iachat-tui/internal/api"
	"github.com/iatoolkit/iachat-tui/internal/payload"
)

func TestAppendUserQuestionOnly(t *testing.T) {
	tr := New(nil)
	m := tr.AppendUser(payload.Snapshot{Question: "Hello"})

	assert.Equal(t, RoleUser, m.Role)
	assert.Equal(t, "Hello", m.Content)
	assert.True(t, m.Editable)
	assert.Equal(t, "Hello", m.Question)
}

func TestAppendUserFieldAndQuestion(t *testing.T) {
	tr := New(nil)
	m := tr.AppendUser(payload.Snapshot{Question: "Summarize the contract", FieldValue: "ACME"})

	assert.Equal(t, "ACME: Summarize the contract", m.Content)
	assert.True(t, m.Editable)
	assert.Equal(t, "Summarize the contract", m.Question, "edit affordance recalls the question, not the combined display")
}

func TestAppendUserFieldAndPrompt(t *testing.T) {
	tr := New(nil)
	m := tr.AppendUser(payload.Snapshot{
		PromptName:        "validate_docs",
		PromptDescription: "Validate the uploaded documents",
		FieldValue:        "ACME",
	})

	assert.Equal(t, "ACME: Validate the uploaded documents", m.Content)
	assert.False(t, m.Editable, "prompt descriptions are not the user's text to edit")
}

func TestAppendUserPromptOnly(t *testing.T) {
	tr := New(nil)
	m := tr.AppendUser(payload.Snapshot{
		PromptName:        "validate_docs",
		PromptDescription: "Validate the uploaded documents",
	})

	assert.Equal(t, "Validate the uploaded documents", m.Content)
	assert.False(t, m.Editable)
}

func TestAppendBotWithCards(t *testing.T) {
	tr := New(nil)
	m := tr.AppendBot(&api.QueryResponse{
		Answer: "Reviewed your documents.",
		AditionalData: &api.AditionalData{
			ClassifyDocuments: []map[string]any{
				{
					"document_name": "invoice.pdf",
					"document_type": "invoice",
					"is_valid":      true,
					"causes":        nil,
				},
				{
					"document_name": "id.png",
					"document_type": "identity",
					"is_valid":      false,
					"causes":        []any{"blurry scan", "expired"},
				},
			},
		},
	})

	assert.Equal(t, RoleBot, m.Role)
	assert.Equal(t, "Reviewed your documents.", m.Content)
	require.Len(t, m.Cards, 2)
	assert.True(t, m.Cards[0].Valid)
	assert.Equal(t, []string{"blurry scan", "expired"}, m.Cards[1].Causes)
}

func TestAppendBotPlainAnswer(t *testing.T) {
	tr := New(nil)
	m := tr.AppendBot(&api.QueryResponse{Answer: "42"})

	assert.Equal(t, "42", m.Content)
	assert.Empty(t, m.Cards)
}

func TestAppendOrderIsPreserved(t *testing.T) {
	tr := New(nil)
	tr.AppendUser(payload.Snapshot{Question: "first"})
	tr.AppendBot(&api.QueryResponse{Answer: "second"})
	tr.AppendError("third")

	msgs := tr.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)
	assert.True(t, msgs[2].IsError)
}

func TestMessagesReturnsCopy(t *testing.T) {
	tr := New(nil)
	tr.AppendUser(payload.Snapshot{Question: "keep me"})

	msgs := tr.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "keep me", tr.Messages()[0].Content)
}

func TestLastEditable(t *testing.T) {
	tr := New(nil)

	_, ok := tr.LastEditable()
	assert.False(t, ok)

	tr.AppendUser(payload.Snapshot{Question: "one"})
	tr.AppendUser(payload.Snapshot{
		PromptName:        "p",
		PromptDescription: "prompt run",
	})
	tr.AppendSystem("notice")

	m, ok := tr.LastEditable()
	require.True(t, ok)
	assert.Equal(t, "one", m.Question, "the prompt entry and the notice are skipped")
}

func TestClear(t *testing.T) {
	tr := New(nil)
	tr.AppendUser(payload.Snapshot{Question: "q"})
	before := tr.Messages()

	tr.Clear()

	assert.Zero(t, tr.Len())
	assert.Len(t, before, 1, "copies handed out before Clear stay intact")
}
