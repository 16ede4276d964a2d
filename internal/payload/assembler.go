// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package payload

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iatoolkit/iachat-tui/internal/config"
)

// =============================================================================
// FORM SNAPSHOT
// =============================================================================

// Attachment is a file queued for the next submission: its name and raw
// binary content, read at queue time.
type Attachment struct {
	Filename string
	Data     []byte
}

// Snapshot is the form state captured when a submission begins Sending.
// It is copied by value; the attachment slice is cloned by Capture so the
// UI clearing its queue cannot reach into an in-flight request.
type Snapshot struct {
	Question          string
	PromptName        string
	PromptDescription string
	FieldValue        string
	ExternalUserID    string
	Attachments       []Attachment
}

// Capture builds a Snapshot from live form values, cloning the attachment
// list so the snapshot is independent of the caller's slice.
func Capture(question, promptName, promptDescription, fieldValue, externalUserID string, attachments []Attachment) Snapshot {
	cloned := make([]Attachment, len(attachments))
	copy(cloned, attachments)
	return Snapshot{
		Question:          question,
		PromptName:        promptName,
		PromptDescription: promptDescription,
		FieldValue:        fieldValue,
		ExternalUserID:    externalUserID,
		Attachments:       cloned,
	}
}

// Empty reports whether the snapshot carries neither a question nor a
// selected prompt. Empty submissions are rejected before any transition.
func (s Snapshot) Empty() bool {
	return strings.TrimSpace(s.Question) == "" && s.PromptName == ""
}

// =============================================================================
// WIRE OBJECTS
// =============================================================================

// EncodedFile is one attachment in its text-safe transport form.
type EncodedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Query is the llm_query request body. ClientData is a map so the
// configured structured field key appears only when it carries a value;
// the backend distinguishes "no data supplied" from "explicit empty data"
// by the key's absence.
type Query struct {
	Question       string            `json:"question"`
	PromptName     string            `json:"prompt_name,omitempty"`
	ClientData     map[string]string `json:"client_data"`
	Files          []EncodedFile     `json:"files,omitempty"`
	ExternalUserID string            `json:"external_user_id"`
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// Assemble builds the wire Query from a snapshot. Every attachment is
// encoded on its own goroutine and the errgroup wait is the join barrier:
// the function returns only once all encodings finished (or the context
// was cancelled, in which case finished encodings are simply discarded).
func Assemble(ctx context.Context, snap Snapshot, field config.FieldConfig, maxAttachmentBytes int64) (*Query, error) {
	clientData := map[string]string{
		"question": snap.Question,
	}
	if snap.PromptName != "" {
		clientData["prompt_name"] = snap.PromptName
	}
	if field.Enabled {
		if v := strings.TrimSpace(snap.FieldValue); v != "" {
			clientData[field.DataKey] = v
		}
	}

	files, err := encodeAll(ctx, snap.Attachments, maxAttachmentBytes)
	if err != nil {
		return nil, err
	}

	return &Query{
		Question:       snap.Question,
		PromptName:     snap.PromptName,
		ClientData:     clientData,
		Files:          files,
		ExternalUserID: snap.ExternalUserID,
	}, nil
}

// encodeAll fans out one encoding task per attachment and joins on all of
// them. The result slice is indexed, not appended, so ordering matches the
// queue order regardless of which goroutine finishes first.
func encodeAll(ctx context.Context, attachments []Attachment, maxBytes int64) ([]EncodedFile, error) {
	if len(attachments) == 0 {
		return nil, nil
	}

	files := make([]EncodedFile, len(attachments))
	g, gctx := errgroup.WithContext(ctx)

	for i, att := range attachments {
		g.Go(func() error {
			if int64(len(att.Data)) > maxBytes {
				return fmt.Errorf("attachment %q exceeds the %d byte limit", att.Filename, maxBytes)
			}
			// Base64 is not interruptible and has no side effects; a
			// cancelled context only prevents the result from being used.
			files[i] = EncodedFile{
				Filename: att.Filename,
				Content:  base64.StdEncoding.EncodeToString(att.Data),
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
