// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the iachat TUI.

The chat package implements the terminal chat interface using the Bubble
Tea framework. It is a pure projection of the request lifecycle: the view
never owns lifecycle state, it renders whatever the controller reports.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model:
  - Transcript viewport with scrolling
  - Single-line input with prompt and attachment state
  - Spinner shown while a request is in flight
  - Status bar with session, prompt, and attachment summaries

## Update Loop (update.go)

Handles all Bubble Tea messages:
  - Enter submits; Esc cancels the in-flight request
  - Lifecycle events arriving from the controller goroutines
  - Config hot-reload notices
  - Window resize handling

## Commands (commands.go)

Slash command registry supporting:
  - /help - Show available commands
  - /prompt - Select or clear a predefined prompt
  - /attach, /detach, /attachments - Manage attachments
  - /field - Set the structured client-data field
  - /clear - Clear the transcript
  - /quit - Exit

# Usage

Create a chat model and run it as a Bubble Tea program:

	m := chat.New(chat.Options{
		Controller: ctrl,
		Transcript: tr,
		Config:     cfg,
		Theme:      theme,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
