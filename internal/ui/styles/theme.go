// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It adapts to the
// terminal's color capability at startup.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	UserLabel   lipgloss.Style
	BotLabel    lipgloss.Style
	SystemLabel lipgloss.Style
	Timestamp   lipgloss.Style
	ErrorText   lipgloss.Style
	EditHint    lipgloss.Style

	// ==========================================================================
	// VALIDATION CARD STYLES
	// ==========================================================================

	CardBorder   lipgloss.Style
	CardTitle    lipgloss.Style
	TypeBadge    lipgloss.Style
	CardValid    lipgloss.Style
	CardInvalid  lipgloss.Style
	CardCauseDot lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	StatusKey      lipgloss.Style
	StatusValue    lipgloss.Style
	StopAffordance lipgloss.Style
	Spinner        lipgloss.Style
	Notice         lipgloss.Style
}

// New builds the theme for the detected terminal.
func New() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	t.BotLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	t.Timestamp = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	t.ErrorText = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	t.EditHint = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	t.CardBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	t.CardTitle = lipgloss.NewStyle().Bold(true)
	t.TypeBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("6")).
		Padding(0, 1)
	t.CardValid = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	t.CardInvalid = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	t.CardCauseDot = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	t.StatusBar = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Background(lipgloss.Color("0")).Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	t.StatusValue = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	t.StopAffordance = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	t.Spinner = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	t.Notice = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return t
}
