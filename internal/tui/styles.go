// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal views of Chainmaster.
// This file defines the shared lipgloss styles.
package tui // import "github.com/toeirei/chainmaster/internal/tui"

import "github.com/charmbracelet/lipgloss"

// colorPalette defines the core colors used in the TUI.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal
	colorError     = lipgloss.Color("196") // Bright red
	colorSuccess   = lipgloss.Color("40")  // Green
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			PaddingBottom(1)

	statusStyle = lipgloss.NewStyle().Foreground(colorSubtle).PaddingTop(1)
)

// Styles used by the command line for tables and results.
var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
	SuccessStyle = successStyle
	ErrorStyle   = errorStyle
)
