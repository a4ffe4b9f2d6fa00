package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for hyprnote TUI components
var (
	// Header style for titles and section headers
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Label style for form field labels
	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Muted style for secondary text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Subtle style for hints and descriptions
	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)

	// Highlight style for inline actions ("nota em áudio", "utilize apenas texto")
	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// Box style for bordered containers
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)

	// FocusedBox style for the compose dialog
	StyleFocusedBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	// Recording indicator
	StyleRecording = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)
)

const logoASCII = `
 _                                 _
| |__  _   _ _ __  _ __ _ __   ___ | |_ ___
| '_ \| | | | '_ \| '__| '_ \ / _ \| __/ _ \
| | | | |_| | |_) | |  | | | | (_) | ||  __/
|_| |_|\__, | .__/|_|  |_| |_|\___/ \__\___|
       |___/|_|`

// Logo returns the hyprnote ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
