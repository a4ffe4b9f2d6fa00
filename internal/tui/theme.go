package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the hyprnote TUI: slate surfaces with a lime accent
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#A3E635") // Lime - main accent
	ColorSecondary = lipgloss.Color("#38BDF8") // Sky - secondary accent

	// Status colors
	ColorSuccess = lipgloss.Color("#22C55E") // Green
	ColorError   = lipgloss.Color("#F87171") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber

	// Text colors
	ColorText   = lipgloss.Color("#E2E8F0") // Slate 200
	ColorMuted  = lipgloss.Color("#94A3B8") // Slate 400
	ColorSubtle = lipgloss.Color("#64748B") // Slate 500

	// Background colors
	ColorBg        = lipgloss.Color("#0F172A") // Slate 900
	ColorBgAlt     = lipgloss.Color("#1E293B") // Slate 800
	ColorHighlight = lipgloss.Color("#334155") // Slate 700
)
