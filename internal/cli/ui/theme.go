package ui

import "github.com/charmbracelet/lipgloss"

// kanso's palette: ink on paper, one green for done.
var (
	Ink    = lipgloss.Color("#2B2B2B")
	Paper  = lipgloss.Color("#F4F1EA")
	Moss   = lipgloss.Color("#5B8C5A")
	Clay   = lipgloss.Color("#C4663A")
	Stone  = lipgloss.Color("#8B8680")
	Dim    = lipgloss.Color("#5E5E5E")
	Accent = lipgloss.Color("#D4A017")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)

	Done = lipgloss.NewStyle().
		Foreground(Moss)

	Missed = lipgloss.NewStyle().
		Foreground(Stone)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(Clay)

	Badge = lipgloss.NewStyle().
		Foreground(Paper).
		Background(Moss).
		Padding(0, 1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

const (
	SymbolDone   = "■"
	SymbolMissed = "□"
	SymbolFuture = "·"
	IconOk       = "✓ "
	IconError    = "✗ "
	IconFire     = "🔥"
)
