// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// Text styles for tabular command output.
var (
	Name  = lipgloss.NewStyle().Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Slate)
	OK    = lipgloss.NewStyle().Foreground(Green)
	Fail  = lipgloss.NewStyle().Foreground(Red)
)
