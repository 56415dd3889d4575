package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Color palette
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SecondaryColor = lipgloss.Color("#43BF6D") // Green - ready devices
	WarningColor   = lipgloss.Color("#FFA500") // Orange - warnings
	ErrorColor     = lipgloss.Color("#FF5555") // Red - errors

	// Neutral colors
	TextColor   = lipgloss.Color("#FFFFFF") // White - main content
	SubtleColor = lipgloss.Color("#626262") // Gray - secondary info
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

// Common styles
var (
	// TitleStyle is for screen titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	// SubtitleStyle is for secondary header text
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// DeviceNameStyle is for device names in the watch list
	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// DeviceDetailStyle is for vendor/model/type lines under a device name
	DeviceDetailStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				PaddingLeft(2)

	// ReadyStyle marks a device as ready
	ReadyStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// WarningStyle is for the "no devices" notice
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// HelpStyle is for the footer help line
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0)

	// SpinnerStyle is for the discovery spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// CardStyle wraps each device entry in the watch list
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 2).
			MarginLeft(2)

	// TroubleshootingStyle is for troubleshooting hints
	TroubleshootingStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// RenderDivider creates a horizontal line of the specified width
func RenderDivider(width int) string {
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(string(line))
}
