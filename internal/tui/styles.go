package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPlaying  = lipgloss.Color("2")  // green
	colorPaused   = lipgloss.Color("3")  // yellow
	colorHeader   = lipgloss.Color("12") // bright blue
	colorMuted    = lipgloss.Color("8")  // dim
	colorProgress = lipgloss.Color("6")  // cyan
	colorError    = lipgloss.Color("1")  // red

	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader)

	subheaderStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	progressFillStyle = lipgloss.NewStyle().
				Foreground(colorProgress)

	progressTrackStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	notificationBarStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
)

// toggleStyle returns the style of the play/pause button.
func toggleStyle(paused bool) lipgloss.Style {
	if paused {
		return lipgloss.NewStyle().Foreground(colorPaused).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)
}

// toggleIcon is the button face: play when paused, pause when playing.
func toggleIcon(paused bool) string {
	if paused {
		return "▶ "
	}
	return "❚❚"
}
