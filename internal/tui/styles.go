package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/source"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	idStyle      = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	dividedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta

	statusStyles = map[source.Status]lipgloss.Style{
		source.StatusConnecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		source.StatusConnected:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		source.StatusReconnecting: lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		source.StatusDisconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		source.StatusDone:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")), // gray
	}

	directionStyles = map[classify.Direction]lipgloss.Style{
		classify.Sent:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		classify.Received: lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // cyan
		classify.Unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
	}
)

// Panel border styles
func focusedBorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("4")) // blue
}

func blurredBorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")) // gray
}

// panelTitleStyle renders a panel title (placed in the border top line).
var panelTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("4")).
	Bold(true)

// StyledSourceStatus returns a styled status label.
func StyledSourceStatus(status source.Status) string {
	labels := map[source.Status]string{
		source.StatusConnecting:   "Connecting...",
		source.StatusConnected:    "Reading",
		source.StatusReconnecting: "Reconnecting...",
		source.StatusDisconnected: "Disconnected",
		source.StatusDone:         "Done",
	}
	label, ok := labels[status]
	if !ok {
		label = string(status)
	}
	if style, ok := statusStyles[status]; ok {
		return style.Render(label)
	}
	return label
}
