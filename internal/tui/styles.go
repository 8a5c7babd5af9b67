package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	cell      lipgloss.Style
	cursor    lipgloss.Style
	errValue  lipgloss.Style
	help      lipgloss.Style
	statusOK  lipgloss.Style
	statusErr lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
		cell:      lipgloss.NewStyle(),
		cursor:    lipgloss.NewStyle().Reverse(true),
		errValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		statusOK:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		statusErr: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
