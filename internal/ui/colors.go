package ui

import "github.com/charmbracelet/lipgloss"

// stylesheet groups the lipgloss styles used across the reconcile views.
type stylesheet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = stylesheet{
	title: lipgloss.NewStyle().Bold(true).MarginBottom(1).
		Foreground(lipgloss.AdaptiveColor{Light: "#5A3FD4", Dark: "#7D56F4"}),
	ok: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#02874F", Dark: "#04B575"}),
	err: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#C20000", Dark: "#FF5555"}),
	warn: lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#B96A00", Dark: "#FFA500"}),
	help: lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.Color("#626262")),
}
