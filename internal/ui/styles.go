package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title    lipgloss.Style
	Prompt   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Hint     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Faint    lipgloss.Style
	StepDL   lipgloss.Style
	StepMux  lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Prompt:   base.Bold(true),
		Cursor:   base.Foreground(lipgloss.Color("#22D3EE")),
		Selected: base.Bold(true).Foreground(lipgloss.Color("#22D3EE")),
		Item:     base.Foreground(lipgloss.Color("#D1D5DB")),
		Hint:     base.Faint(true),
		Success:  base.Foreground(lipgloss.Color("#22C55E")),
		Error:    base.Foreground(lipgloss.Color("#EF4444")),
		Warning:  base.Foreground(lipgloss.Color("#F59E0B")),
		Faint:    base.Faint(true),
		StepDL:   base.Foreground(lipgloss.Color("#06B6D4")),
		StepMux:  base.Foreground(lipgloss.Color("#D946EF")),
	}
}
