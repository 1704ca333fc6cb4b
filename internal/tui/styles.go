package tui

import "github.com/charmbracelet/lipgloss"

// Styles оформление экрана.
type Styles struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	Selected       lipgloss.Style
	Muted          lipgloss.Style
	ButtonEnabled  lipgloss.Style
	ButtonDisabled lipgloss.Style
	StatusOK       lipgloss.Style
	StatusBusy     lipgloss.Style
	StatusError    lipgloss.Style
	Result         lipgloss.Style
	Panel          lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ecf0f1")).Background(lipgloss.Color("#2c3e50")).Padding(0, 1),
		Label:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34495e")),
		Selected:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db")),
		Muted:          lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d")),
		ButtonEnabled:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#27ae60")).Padding(0, 2),
		ButtonDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6")).Background(lipgloss.Color("#34495e")).Padding(0, 2),
		StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60")),
		StatusBusy:     lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")),
		StatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")),
		Result:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7f8c8d")).Padding(0, 1),
		Panel:          lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#bdc3c7")).Padding(0, 1),
	}
}
