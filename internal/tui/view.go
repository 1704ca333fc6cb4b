package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Fiber Length Analyzer"))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Label.Render("Mode: "))
	sb.WriteString(m.modeOption(entity.ModeSingle, "Single Image"))
	sb.WriteString("  ")
	sb.WriteString(m.modeOption(entity.ModeDual, "Compare Two Images"))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Label.Render(fmt.Sprintf("Images (%d/%d):", len(m.files), m.mode.RequiredFiles())))
	sb.WriteString("\n")
	if len(m.files) == 0 {
		sb.WriteString(m.styles.Muted.Render("  none selected"))
		sb.WriteString("\n")
	}
	for i, f := range m.files {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, filepath.Base(f))
	}
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	if m.CanAnalyze() {
		sb.WriteString(m.styles.ButtonEnabled.Render("Analyze"))
	} else {
		sb.WriteString(m.styles.ButtonDisabled.Render("Analyze"))
	}
	sb.WriteString("  ")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Result.Render(m.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("enter add file • tab mode • ctrl+r analyze • ctrl+s save • ctrl+l clear results • ctrl+x clear files • esc quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) modeOption(mode entity.Mode, label string) string {
	if m.mode == mode {
		return m.styles.Selected.Render("(•) " + label)
	}
	return m.styles.Muted.Render("( ) " + label)
}

func (m Model) statusLine() string {
	switch m.statusKind {
	case kindBusy:
		return m.styles.StatusBusy.Render(m.spinner.View() + " " + m.status)
	case kindError:
		return m.styles.StatusError.Render(m.status)
	default:
		if !m.ready {
			return m.styles.StatusBusy.Render(m.spinner.View() + " " + m.status)
		}
		return m.styles.StatusOK.Render(m.status)
	}
}

// comparisonView ставит сводки двух снимков рядом, под ними полный отчёт сравнения.
func (m Model) comparisonView(c *entity.Comparison) string {
	left := m.panel("IMAGE 1", c.Image1Path, c.Image1Result)
	right := m.panel("IMAGE 2", c.Image2Path, c.Image2Result)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right) + "\n\n" + report.RenderComparison(c)
}

func (m Model) panel(title, path string, r *entity.Reading) string {
	if path != "" {
		title += ": " + filepath.Base(path)
	}
	body := strings.TrimRight(report.RenderPanel(r), "\n")
	return m.styles.Panel.Render(m.styles.Label.Render(title) + "\n" + body)
}
