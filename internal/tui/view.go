package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}
	return strings.Join([]string{
		m.renderHeader(),
		m.renderContent(),
		m.renderStatusBar(),
		m.renderKeyBar(),
	}, "\n")
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("prechecker") + dimStyle.Render("  "+m.tableLabel()+"  ←  "+m.Config.DataPath)

	tabs := ""
	for i := Tab(0); i < tabCount; i++ {
		if i == m.ActiveTab {
			tabs += activeTabStyle.Render(i.String())
		} else {
			tabs += tabStyle.Render(i.String())
		}
	}
	nav := tabs
	if m.IsRunning {
		right := warningStyle.Render(m.Spinner.View() + " Validating...")
		gap := max(m.Width-lipgloss.Width(nav)-lipgloss.Width(right)-10, 0)
		nav += strings.Repeat(" ", gap) + right
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, panelStyle.Width(m.Width-4).Render(nav))
}

func (m Model) renderContent() string {
	switch m.ActiveTab {
	case TabSummary:
		return m.renderSummaryTab()
	case TabFailures:
		return m.renderFailuresTab()
	case TabSchema:
		return m.renderSchemaTab()
	case TabHelp:
		return m.renderHelpTab()
	}
	return ""
}

func (m Model) renderSummaryTab() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Summary") + "\n\n")

	rep := m.Report
	switch {
	case m.Err != nil:
		sb.WriteString(errorStyle.Render("✗ "+m.Err.Error()) + "\n")
	case rep == nil:
		sb.WriteString(warningStyle.Render(m.Spinner.View()+" Validating...") + "\n")
	default:
		result := successStyle.Render("PASSED")
		if !rep.Passed() {
			result = errorStyle.Render("FAILED")
		}
		line := func(label, value string) {
			sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render(label+":"), valueStyle.Render(value)) + "\n")
		}
		line("Result", result)
		line("Rows", fmt.Sprint(rep.Rows))
		line("Failures", fmt.Sprint(len(rep.Failures)))
		line("Failing rows", fmt.Sprint(m.FailingRows()))
		line("Elapsed", m.ElapsedTime())
		sb.WriteString(labelStyle.Render("Clean rows:") + RenderProgressBar(m.PassRate()) +
			fmt.Sprintf("  %d%%\n", int(m.PassRate()*100)))

		if len(rep.MissingColumns) > 0 {
			line("Missing columns", strings.Join(rep.MissingColumns, ", "))
		}
		if len(rep.ExtraColumns) > 0 {
			line("Extra columns", strings.Join(rep.ExtraColumns, ", "))
		}
		if len(rep.UnknownTypes) > 0 {
			line("Not validated", strings.Join(rep.UnknownTypes, ", "))
		}

		if counts := m.ReasonCounts(); len(counts) > 0 {
			sb.WriteString("\n" + highlightStyle.Render("By reason") + "\n")
			total := len(rep.Failures)
			for _, rc := range counts {
				sb.WriteString(fmt.Sprintf("  %-20s ", rc.Reason))
				sb.WriteString(RenderProgressBar(float64(rc.Count) / float64(total)))
				sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d", rc.Count)) + "\n")
			}
		}
	}

	if len(m.History) > 1 {
		sb.WriteString("\n" + highlightStyle.Render("Runs") + "\n")
		for _, h := range m.History {
			icon := successStyle.Render("✓")
			stats := fmt.Sprintf("%d rows  %d failures", h.Rows, h.Failures)
			switch {
			case h.ErrMsg != "":
				icon = errorStyle.Render("✗")
				stats = truncate(h.ErrMsg, 40)
			case !h.Passed:
				icon = errorStyle.Render("✗")
			}
			sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", icon, dimStyle.Render(h.Timestamp.Format("15:04:05")), stats))
		}
	}
	return panelStyle.Width(m.Width - 6).Render(sb.String())
}

func (m Model) renderFailuresTab() string {
	var sb strings.Builder
	width := m.Width - 6
	failures := m.Failures()

	sb.WriteString(titleStyle.Render("Failures"))
	if m.Report != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d", len(failures), len(m.Report.Failures))))
	}
	sb.WriteString("\n" + m.Filter.View() + "\n\n")

	switch {
	case m.Report == nil:
		sb.WriteString(dimStyle.Render("No results yet."))
	case len(m.Report.Failures) == 0:
		sb.WriteString(successStyle.Render("✓ No failures."))
	case len(failures) == 0:
		sb.WriteString(dimStyle.Render("Nothing matches the filter."))
	default:
		header := fmt.Sprintf("%-8s %-18s %-22s %s", "ROW", "COLUMN", "REASON", "VALUE")
		sb.WriteString(highlightStyle.Render(header) + "\n")
		sb.WriteString(dimStyle.Render(strings.Repeat("-", max(width-4, 0))) + "\n")

		end := min(m.FailureScroll+m.pageSize(), len(failures))
		for _, f := range failures[m.FailureScroll:end] {
			sb.WriteString(fmt.Sprintf("%-8d %-18s %-22s %s\n",
				f.Row, truncate(f.Column, 18), f.Reason, valueStyle.Render(truncate(f.Value, 30))))
			sb.WriteString(dimStyle.Render("         "+truncate(f.Message, max(width-13, 10))) + "\n")
		}
		sb.WriteString("\n" + dimStyle.Render(fmt.Sprintf("%d-%d of %d", m.FailureScroll+1, end, len(failures))))
	}
	return panelStyle.Width(width).Render(sb.String())
}

func (m Model) renderSchemaTab() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Schema") + "\n\n")

	s := m.Config.Schema
	if s == nil || s.Len() == 0 {
		sb.WriteString(dimStyle.Render("No columns."))
		return panelStyle.Width(m.Width - 6).Render(sb.String())
	}

	failing := map[string]int{}
	if m.Report != nil {
		failing = m.Report.CountByColumn()
	}
	sb.WriteString(highlightStyle.Render(fmt.Sprintf("%-22s %-20s %-10s %-9s %s", "COLUMN", "TYPE", "FAMILY", "NULL", "FAILURES")) + "\n")
	end := min(m.SchemaScroll+m.pageSize(), s.Len())
	for _, c := range s.Columns[m.SchemaScroll:end] {
		null := "NULL"
		if !c.Nullable {
			null = "NOT NULL"
		}
		name := c.Name
		if c.AutoGenerated {
			name += " *"
		}
		count := dimStyle.Render("-")
		if n := failing[c.Name]; n > 0 {
			count = errorStyle.Render(fmt.Sprint(n))
		}
		sb.WriteString(fmt.Sprintf("%-22s %-20s %-10s %-9s %s\n",
			truncate(name, 22), truncate(c.Type, 20), c.Spec().Family, null, count))
	}
	sb.WriteString("\n" + dimStyle.Render("* auto-generated"))
	return panelStyle.Width(m.Width - 6).Render(sb.String())
}

func (m Model) renderHelpTab() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n\n")

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"Tab / Shift+Tab", "Switch tabs"},
			{"1-4", "Jump to tab"},
			{"r", "Validate again"},
			{"q / Ctrl+C", "Quit"},
		}},
		{"Failures Tab", [][2]string{
			{"/", "Filter by column, reason or value"},
			{"Enter", "Keep filter and leave the input"},
			{"Esc", "Clear filter"},
			{"j / k", "Scroll"},
			{"J / K", "Page"},
			{"g / G", "Top / bottom"},
		}},
	}
	for _, sec := range sections {
		sb.WriteString(lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Render("  "+sec.title) + "\n")
		for _, pair := range sec.keys {
			sb.WriteString("  " + keyStyle.Width(22).Render(pair[0]) + keyDescStyle.Render(pair[1]) + "\n")
		}
		sb.WriteString("\n")
	}
	return panelStyle.Width(m.Width - 6).Render(sb.String())
}

func (m Model) renderStatusBar() string {
	var style lipgloss.Style
	switch m.StatusKind {
	case "success":
		style = successStyle
	case "error":
		style = errorStyle
	case "warning":
		style = warningStyle
	default:
		style = dimStyle
	}
	return lipgloss.NewStyle().
		Width(m.Width-4).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(colorBorder).
		Render(style.Render("  " + m.StatusMsg))
}

func (m Model) renderKeyBar() string {
	keys := []string{
		RenderKeyBinding("Tab", "switch"),
		RenderKeyBinding("/", "filter"),
		RenderKeyBinding("j/k", "scroll"),
		RenderKeyBinding("r", "rerun"),
		RenderKeyBinding("q", "quit"),
	}
	return dimStyle.Width(m.Width-4).Render("  " + strings.Join(keys, dimStyle.Render("  │  ")))
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
