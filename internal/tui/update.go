package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taitai9847/prechecker/internal/validator"
)

type validationDoneMsg struct {
	report   *validator.Report
	duration time.Duration
}

type validationErrMsg struct {
	err      error
	duration time.Duration
}

// Init runs the first pass. NewModel already marks the model as running.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.runValidation())
}

// rerun resets the run state and validates again.
func (m Model) rerun() (Model, tea.Cmd) {
	m.IsRunning = true
	m.StartTime = time.Now()
	m.FinishTime = time.Time{}
	m.Err = nil
	m.StatusMsg = "Validating " + m.Config.DataPath + "..."
	m.StatusKind = "info"
	return m, tea.Batch(m.Spinner.Tick, m.runValidation())
}

func (m Model) runValidation() tea.Cmd {
	run, ctx := m.Config.Run, m.ctx
	return func() tea.Msg {
		start := time.Now()
		rep, err := run(ctx)
		if err != nil {
			return validationErrMsg{err: err, duration: time.Since(start)}
		}
		return validationDoneMsg{report: rep, duration: time.Since(start)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Filter.Focused() {
			return m.handleFilterKey(msg)
		}
		if msg.String() == "q" || msg.String() == "Q" {
			return m, tea.Quit
		}
		if next, ok := m.switchTab(msg.String()); ok {
			m.ActiveTab = next
			return m, nil
		}
		if msg.String() == "r" && !m.IsRunning {
			return m.rerun()
		}
		switch m.ActiveTab {
		case TabFailures:
			return m.handleFailuresKey(msg)
		case TabSchema:
			return m.handleSchemaKey(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.IsRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case validationDoneMsg:
		m.IsRunning = false
		m.FinishTime = time.Now()
		m.Report = msg.report
		m = m.applyFilter()
		entry := HistoryEntry{
			Timestamp: m.FinishTime,
			Rows:      msg.report.Rows,
			Failures:  len(msg.report.Failures),
			Duration:  msg.duration,
			Passed:    msg.report.Passed(),
		}
		m.History = append([]HistoryEntry{entry}, m.History...)
		if entry.Passed {
			m.StatusMsg = fmt.Sprintf("✓ PASSED → %d rows in %s", entry.Rows, msg.duration.Round(time.Millisecond))
			m.StatusKind = "success"
		} else {
			m.StatusMsg = fmt.Sprintf("✗ FAILED → %d failures in %d rows", entry.Failures, entry.Rows)
			m.StatusKind = "error"
		}
		return m, nil

	case validationErrMsg:
		m.IsRunning = false
		m.FinishTime = time.Now()
		m.Err = msg.err
		m.History = append([]HistoryEntry{{
			Timestamp: m.FinishTime,
			Duration:  msg.duration,
			ErrMsg:    msg.err.Error(),
		}}, m.History...)
		m.StatusMsg = fmt.Sprintf("✗ Error: %v", msg.err)
		m.StatusKind = "error"
		return m, nil
	}

	if m.Filter.Focused() {
		var cmd tea.Cmd
		m.Filter, cmd = m.Filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

// switchTab maps the navigation keys shared by every tab.
func (m Model) switchTab(key string) (Tab, bool) {
	switch key {
	case "tab":
		return (m.ActiveTab + 1) % tabCount, true
	case "shift+tab":
		return (m.ActiveTab + tabCount - 1) % tabCount, true
	case "1", "!":
		return TabSummary, true
	case "2", "@":
		return TabFailures, true
	case "3", "#":
		return TabSchema, true
	case "4", "$", "?":
		return TabHelp, true
	}
	return m.ActiveTab, false
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Filter.Blur()
		m.Filter.SetValue("")
		return m.applyFilter(), nil
	case "enter":
		m.Filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.Filter, cmd = m.Filter.Update(msg)
	return m.applyFilter(), cmd
}

func (m Model) handleFailuresKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.Failures())
	page := m.pageSize()
	switch msg.String() {
	case "/":
		m.Filter.Focus()
		return m, textinput.Blink
	case "esc":
		m.Filter.SetValue("")
		return m.applyFilter(), nil
	case "j", "down":
		if m.FailureScroll < n-1 {
			m.FailureScroll++
		}
	case "k", "up":
		if m.FailureScroll > 0 {
			m.FailureScroll--
		}
	case "pgdown", "J":
		m.FailureScroll = min(m.FailureScroll+page, max(n-1, 0))
	case "pgup", "K":
		m.FailureScroll = max(m.FailureScroll-page, 0)
	case "g":
		m.FailureScroll = 0
	case "G":
		m.FailureScroll = max(n-1, 0)
	}
	return m, nil
}

func (m Model) handleSchemaKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Config.Schema == nil {
		return m, nil
	}
	n := m.Config.Schema.Len()
	switch msg.String() {
	case "j", "down":
		if m.SchemaScroll < n-1 {
			m.SchemaScroll++
		}
	case "k", "up":
		if m.SchemaScroll > 0 {
			m.SchemaScroll--
		}
	case "g":
		m.SchemaScroll = 0
	case "G":
		m.SchemaScroll = max(n-1, 0)
	}
	return m, nil
}
