package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/validator"
)

type Tab int

const (
	TabSummary Tab = iota
	TabFailures
	TabSchema
	TabHelp
	tabCount
)

func (t Tab) String() string {
	return []string{
		" Summary ",
		" Failures ",
		" Schema ",
		" Help ",
	}[t]
}

// Runner performs one validation pass. The browser calls it on start and
// on every rerun.
type Runner func(ctx context.Context) (*validator.Report, error)

// Config describes what the browser validates.
type Config struct {
	Schema   *schema.Schema
	DataPath string
	Run      Runner
}

// HistoryEntry records one finished run.
type HistoryEntry struct {
	Timestamp time.Time
	Rows      int
	Failures  int
	Duration  time.Duration
	Passed    bool
	ErrMsg    string
}

type Model struct {
	ActiveTab Tab
	Width     int
	Height    int
	Config    Config

	IsRunning  bool
	StartTime  time.Time
	FinishTime time.Time
	Report     *validator.Report
	Spinner    spinner.Model

	Filter        textinput.Model
	FailureScroll int
	filtered      []validator.Failure
	SchemaScroll  int
	History       []HistoryEntry
	StatusMsg     string
	StatusKind    string
	Err           error
	ctx           context.Context
}

func NewModel(ctx context.Context, cfg Config) Model {
	filter := textinput.New()
	filter.Placeholder = "column, reason or value"
	filter.Prompt = "/ "
	filter.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		ActiveTab:  TabSummary,
		Config:     cfg,
		Filter:     filter,
		Spinner:    s,
		IsRunning:  true,
		StartTime:  time.Now(),
		StatusMsg:  "Validating " + cfg.DataPath + "...",
		StatusKind: "info",
		ctx:        ctx,
	}
}

// Failures returns the failures matching the current filter.
func (m Model) Failures() []validator.Failure {
	if m.Report == nil {
		return nil
	}
	if m.Filter.Value() == "" {
		return m.Report.Failures
	}
	return m.filtered
}

// applyFilter recomputes the filtered view. Matching is a case-insensitive
// substring test on column, reason tag, message and value.
func (m Model) applyFilter() Model {
	m.FailureScroll = 0
	m.filtered = nil
	q := strings.ToLower(strings.TrimSpace(m.Filter.Value()))
	if m.Report == nil || q == "" {
		return m
	}
	for _, f := range m.Report.Failures {
		if strings.Contains(strings.ToLower(f.Column), q) ||
			strings.Contains(f.Reason.String(), q) ||
			strings.Contains(strings.ToLower(f.Message), q) ||
			strings.Contains(strings.ToLower(f.Value), q) {
			m.filtered = append(m.filtered, f)
		}
	}
	return m
}

// FailingRows is the number of distinct rows with at least one failure.
func (m Model) FailingRows() int {
	if m.Report == nil {
		return 0
	}
	seen := make(map[int]struct{})
	for _, f := range m.Report.Failures {
		seen[f.Row] = struct{}{}
	}
	return len(seen)
}

// PassRate is the share of rows without failures.
func (m Model) PassRate() float64 {
	if m.Report == nil || m.Report.Rows == 0 {
		return 0
	}
	return float64(m.Report.Rows-m.FailingRows()) / float64(m.Report.Rows)
}

type ReasonCount struct {
	Reason validator.Reason
	Count  int
}

// ReasonCounts returns failure counts per reason, largest first.
func (m Model) ReasonCounts() []ReasonCount {
	if m.Report == nil {
		return nil
	}
	var out []ReasonCount
	for r, n := range m.Report.CountByReason() {
		out = append(out, ReasonCount{r, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

func (m Model) ElapsedTime() string {
	if m.StartTime.IsZero() {
		return "0s"
	}
	end := time.Now()
	if !m.FinishTime.IsZero() {
		end = m.FinishTime
	}
	return end.Sub(m.StartTime).Round(time.Millisecond).String()
}

// pageSize is the number of list lines that fit under the chrome.
func (m Model) pageSize() int {
	n := m.Height - 16
	if n < 5 {
		return 5
	}
	return n
}

func (m Model) tableLabel() string {
	if m.Config.Schema == nil {
		return "?"
	}
	return fmt.Sprintf("%s (%d columns)", m.Config.Schema.Table, m.Config.Schema.Len())
}
