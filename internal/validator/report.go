package validator

import (
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Failure is one rejected cell.
type Failure struct {
	Row     int
	Column  string
	Value   string
	Reason  Reason
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("row %d, column '%s': %s (value: '%s')", f.Row, f.Column, f.Message, f.Value)
}

func newFailure(row int, column, value string, r Result) Failure {
	return Failure{Row: row, Column: column, Value: value, Reason: r.Reason, Message: r.String()}
}

// Report is the outcome of one validation run.
type Report struct {
	Table    string
	Failures []Failure // row-major, then schema column order
	Rows     int

	// Header diagnostics; never failures on their own.
	MissingColumns []string
	ExtraColumns   []string

	// UnknownTypes lists columns validated under the permissive fallback.
	UnknownTypes []string

	// Digest is an xxh3 hash over the ordered failures.
	Digest uint64
}

// Passed is true iff there are no failures.
func (r *Report) Passed() bool { return len(r.Failures) == 0 }

// CountByReason tallies failures per reason.
func (r *Report) CountByReason() map[Reason]int {
	out := make(map[Reason]int)
	for _, f := range r.Failures {
		out[f.Reason]++
	}
	return out
}

// CountByColumn tallies failures per column.
func (r *Report) CountByColumn() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Failures {
		out[f.Column]++
	}
	return out
}

func digest(failures []Failure) uint64 {
	h := xxh3.New()
	for _, f := range failures {
		h.WriteString(strconv.Itoa(f.Row))
		h.WriteString("\x1f")
		h.WriteString(f.Column)
		h.WriteString("\x1f")
		h.WriteString(f.Value)
		h.WriteString("\x1f")
		h.WriteString(f.Message)
		h.WriteString("\x1e")
	}
	return h.Sum64()
}
