package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/validator"
)

// DefaultReportFile is where the failure report goes unless configured.
const DefaultReportFile = "validation_errors.csv"

// DefaultMaxDisplay bounds the console failure listing.
const DefaultMaxDisplay = 10

// Schema prints the extracted columns as a table.
func Schema(w io.Writer, s *schema.Schema) {
	fmt.Fprintf(w, "Table %s: %d columns\n", s.Table, s.Len())
	rows := make([][]string, 0, s.Len())
	for _, col := range s.Columns {
		null := "NULL"
		if !col.Nullable {
			null = "NOT NULL"
		}
		var flags []string
		if col.PrimaryKey {
			flags = append(flags, "pk")
		}
		if col.AutoGenerated {
			flags = append(flags, "auto")
		}
		rows = append(rows, []string{col.Name, col.Type, col.Spec().Family.String(), null, strings.Join(flags, ",")})
	}
	Table(w, []string{"column", "type", "family", "null", "flags"}, rows)
}

// Summary prints the run outcome and at most limit failures, then a count
// of the rest. limit <= 0 means DefaultMaxDisplay.
func Summary(w io.Writer, rep *validator.Report, limit int) {
	if limit <= 0 {
		limit = DefaultMaxDisplay
	}
	if rep.Passed() {
		fmt.Fprintf(w, "Result: PASSED (%d rows)\n", rep.Rows)
		fmt.Fprintln(w, "All rows conform to the table definition.")
		return
	}
	fmt.Fprintf(w, "Result: FAILED (%d rows, %d failures)\n\n", rep.Rows, len(rep.Failures))
	fmt.Fprintf(w, "Failures (first %d):\n", min(limit, len(rep.Failures)))
	for i, f := range rep.Failures {
		if i == limit {
			break
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, f)
	}
	if rest := len(rep.Failures) - limit; rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
}

// Breakdown prints failure counts per reason, most frequent first.
func Breakdown(w io.Writer, rep *validator.Report) {
	counts := rep.CountByReason()
	reasons := make([]validator.Reason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if counts[reasons[i]] != counts[reasons[j]] {
			return counts[reasons[i]] > counts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{r.String(), strconv.Itoa(counts[r])})
	}
	Table(w, []string{"reason", "count"}, rows)
}

// WriteCSV writes the failure report: a header line, then one line per
// failure with column, value and reason quoted and inner quotes doubled.
func WriteCSV(w io.Writer, failures []validator.Failure) error {
	if _, err := io.WriteString(w, "row_number,column_name,value,reason\n"); err != nil {
		return err
	}
	for _, f := range failures {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%s\n", f.Row, quote(f.Column), quote(f.Value), quote(f.Message))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the failure report to path.
func WriteFile(path string, failures []validator.Failure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteCSV(f, failures); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
