package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// NoColor disables ANSI color output.
var NoColor = false

// Out receives the status lines. It defaults to stderr so that stdout can
// carry listings.
var Out io.Writer = os.Stderr

const (
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	bold   = "\033[1m"
	reset  = "\033[0m"
)

func c(s string) string {
	if NoColor {
		return ""
	}
	return s
}

// Ok prints a green check message.
func Ok(msg string) {
	fmt.Fprintf(Out, "  %s✓%s %s\n", c(green), c(reset), msg)
}

// Info prints an info line.
func Info(msg string) {
	fmt.Fprintln(Out, msg)
}

// Warn prints a yellow warning.
func Warn(msg string) {
	fmt.Fprintf(Out, "  %s⚠%s %s\n", c(yellow), c(reset), msg)
}

// Err prints a red error.
func Err(msg string) {
	fmt.Fprintf(Out, "  %s✗%s %s\n", c(red), c(reset), msg)
}

// Rule prints a horizontal separator line.
func Rule() {
	fmt.Fprintln(Out, strings.Repeat("=", 60))
}

// Heading prints a bold title line.
func Heading(msg string) {
	fmt.Fprintf(Out, "%s%s%s\n", c(bold), msg, c(reset))
}

// Table prints a simple ASCII table. Cells wider than 40 characters are
// cut with "...".
func Table(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for i := range columns {
			if i >= len(row) {
				continue
			}
			if n := utf8.RuneCountInString(clip(row[i], 40)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	sep := "+"
	for _, wd := range widths {
		sep += strings.Repeat("-", wd+2) + "+"
	}
	fmt.Fprintln(w, sep)
	header := "|"
	for i, col := range columns {
		header += " " + pad(col, widths[i]) + " |"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, sep)
	for _, row := range rows {
		line := "|"
		for i := range columns {
			s := ""
			if i < len(row) {
				s = clip(row[i], 40)
			}
			line += " " + pad(s, widths[i]) + " |"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, sep)
}

func clip(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

func pad(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
