package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/taitai9847/prechecker/internal/logging"
	"github.com/taitai9847/prechecker/internal/source"
)

// IssueSeverity is the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding of Validate. Path is the dotted config key.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks c without modifying it.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := source.LookupEncoding(c.Encoding); err != nil {
		add(SeverityError, "encoding", "%v", err)
	}

	switch d := strings.ToLower(c.Delimiter); {
	case d == "tab" || d == `\t` || d == "":
	case utf8.RuneCountInString(c.Delimiter) != 1:
		add(SeverityError, "delimiter", "must be a single character, got %q", c.Delimiter)
	case c.Delimiter == `"` || c.Delimiter == "\n" || c.Delimiter == "\r":
		add(SeverityError, "delimiter", "%q cannot be used as a delimiter", c.Delimiter)
	}

	if strings.TrimSpace(c.Output) == "" {
		add(SeverityError, "output", "report file path must not be empty")
	}
	if c.MaxDisplay < 0 {
		add(SeverityError, "max_display", "must not be negative, got %d", c.MaxDisplay)
	}
	if c.Workers < 0 {
		add(SeverityError, "workers", "must not be negative, got %d", c.Workers)
	}
	if c.BatchSize < 0 {
		add(SeverityError, "batch_size", "must not be negative, got %d", c.BatchSize)
	}
	if c.Workers <= 1 && c.BatchSize > 0 && c.BatchSize != Default().BatchSize {
		add(SeverityWarning, "batch_size", "only used when workers > 1")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add(SeverityError, "log_level", "want debug, info, warn or error: %v", err)
	}

	if raw := c.Metrics.PushgatewayURL; raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add(SeverityError, "metrics.pushgateway_url", "must be an http(s) URL, got %q", raw)
		}
		if strings.TrimSpace(c.Metrics.Job) == "" {
			add(SeverityWarning, "metrics.job", "empty job name, pushing as \"prechecker\"")
		}
	}
	return issues
}
