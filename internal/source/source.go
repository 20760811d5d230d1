// Package source turns data files into validator row sources.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taitai9847/prechecker/internal/validator"
)

// ErrNoHeader is returned, wrapped in a ReadError, when a file has no
// header row.
var ErrNoHeader = errors.New("no header row")

// ReadError is a fatal failure to open, decode or read a data file.
type ReadError struct {
	Path string
	Row  int // 0 when the failure is not tied to a row
	Err  error
}

func (e *ReadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("read %s: row %d: %v", e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Options control how a data file is decoded.
type Options struct {
	Encoding  string // WHATWG label, e.g. "utf-8", "shift_jis"; empty means utf-8
	Delimiter rune   // CSV field separator; zero means ','
	Sheet     string // XLSX sheet name; empty means the first sheet
}

// Source is a row source backed by an open file.
type Source interface {
	validator.RowSource
	Close() error
}

// Open picks the reader by file extension: .xlsx and .xlsm are workbooks,
// anything else is delimited text.
func Open(path string, opts Options) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path, opts)
	}
	return OpenCSV(path, opts)
}

// rowValues maps header fields to a record. Fields beyond the end of a
// short record are left absent.
func rowValues(header, record []string) map[string]string {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if i >= len(record) {
			break
		}
		if _, dup := values[h]; dup {
			continue
		}
		values[h] = record[i]
	}
	return values
}

func normalizeHeader(record []string) []string {
	header := make([]string, len(record))
	for i, h := range record {
		header[i] = strings.TrimSpace(h)
	}
	return header
}

func allBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
