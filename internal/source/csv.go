package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/taitai9847/prechecker/internal/validator"
)

// CSV reads delimited text. The header is row 1 and data rows are numbered
// from 2 by record, so a quoted field spanning lines still counts once.
type CSV struct {
	path   string
	closer io.Closer
	r      *csv.Reader
	header []string
	row    int
}

// OpenCSV opens path and reads its header.
func OpenCSV(path string, opts Options) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	c, err := newCSV(path, f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

// NewCSV reads delimited text from r. name is used in error messages.
func NewCSV(name string, r io.Reader, opts Options) (*CSV, error) {
	return newCSV(name, r, opts)
}

func newCSV(path string, r io.Reader, opts Options) (*CSV, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	// BOMOverride strips a UTF-8/16 byte order mark and otherwise decodes
	// with the configured encoding.
	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	c := &CSV{path: path, r: cr, row: 1}
	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ReadError{Path: path, Err: ErrNoHeader}
	}
	if err != nil {
		return nil, &ReadError{Path: path, Row: 1, Err: err}
	}
	if allBlank(record) {
		return nil, &ReadError{Path: path, Row: 1, Err: ErrNoHeader}
	}
	c.header = normalizeHeader(record)
	return c, nil
}

// Header returns the field names of the first record.
func (c *CSV) Header() []string { return c.header }

// Next returns the next data row or io.EOF.
func (c *CSV) Next() (validator.Row, error) {
	record, err := c.r.Read()
	if errors.Is(err, io.EOF) {
		return validator.Row{}, io.EOF
	}
	c.row++
	if err != nil {
		return validator.Row{}, &ReadError{Path: c.path, Row: c.row, Err: err}
	}
	return validator.Row{Number: c.row, Values: rowValues(c.header, record)}, nil
}

// Close releases the underlying file, if any.
func (c *CSV) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// LookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "shift_jis" or "windows-1252". An empty label means UTF-8.
func LookupEncoding(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return enc, nil
}
