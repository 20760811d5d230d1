package source

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/taitai9847/prechecker/internal/validator"
)

// XLSX reads rows of one worksheet. The first non-empty row is the header
// and rows are numbered as they appear in the sheet.
type XLSX struct {
	path   string
	f      *excelize.File
	rows   *excelize.Rows
	header []string
	row    int
}

// OpenXLSX opens a workbook and positions after the header of opts.Sheet,
// or of the first sheet.
func OpenXLSX(path string, opts Options) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	x, err := newXLSX(path, f, opts.Sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	return x, nil
}

func newXLSX(path string, f *excelize.File, sheet string) (*XLSX, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &ReadError{Path: path, Err: ErrNoHeader}
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("sheet %q not found", sheet)}
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	x := &XLSX{path: path, f: f, rows: rows}
	for rows.Next() {
		x.row++
		record, err := rows.Columns()
		if err != nil {
			return nil, &ReadError{Path: path, Row: x.row, Err: err}
		}
		if allBlank(record) {
			continue
		}
		x.header = normalizeHeader(record)
		return x, nil
	}
	if err := rows.Error(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return nil, &ReadError{Path: path, Err: ErrNoHeader}
}

// Header returns the header row's cell values.
func (x *XLSX) Header() []string { return x.header }

// Next returns the next data row or io.EOF. Blank rows are skipped and
// every header column is present, empty cells as "".
func (x *XLSX) Next() (validator.Row, error) {
	for x.rows.Next() {
		x.row++
		record, err := x.rows.Columns()
		if err != nil {
			return validator.Row{}, &ReadError{Path: x.path, Row: x.row, Err: err}
		}
		if allBlank(record) {
			continue
		}
		// trailing empty cells are not returned; the grid still has them
		for len(record) < len(x.header) {
			record = append(record, "")
		}
		return validator.Row{Number: x.row, Values: rowValues(x.header, record)}, nil
	}
	if err := x.rows.Error(); err != nil {
		return validator.Row{}, &ReadError{Path: x.path, Err: err}
	}
	return validator.Row{}, io.EOF
}

// Close releases the row iterator and the workbook.
func (x *XLSX) Close() error {
	if err := x.rows.Close(); err != nil {
		x.f.Close()
		return err
	}
	return x.f.Close()
}
