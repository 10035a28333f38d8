package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoColumns is returned for an upload with no header row at all.
	ErrNoColumns = errors.New("no columns to parse from file")
	// ErrNotText is returned when the upload is not UTF-8 text.
	ErrNotText = errors.New("file is not UTF-8 encoded text")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports why an upload could not be read as a table.  Line is
// 1-based and zero when the failure is not tied to a line.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads comma-separated text from r.  The first non-blank record is the
// header.  Blank lines are skipped and short rows are padded with empty cells.
// When the first data row has exactly one field more than the header, that
// leading field is read as the row index for every row; otherwise, and after
// that first row, rows wider than expected are rejected.  A nil error always comes with a
// non-nil table; a non-nil error is always a *ParseError.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Reason: "read upload: " + err.Error(), Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return nil, &ParseError{Reason: ErrNotText.Error(), Err: ErrNotText}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1 // row width is checked against the header below

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: ErrNoColumns.Error(), Err: ErrNoColumns}
	}
	if err != nil {
		return nil, fromReaderError(err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := &Table{Columns: cols, Rows: [][]string{}}
	width := len(cols)
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fromReaderError(err)
		}
		// A first data row with exactly one extra field means the file
		// carries an unnamed leading index column.
		if first && len(rec) == len(cols)+1 {
			width = len(rec)
			t.Index = []string{}
		}
		first = false
		if len(rec) > width {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, saw %d", width, len(rec)),
			}
		}
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		if t.Index != nil {
			t.Index = append(t.Index, rec[0])
			rec = rec[1:]
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func fromReaderError(err error) *ParseError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Reason: pe.Err.Error(), Err: err}
	}
	return &ParseError{Reason: err.Error(), Err: err}
}
