// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata parses delimited metadata files into filing records.
// Files have no header row; each row describes one filing, with fields at
// fixed positions given by a column layout and the scanned page references
// filling the remaining columns.
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/filing-converter/pkg/types"
)

// ErrMalformedRecord matches every *MalformedRecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes a row that could not be turned into a
// FilingRecord.
type MalformedRecordError struct {
	Line     int
	Columns  int
	Required int
	Reason   string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
	default:
		return fmt.Sprintf("malformed record at line %d: has %d columns, need at least %d",
			e.Line, e.Columns, e.Required)
	}
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// Options controls how rows are split and mapped.
type Options struct {
	Columns   types.Columns
	Delimiter rune
}

// OptionsFromConfig extracts parser options from a run configuration.
func OptionsFromConfig(cfg types.ConversionConfig) Options {
	return Options{Columns: cfg.Columns, Delimiter: cfg.Delimiter}
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	if delim != 0 {
		cr.Comma = delim
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// CountRows reads the whole file once and returns the number of rows it
// holds. Rows that fail to parse still count, so the result matches the
// number of Next calls that return something other than io.EOF.
func CountRows(path string, opts Options) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening metadata file %s: %w", path, err)
	}
	defer f.Close()

	cr := newCSVReader(f, opts.Delimiter)
	n := 0
	for {
		_, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		var pe *csv.ParseError
		if err != nil && !errors.As(err, &pe) {
			return n, fmt.Errorf("counting rows in %s: %w", path, err)
		}
		n++
	}
}

// Reader streams FilingRecords from a metadata file in file order.
type Reader struct {
	f    *os.File
	csv  *csv.Reader
	cols types.Columns
}

// Open opens path for streaming. The caller must Close the Reader.
func Open(path string, opts Options) (*Reader, error) {
	if err := opts.Columns.Validate(); err != nil {
		return nil, fmt.Errorf("invalid column mapping: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata file %s: %w", path, err)
	}
	return &Reader{f: f, csv: newCSVReader(f, opts.Delimiter), cols: opts.Columns}, nil
}

// Next returns the next record. It returns io.EOF after the last row and a
// *MalformedRecordError for a row that cannot be mapped; reading may
// continue after a malformed row.
func (r *Reader) Next() (types.FilingRecord, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return types.FilingRecord{}, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return types.FilingRecord{}, &MalformedRecordError{Line: pe.StartLine, Err: pe.Err}
		}
		return types.FilingRecord{}, fmt.Errorf("reading metadata: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	return ParseRow(row, line, r.cols)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ParseRow maps one split row onto a FilingRecord. Fields are trimmed of
// surrounding whitespace and blank image columns are dropped.
func ParseRow(row []string, line int, cols types.Columns) (types.FilingRecord, error) {
	if need := cols.Required(); len(row) < need {
		return types.FilingRecord{}, &MalformedRecordError{Line: line, Columns: len(row), Required: need}
	}

	field := func(i int) string { return strings.TrimSpace(row[i]) }

	rec := types.FilingRecord{
		Line:             line,
		Identifier:       field(cols.Identifier),
		TaxPeriod:        field(cols.TaxPeriod),
		OrganizationName: field(cols.OrganizationName),
		State:            field(cols.State),
		Zipcode:          field(cols.Zipcode),
		FilingType:       field(cols.FilingType),
		Revenue:          field(cols.Revenue),
		FilingDate:       field(cols.FilingDate),
	}

	for i := cols.ImagesFrom; i < len(row); i++ {
		if ref := field(i); ref != "" {
			rec.ImageRefs = append(rec.ImageRefs, ref)
		}
	}
	if len(rec.ImageRefs) == 0 {
		return types.FilingRecord{}, &MalformedRecordError{
			Line: line, Columns: len(row), Required: cols.Required(),
			Reason: "no image references",
		}
	}
	if rec.Identifier == "" {
		return types.FilingRecord{}, &MalformedRecordError{
			Line: line, Columns: len(row), Required: cols.Required(),
			Reason: "empty identifier",
		}
	}

	for i := 0; i < cols.ImagesFrom; i++ {
		if cols.Mapped(i) {
			continue
		}
		if v := field(i); v != "" {
			if rec.Opaque == nil {
				rec.Opaque = make(map[int]string)
			}
			rec.Opaque[i] = v
		}
	}

	return rec, nil
}
