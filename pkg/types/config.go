// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"unicode/utf8"
)

// ColumnLayout names a column mapping for metadata rows. Metadata files seen
// in the wild disagree on where the identifier lives, so the layout is chosen
// by configuration at startup rather than assumed.
type ColumnLayout string

const (
	// LayoutEINFirst carries the identifier in column 0.
	LayoutEINFirst ColumnLayout = "ein-first"
	// LayoutEINThird carries the identifier in column 2, after a document
	// number and a one-letter code.
	LayoutEINThird ColumnLayout = "ein-third"
)

// Columns maps each FilingRecord field to its 0-based column index.
// ImagesFrom is the first column of the image reference list; every column
// from there to the end of the row is an image reference.
type Columns struct {
	Identifier       int `json:"identifier" yaml:"identifier" mapstructure:"identifier"`
	TaxPeriod        int `json:"tax_period" yaml:"tax_period" mapstructure:"tax_period"`
	OrganizationName int `json:"organization_name" yaml:"organization_name" mapstructure:"organization_name"`
	State            int `json:"state" yaml:"state" mapstructure:"state"`
	Zipcode          int `json:"zipcode" yaml:"zipcode" mapstructure:"zipcode"`
	FilingType       int `json:"filing_type" yaml:"filing_type" mapstructure:"filing_type"`
	Revenue          int `json:"revenue" yaml:"revenue" mapstructure:"revenue"`
	FilingDate       int `json:"filing_date" yaml:"filing_date" mapstructure:"filing_date"`
	ImagesFrom       int `json:"images_from" yaml:"images_from" mapstructure:"images_from"`
}

// fields returns the named field indices, excluding ImagesFrom.
func (c Columns) fields() map[string]int {
	return map[string]int{
		"identifier":        c.Identifier,
		"tax_period":        c.TaxPeriod,
		"organization_name": c.OrganizationName,
		"state":             c.State,
		"zipcode":           c.Zipcode,
		"filing_type":       c.FilingType,
		"revenue":           c.Revenue,
		"filing_date":       c.FilingDate,
	}
}

// Required returns the minimum number of columns a row must have: every
// named field plus at least one image reference.
func (c Columns) Required() int {
	n := c.ImagesFrom + 1
	for _, idx := range c.fields() {
		if idx+1 > n {
			n = idx + 1
		}
	}
	return n
}

// Mapped reports whether column idx is bound to a named field or lies in
// the image reference range.
func (c Columns) Mapped(idx int) bool {
	if idx >= c.ImagesFrom {
		return true
	}
	for _, f := range c.fields() {
		if f == idx {
			return true
		}
	}
	return false
}

// Validate checks that indices are non-negative, distinct, and that no named
// field falls inside the image reference range.
func (c Columns) Validate() error {
	if c.ImagesFrom < 0 {
		return fmt.Errorf("images_from column must be non-negative, got %d", c.ImagesFrom)
	}
	seen := make(map[int]string)
	for name, idx := range c.fields() {
		if idx < 0 {
			return fmt.Errorf("%s column must be non-negative, got %d", name, idx)
		}
		if idx >= c.ImagesFrom {
			return fmt.Errorf("%s column %d overlaps image columns starting at %d", name, idx, c.ImagesFrom)
		}
		if other, ok := seen[idx]; ok {
			return fmt.Errorf("%s and %s both map to column %d", name, other, idx)
		}
		seen[idx] = name
	}
	return nil
}

// LayoutColumns returns the column mapping for a built-in layout.
func LayoutColumns(l ColumnLayout) (Columns, error) {
	base := Columns{
		TaxPeriod:        3,
		OrganizationName: 4,
		State:            5,
		Zipcode:          6,
		FilingType:       7,
		Revenue:          9,
		FilingDate:       10,
		ImagesFrom:       11,
	}
	switch l {
	case LayoutEINFirst:
		base.Identifier = 0
	case LayoutEINThird:
		base.Identifier = 2
	default:
		return Columns{}, fmt.Errorf("unknown column layout %q (want %s or %s)", l, LayoutEINFirst, LayoutEINThird)
	}
	return base, nil
}

// MalformedPolicy decides what happens to a row that lacks required columns.
type MalformedPolicy string

const (
	// MalformedSkip logs the row and continues with the next one.
	MalformedSkip MalformedPolicy = "skip"
	// MalformedAbort stops the run at the first malformed row.
	MalformedAbort MalformedPolicy = "abort"
)

// ConversionBackend identifies the tool that merges images into a PDF.
type ConversionBackend string

const (
	BackendImageMagick ConversionBackend = "imagemagick"
	BackendPdfcpu      ConversionBackend = "pdfcpu"
)

// ConversionConfig holds settings for a conversion run.
type ConversionConfig struct {
	// Layout selects the built-in column mapping.
	Layout ColumnLayout `json:"layout" yaml:"layout"`

	// Columns is the effective mapping: the layout's columns with any
	// per-field overrides applied.
	Columns Columns `json:"columns" yaml:"columns"`

	// Delimiter separates fields in the metadata file (default ',').
	Delimiter rune `json:"delimiter" yaml:"delimiter"`

	// OnMalformed selects skip or abort for rows that lack required columns.
	OnMalformed MalformedPolicy `json:"on_malformed" yaml:"on_malformed"`

	// OutputRoot is the directory under which per-input PDF directories are
	// created (default "pdfs").
	OutputRoot string `json:"output_root" yaml:"output_root"`

	// Backend selects imagemagick or pdfcpu.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// ConverterBin overrides ImageMagick binary detection (e.g. "/usr/bin/convert").
	ConverterBin string `json:"converter_bin,omitempty" yaml:"converter_bin,omitempty"`

	// SkipExisting leaves jobs whose output PDF already exists untouched.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// Verify checks the page count of every produced PDF.
	Verify bool `json:"verify" yaml:"verify"`

	// Report writes conversion-report.yaml next to the PDFs.
	Report bool `json:"report" yaml:"report"`

	// IndexDB is the path of the SQLite filing index; empty disables it.
	IndexDB string `json:"index_db,omitempty" yaml:"index_db,omitempty"`
}

// DefaultConversionConfig returns the settings used when nothing is configured.
func DefaultConversionConfig() ConversionConfig {
	cols, _ := LayoutColumns(LayoutEINFirst)
	return ConversionConfig{
		Layout:       LayoutEINFirst,
		Columns:      cols,
		Delimiter:    ',',
		OnMalformed:  MalformedSkip,
		OutputRoot:   "pdfs",
		Backend:      BackendImageMagick,
		SkipExisting: true,
		Verify:       true,
		Report:       true,
	}
}

// Validate reports the first invalid setting.
func (c ConversionConfig) Validate() error {
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if c.Delimiter == 0 || c.Delimiter == '"' || c.Delimiter == '\r' || c.Delimiter == '\n' ||
		c.Delimiter == utf8.RuneError {
		return fmt.Errorf("invalid delimiter %q", c.Delimiter)
	}
	switch c.OnMalformed {
	case MalformedSkip, MalformedAbort:
	default:
		return fmt.Errorf("on_malformed must be %s or %s, got %q", MalformedSkip, MalformedAbort, c.OnMalformed)
	}
	switch c.Backend {
	case BackendImageMagick, BackendPdfcpu:
	default:
		return fmt.Errorf("backend must be %s or %s, got %q", BackendImageMagick, BackendPdfcpu, c.Backend)
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output_root must not be empty")
	}
	return nil
}
