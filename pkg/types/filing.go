// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the filing-converter
// pipeline: filing records parsed from metadata files, the conversion jobs
// derived from them, and the configuration that drives a run.
package types

// ConversionStatus indicates the outcome of converting one filing to PDF.
type ConversionStatus string

const (
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// FilingRecord holds the fields of one metadata row describing a single
// organization filing and the scanned pages that belong to it.
type FilingRecord struct {
	// Line is the 1-based row number within the metadata file.
	Line int `json:"line" yaml:"line"`

	// Identifier is the organization tax identifier as a digit string
	// (e.g. "751107227").
	Identifier string `json:"identifier" yaml:"identifier"`

	// TaxPeriod is the year and month code of the tax period (e.g. "201409").
	TaxPeriod string `json:"tax_period" yaml:"tax_period"`

	// OrganizationName is the free-text organization name.
	OrganizationName string `json:"organization_name" yaml:"organization_name"`

	// State is the 2-letter state code.
	State string `json:"state" yaml:"state"`

	// Zipcode may carry a hyphenated suffix (e.g. "27709-2194").
	Zipcode string `json:"zipcode" yaml:"zipcode"`

	// FilingType is the short form code (e.g. "990T").
	FilingType string `json:"filing_type" yaml:"filing_type"`

	// Revenue is a numeric string; blank when absent.
	Revenue string `json:"revenue,omitempty" yaml:"revenue,omitempty"`

	// FilingDate is the filing date as written in the file (MM/DD/YYYY).
	FilingDate string `json:"filing_date" yaml:"filing_date"`

	// ImageRefs lists the foreign-style paths of the scanned pages in page order
	// (e.g. `T:\0eac7966.TIF`).
	ImageRefs []string `json:"image_refs" yaml:"image_refs"`

	// Opaque holds the values of columns whose meaning is unknown, keyed by
	// column index. They are carried through without interpretation.
	Opaque map[int]string `json:"opaque,omitempty" yaml:"opaque,omitempty"`
}

// ConversionJob is the resolved work for one filing: the local image paths to
// merge, in page order, and the PDF to produce.
type ConversionJob struct {
	Record     FilingRecord `json:"record" yaml:"record"`
	Inputs     []string     `json:"inputs" yaml:"inputs"`
	OutputPath string       `json:"output_path" yaml:"output_path"`
}
