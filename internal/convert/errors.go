// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/filing-converter/internal/filing"
	"github.com/pdiddy/filing-converter/internal/metadata"
)

var (
	// ErrConversionFailed matches every failure of the conversion step itself:
	// a non-zero tool exit, a missing or empty output file, or a page count
	// short of the number of input images.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrNoOutput is returned when the converter reports success but the
	// output file is missing or empty.
	ErrNoOutput = fmt.Errorf("%w: no output file produced", ErrConversionFailed)

	// ErrMissingInput matches *MissingInputError.
	ErrMissingInput = errors.New("missing input image")

	// ErrDuplicateOutput matches *DuplicateOutputError.
	ErrDuplicateOutput = errors.New("duplicate output path")
)

// ConversionError reports a converter that did not complete.
type ConversionError struct {
	Output string
	// ExitCode is the external tool's exit code, or -1 when there is none.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s: %v", e.Output, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversionFailed }

// MissingInputError lists input images that do not exist on disk.
type MissingInputError struct {
	Paths []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%d input image(s) missing: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// PageCountMismatchError reports a PDF with fewer pages than input images.
type PageCountMismatchError struct {
	Output string
	Want   int
	Got    int
}

func (e *PageCountMismatchError) Error() string {
	return fmt.Sprintf("%s has %d page(s), want at least %d", e.Output, e.Got, e.Want)
}

func (e *PageCountMismatchError) Is(target error) bool { return target == ErrConversionFailed }

// DuplicateOutputError reports a record whose output path was already
// produced by an earlier record in the same run.
type DuplicateOutputError struct {
	Output    string
	FirstLine int
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("output %s already produced by line %d", e.Output, e.FirstLine)
}

func (e *DuplicateOutputError) Is(target error) bool { return target == ErrDuplicateOutput }

// Failure kinds recorded in run reports.
const (
	KindMalformedRecord   = "malformed_record"
	KindInvalidIdentifier = "invalid_identifier"
	KindPathResolution    = "path_resolution"
	KindMissingInput      = "missing_input"
	KindDuplicateOutput   = "duplicate_output"
	KindConversionFailure = "conversion_failure"
	KindOther             = "other"
)

// Kind classifies err into one of the failure kinds.
func Kind(err error) string {
	var pre *filing.PathResolutionError
	switch {
	case errors.Is(err, metadata.ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, filing.ErrIdentifierTooShort),
		errors.Is(err, filing.ErrAlreadyFormatted),
		errors.Is(err, filing.ErrIdentifierNotNumeric):
		return KindInvalidIdentifier
	case errors.As(err, &pre):
		return KindPathResolution
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrDuplicateOutput):
		return KindDuplicateOutput
	case errors.Is(err, ErrConversionFailed):
		return KindConversionFailure
	default:
		return KindOther
	}
}
