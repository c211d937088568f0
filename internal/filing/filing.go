// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filing turns parsed filing records into conversion jobs: it
// formats organization identifiers, resolves foreign-style image references
// to local paths, and names the output PDF.
package filing

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/filing-converter/pkg/types"
)

var (
	// ErrIdentifierTooShort is returned for identifiers with fewer than 3 characters.
	ErrIdentifierTooShort = errors.New("identifier too short")
	// ErrAlreadyFormatted is returned when the identifier already carries the hyphen.
	ErrAlreadyFormatted = errors.New("identifier already formatted")
	// ErrIdentifierNotNumeric is returned when the identifier has non-digit characters.
	ErrIdentifierNotNumeric = errors.New("identifier not numeric")
)

// FormatIdentifier inserts a hyphen after the second character of a digit
// string: "751107227" becomes "75-1107227". Formatting an already formatted
// identifier is rejected with ErrAlreadyFormatted.
func FormatIdentifier(id string) (string, error) {
	if len(id) < 3 {
		return "", fmt.Errorf("%w: %q", ErrIdentifierTooShort, id)
	}
	if id[2] == '-' {
		return "", fmt.Errorf("%w: %q", ErrAlreadyFormatted, id)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrIdentifierNotNumeric, id)
		}
	}
	return id[:2] + "-" + id[2:], nil
}

// prefixLen is the length of a drive prefix such as `T:\`.
const prefixLen = 3

// PathResolutionError reports an image reference that does not start with a
// drive prefix (letter, colon, backslash) or names nothing after it.
type PathResolutionError struct {
	Ref string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("image reference %q does not match the drive prefix form X:\\name", e.Ref)
}

func hasDrivePrefix(ref string) bool {
	if len(ref) <= prefixLen {
		return false
	}
	c := ref[0]
	isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	return isLetter && ref[1] == ':' && ref[2] == '\\'
}

// ResolveImageRef strips the drive prefix from ref and joins the remainder
// onto dir: ResolveImageRef("2018_01_T", `T:\0eac7966.TIF`) returns
// "2018_01_T/0eac7966.TIF".
func ResolveImageRef(dir, ref string) (string, error) {
	if !hasDrivePrefix(ref) {
		return "", &PathResolutionError{Ref: ref}
	}
	return filepath.Join(dir, ref[prefixLen:]), nil
}

// ResolveImageRefs resolves every reference in page order. It stops at the
// first reference that does not resolve.
func ResolveImageRefs(dir string, refs []string) ([]string, error) {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		p, err := ResolveImageRef(dir, ref)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// JoinPaths renders paths as one space-separated string, single-quoting any
// path that contains shell metacharacters.
func JoinPaths(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = shellQuote(p)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>()*?[]#~!{}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// TargetDir returns the directory that holds the PDFs for an input
// directory: {outputRoot}/{base(inputDir)}.
func TargetDir(outputRoot, inputDir string) string {
	return filepath.Join(outputRoot, filepath.Base(filepath.Clean(inputDir)))
}

// OutputName returns the PDF file name for a record:
// {formatted identifier}_{filing type}_{tax period}.pdf.
func OutputName(rec types.FilingRecord) (string, error) {
	id, err := FormatIdentifier(rec.Identifier)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{id, rec.FilingType, rec.TaxPeriod}, "_") + ".pdf", nil
}

// NewJob builds the conversion job for rec. Image references resolve under
// inputDir and the PDF lands in targetDir.
func NewJob(rec types.FilingRecord, inputDir, targetDir string) (types.ConversionJob, error) {
	name, err := OutputName(rec)
	if err != nil {
		return types.ConversionJob{}, fmt.Errorf("naming output for line %d: %w", rec.Line, err)
	}
	inputs, err := ResolveImageRefs(inputDir, rec.ImageRefs)
	if err != nil {
		return types.ConversionJob{}, fmt.Errorf("resolving images for line %d: %w", rec.Line, err)
	}
	return types.ConversionJob{
		Record:     rec,
		Inputs:     inputs,
		OutputPath: filepath.Join(targetDir, name),
	}, nil
}
