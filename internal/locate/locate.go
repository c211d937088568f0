// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate finds the metadata file that describes a directory of
// scanned filings.
package locate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MetadataExt is the metadata file extension, matched case-insensitively.
const MetadataExt = ".dat"

// ErrMetadataNotFound is returned when no metadata file exists under the root.
var ErrMetadataNotFound = errors.New("metadata file not found")

// AmbiguousError is returned when more than one metadata file exists under
// the root. Candidates are listed in walk order.
type AmbiguousError struct {
	Root       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("found %d metadata files under %s, expected exactly one: %s",
		len(e.Candidates), e.Root, strings.Join(e.Candidates, ", "))
}

// IsMetadataFile reports whether name has the metadata extension, ignoring case.
func IsMetadataFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), MetadataExt)
}

// Find walks root recursively and returns the path of its single metadata
// file. It returns ErrMetadataNotFound when there is none and an
// *AmbiguousError when there are several.
func Find(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("reading input directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("input %s is not a directory", root)
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsMetadataFile(d.Name()) {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking %s: %w", root, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w under %s", ErrMetadataNotFound, root)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Root: root, Candidates: matches}
	}
}
