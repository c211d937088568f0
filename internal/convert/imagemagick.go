// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"

	"github.com/pdiddy/filing-converter/internal/magick"
)

// ImageMagickConverter merges scanned pages into a PDF with the ImageMagick
// binary behind a magick.Runtime injected at construction time.
type ImageMagickConverter struct {
	runtime magick.Runtime
}

// NewImageMagickConverter creates a converter that runs rt.
func NewImageMagickConverter(rt magick.Runtime) *ImageMagickConverter {
	return &ImageMagickConverter{runtime: rt}
}

// Name returns the underlying binary name.
func (m *ImageMagickConverter) Name() string { return m.runtime.Name() }

// Convert writes inputs, in order, as the pages of output. A failed process
// is reported as a *ConversionError carrying the exit code.
func (m *ImageMagickConverter) Convert(ctx context.Context, inputs []string, output string) error {
	err := m.runtime.Merge(ctx, inputs, output)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	ce := &ConversionError{Output: output, ExitCode: -1, Err: err}
	var ee *magick.ExitError
	if errors.As(err, &ee) {
		ce.ExitCode = ee.Code
		ce.Stderr = ee.Stderr
	}
	return ce
}
