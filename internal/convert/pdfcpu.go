// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// PdfcpuConverter builds the PDF in-process by importing each image as a
// page. It needs no external binary.
type PdfcpuConverter struct{}

// Name identifies the backend in console output.
func (PdfcpuConverter) Name() string { return "pdfcpu" }

// Convert imports inputs, in order, into a new PDF at output. pdfcpu appends
// to an existing file, so any previous output is removed first.
func (PdfcpuConverter) Convert(ctx context.Context, inputs []string, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &ConversionError{Output: output, ExitCode: -1, Err: fmt.Errorf("removing previous output: %w", err)}
	}
	if err := api.ImportImagesFile(inputs, output, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return &ConversionError{Output: output, ExitCode: -1, Err: err}
	}
	return nil
}

// PageCounter reads the number of pages in a PDF.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// PdfcpuPageCounter counts pages with pdfcpu.
type PdfcpuPageCounter struct{}

func (PdfcpuPageCounter) PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
