// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert merges the scanned pages of each filing into a PDF. A
// Runner drives one pass over an input directory: it locates the metadata
// file, streams its records, builds a job per record, hands the job to a
// pluggable Converter, and summarizes the outcome.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/filing-converter/internal/filing"
	"github.com/pdiddy/filing-converter/internal/locate"
	"github.com/pdiddy/filing-converter/internal/metadata"
	"github.com/pdiddy/filing-converter/internal/progress"
	"github.com/pdiddy/filing-converter/pkg/types"
)

// Converter merges image files into a single PDF. Different backends
// (ImageMagick, pdfcpu) implement this interface.
type Converter interface {
	// Convert writes inputs, in order, as the pages of output.
	Convert(ctx context.Context, inputs []string, output string) error
}

// Recorder receives the outcome of every job that reached the converter
// stage. The SQLite filing index implements it.
type Recorder interface {
	Record(ctx context.Context, job types.ConversionJob, status types.ConversionStatus, pages int, cause error) error
}

// Failure describes one record that did not convert.
type Failure struct {
	Line       int    `json:"line" yaml:"line"`
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Output     string `json:"output,omitempty" yaml:"output,omitempty"`
	Kind       string `json:"kind" yaml:"kind"`
	Error      string `json:"error" yaml:"error"`
}

// BatchResult holds the outcome of a conversion run.
type BatchResult struct {
	Converted int       `json:"converted" yaml:"converted"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
	Failed    int       `json:"failed" yaml:"failed"`
	Malformed int       `json:"malformed" yaml:"malformed"`
	Failures  []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Total returns the number of rows processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed + r.Malformed
}

// HasFailures reports whether any row failed or was malformed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Malformed > 0
}

func (r *BatchResult) addFailure(rec types.FilingRecord, output string, err error) {
	r.Failures = append(r.Failures, Failure{
		Line:       rec.Line,
		Identifier: rec.Identifier,
		Output:     output,
		Kind:       Kind(err),
		Error:      err.Error(),
	})
}

// Outcome is the result of a single job.
type Outcome struct {
	Status types.ConversionStatus
	Pages  int
	Err    error
}

// Runner converts every filing listed in an input directory's metadata file.
type Runner struct {
	Converter Converter
	// Pages verifies output page counts when set.
	Pages PageCounter
	// Index records job outcomes when set.
	Index  Recorder
	Config types.ConversionConfig
	// Out receives progress and status lines; Err receives warnings.
	Out io.Writer
	Err io.Writer
}

// Run performs one pass over inputDir. Locating or reading the metadata
// file, and a malformed row under the abort policy, end the run with an
// error. Every other failure is per record: it is reported, counted in the
// result, and the run moves on to the next record.
func (r *Runner) Run(ctx context.Context, inputDir string) (BatchResult, error) {
	var result BatchResult

	datPath, err := locate.Find(inputDir)
	if err != nil {
		return result, err
	}
	fmt.Fprintf(r.Out, "metadata file located: %s\n", datPath)

	opts := metadata.OptionsFromConfig(r.Config)
	total, err := metadata.CountRows(datPath, opts)
	if err != nil {
		return result, err
	}

	reader, err := metadata.Open(datPath, opts)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	targetDir := filing.TargetDir(r.Config.OutputRoot, inputDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", targetDir, err)
	}

	prog := progress.New(r.Out, total)
	seen := make(map[string]int)

	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run interrupted after %d of %d rows: %w", prog.Processed(), total, err)
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, metadata.ErrMalformedRecord) {
			if r.Config.OnMalformed == types.MalformedAbort {
				return result, err
			}
			fmt.Fprintf(r.Err, "warning: skipping %v\n", err)
			result.Malformed++
			var mre *metadata.MalformedRecordError
			if errors.As(err, &mre) {
				rec.Line = mre.Line
			}
			result.addFailure(rec, "", err)
			prog.Step()
			continue
		}
		if err != nil {
			return result, err
		}

		job, err := filing.NewJob(rec, inputDir, targetDir)
		if err != nil {
			fmt.Fprintf(r.Out, "failed:  line %d (%v)\n", rec.Line, err)
			result.Failed++
			result.addFailure(rec, "", err)
			prog.Step()
			continue
		}

		fmt.Fprintf(r.Out, "images: %s\n", filing.JoinPaths(job.Inputs))
		fmt.Fprintf(r.Out, "target: %s\n", job.OutputPath)

		out := r.ConvertJob(ctx, job, seen)
		if out.Err != nil && ctx.Err() != nil {
			return result, fmt.Errorf("run interrupted at line %d: %w", rec.Line, ctx.Err())
		}

		name := filepath.Base(job.OutputPath)
		switch out.Status {
		case types.ConversionDone:
			result.Converted++
			fmt.Fprintf(r.Out, "converted: %s\n", name)
		case types.ConversionSkipped:
			result.Skipped++
			fmt.Fprintf(r.Out, "skipped: %s (already exists)\n", name)
		case types.ConversionFailed:
			result.Failed++
			result.addFailure(rec, job.OutputPath, out.Err)
			fmt.Fprintf(r.Out, "failed:  %s (%v)\n", name, out.Err)
		}

		// A duplicate shares its output path with the record that produced it.
		if r.Index != nil && !errors.Is(out.Err, ErrDuplicateOutput) {
			if err := r.Index.Record(ctx, job, out.Status, out.Pages, out.Err); err != nil {
				fmt.Fprintf(r.Err, "warning: indexing %s: %v\n", name, err)
			}
		}

		prog.Step()
	}

	fmt.Fprintf(r.Out, "\nBatch summary: %d converted, %d skipped, %d failed, %d malformed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Malformed, result.Total())

	if r.Config.Report {
		report := NewReport(inputDir, datPath, targetDir, r.Config, result, time.Now())
		path := filepath.Join(targetDir, ReportFile)
		if err := WriteReport(path, report); err != nil {
			fmt.Fprintf(r.Err, "warning: %v\n", err)
		}
	}

	return result, nil
}

// ConvertJob converts a single job. seen maps output paths already produced
// in this run to the line that produced them; ConvertJob adds job to it.
// An existing non-empty output is left alone when SkipExisting is set; an
// output that fails conversion or verification is removed.
func (r *Runner) ConvertJob(ctx context.Context, job types.ConversionJob, seen map[string]int) Outcome {
	if line, ok := seen[job.OutputPath]; ok {
		return Outcome{
			Status: types.ConversionFailed,
			Err:    &DuplicateOutputError{Output: job.OutputPath, FirstLine: line},
		}
	}
	seen[job.OutputPath] = job.Record.Line

	if r.Config.SkipExisting && nonEmptyFile(job.OutputPath) {
		return Outcome{Status: types.ConversionSkipped}
	}

	if missing := missingInputs(job.Inputs); len(missing) > 0 {
		return Outcome{Status: types.ConversionFailed, Err: &MissingInputError{Paths: missing}}
	}

	if err := r.Converter.Convert(ctx, job.Inputs, job.OutputPath); err != nil {
		discard(job.OutputPath)
		return Outcome{Status: types.ConversionFailed, Err: err}
	}

	if !nonEmptyFile(job.OutputPath) {
		return Outcome{Status: types.ConversionFailed, Err: fmt.Errorf("%s: %w", job.OutputPath, ErrNoOutput)}
	}

	var pages int
	if r.Pages != nil {
		n, err := r.Pages.PageCount(job.OutputPath)
		if err != nil {
			discard(job.OutputPath)
			return Outcome{
				Status: types.ConversionFailed,
				Err:    fmt.Errorf("%w: reading page count of %s: %v", ErrConversionFailed, job.OutputPath, err),
			}
		}
		// A multi-frame TIFF contributes several pages.
		if n < len(job.Inputs) {
			discard(job.OutputPath)
			return Outcome{
				Status: types.ConversionFailed,
				Pages:  n,
				Err:    &PageCountMismatchError{Output: job.OutputPath, Want: len(job.Inputs), Got: n},
			}
		}
		pages = n
	}

	return Outcome{Status: types.ConversionDone, Pages: pages}
}

// discard removes a partial or unverified output so a later run retries it.
func discard(path string) {
	_ = os.Remove(path)
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func missingInputs(paths []string) []string {
	var missing []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			missing = append(missing, p)
		}
	}
	return missing
}
