// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-converter/internal/convert"
	"github.com/pdiddy/filing-converter/internal/ledger"
	"github.com/pdiddy/filing-converter/internal/magick"
	"github.com/pdiddy/filing-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-dir>",
	Short: "Convert every filing listed in a directory's metadata file",
	Long: `Convert locates the single .dat metadata file under input-dir, reads one
filing per row, and merges each filing's scanned pages into a PDF under
<output-root>/<input-dir>/.

Existing PDFs are skipped, so an interrupted run can be restarted safely.
Rows that fail to convert are reported and the run continues; a summary is
printed at the end and written to conversion-report.yaml.

Exit status is 0 when every row converted or was skipped, 1 when the run
could not start or was aborted, and 2 when some rows failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

// partialFailureError reports a completed run in which some rows failed.
type partialFailureError struct {
	failed int
	total  int
}

func (e *partialFailureError) Error() string {
	return fmt.Sprintf("%d of %d row(s) failed", e.failed, e.total)
}

func (e *partialFailureError) ExitCode() int { return 2 }

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := conversionConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	conv, name, err := newConverter(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Using converter: %s\n", name)

	runner := &convert.Runner{
		Converter: conv,
		Config:    cfg,
		Out:       cmd.OutOrStdout(),
		Err:       cmd.ErrOrStderr(),
	}
	if cfg.Verify {
		runner.Pages = convert.PdfcpuPageCounter{}
	}
	if cfg.IndexDB != "" {
		store, err := ledger.Open(cfg.IndexDB)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.Index = store
	}

	result, err := runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return &partialFailureError{failed: result.Failed + result.Malformed, total: result.Total()}
	}
	return nil
}

// newConverter builds the configured backend and returns it with a display name.
func newConverter(ctx context.Context, cfg types.ConversionConfig) (convert.Converter, string, error) {
	switch cfg.Backend {
	case types.BackendPdfcpu:
		c := convert.PdfcpuConverter{}
		return c, c.Name(), nil
	default:
		rt, err := magick.Detect(ctx, cfg.ConverterBin)
		if err != nil {
			return nil, "", err
		}
		c := convert.NewImageMagickConverter(rt)
		return c, c.Name(), nil
	}
}

func init() {
	f := convertCmd.Flags()
	f.String("layout", string(types.LayoutEINFirst), "column layout: ein-first or ein-third")
	f.String("delimiter", ",", "field delimiter: a single character, or tab, comma, pipe, semicolon")
	f.String("on-malformed", string(types.MalformedSkip), "malformed row policy: skip or abort")
	f.String("output-root", "pdfs", "directory that receives one subdirectory of PDFs per input directory")
	f.String("backend", string(types.BackendImageMagick), "conversion backend: imagemagick or pdfcpu")
	f.String("converter-bin", "", "ImageMagick binary (default: detect magick, then convert)")
	f.Bool("skip-existing", true, "leave filings whose PDF already exists untouched")
	f.Bool("verify", true, "check each PDF has a page per scanned image")
	f.Bool("report", true, "write conversion-report.yaml next to the PDFs")

	for key, flag := range map[string]string{
		"layout":        "layout",
		"delimiter":     "delimiter",
		"on_malformed":  "on-malformed",
		"output_root":   "output-root",
		"backend":       "backend",
		"converter_bin": "converter-bin",
		"skip_existing": "skip-existing",
		"verify":        "verify",
		"report":        "report",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}
