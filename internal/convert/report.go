// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/filing-converter/pkg/types"
)

// ReportFile is the run report written into the output directory.
const ReportFile = "conversion-report.yaml"

// Report is the on-disk summary of one conversion run.
type Report struct {
	InputDir     string             `yaml:"input_dir"`
	MetadataFile string             `yaml:"metadata_file"`
	OutputDir    string             `yaml:"output_dir"`
	Layout       types.ColumnLayout `yaml:"layout"`
	Backend      string             `yaml:"backend"`
	Summary      ReportSummary      `yaml:"summary"`
	Failures     []Failure          `yaml:"failures,omitempty"`
	Timestamp    time.Time          `yaml:"timestamp"`
}

// ReportSummary stores the run counts.
type ReportSummary struct {
	Total     int `yaml:"total"`
	Converted int `yaml:"converted"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Malformed int `yaml:"malformed"`
}

// NewReport assembles a Report from a finished run.
func NewReport(inputDir, metadataFile, outputDir string, cfg types.ConversionConfig, res BatchResult, at time.Time) Report {
	return Report{
		InputDir:     inputDir,
		MetadataFile: metadataFile,
		OutputDir:    outputDir,
		Layout:       cfg.Layout,
		Backend:      string(cfg.Backend),
		Summary: ReportSummary{
			Total:     res.Total(),
			Converted: res.Converted,
			Skipped:   res.Skipped,
			Failed:    res.Failed,
			Malformed: res.Malformed,
		},
		Failures:  res.Failures,
		Timestamp: at.UTC(),
	}
}

// WriteReport saves r as YAML at path.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	var r Report
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("reading report %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return r, nil
}
