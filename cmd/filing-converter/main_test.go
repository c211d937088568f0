// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/filing-converter/internal/convert"
	"github.com/pdiddy/filing-converter/internal/ledger"
	"github.com/pdiddy/filing-converter/internal/locate"
	"github.com/pdiddy/filing-converter/pkg/types"
)

func TestConversionConfig_Defaults(t *testing.T) {
	cfg, err := conversionConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConversionConfig(), cfg)
}

func TestConversionConfig_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("layout", "ein-third")
	v.Set("columns.revenue", 8)
	v.Set("delimiter", "tab")
	v.Set("on_malformed", "abort")
	v.Set("output_root", "/srv/pdfs")
	v.Set("backend", "pdfcpu")
	v.Set("skip_existing", false)
	v.Set("verify", false)
	v.Set("index_db", "index/filings.db")

	cfg, err := conversionConfig(v)
	require.NoError(t, err)

	assert.Equal(t, types.LayoutEINThird, cfg.Layout)
	assert.Equal(t, 2, cfg.Columns.Identifier)
	assert.Equal(t, 8, cfg.Columns.Revenue)
	assert.Equal(t, '\t', cfg.Delimiter)
	assert.Equal(t, types.MalformedAbort, cfg.OnMalformed)
	assert.Equal(t, "/srv/pdfs", cfg.OutputRoot)
	assert.Equal(t, types.BackendPdfcpu, cfg.Backend)
	assert.False(t, cfg.SkipExisting)
	assert.False(t, cfg.Verify)
	assert.True(t, cfg.Report)
	assert.Equal(t, "index/filings.db", cfg.IndexDB)
}

func TestConversionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{"unknown layout", "layout", "ein-last", "unknown column layout"},
		{"bad policy", "on_malformed", "ignore", "on_malformed"},
		{"bad backend", "backend", "ghostscript", "backend"},
		{"long delimiter", "delimiter", ",,", "delimiter"},
		{"column collides", "columns.state", 4, "both map to column 4"},
		{"column inside images", "columns.zipcode", 12, "overlaps image columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := conversionConfig(v)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{",": ',', "tab": '\t', `\t`: '\t', "\t": '\t', "pipe": '|', ";": ';'} {
		got, err := parseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseDelimiter("ab")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(locate.ErrMetadataNotFound))
	assert.Equal(t, 2, exitCode(&partialFailureError{failed: 1, total: 3}))
}

func TestConvertCommand(t *testing.T) {
	root := t.TempDir()
	outRoot := filepath.Join(root, "pdfs")
	dbPath := filepath.Join(root, "filings.db")

	empty := filepath.Join(root, "2018_02_T")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(empty, "batch.DAT"), nil, 0o644))

	missing := filepath.Join(root, "2018_03_T")
	require.NoError(t, os.MkdirAll(missing, 0o755))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		return out.String(), err
	}

	out, err := run("convert", "--backend", "pdfcpu", "--output-root", outRoot, "--index-db", dbPath, empty)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Using converter: pdfcpu")
	assert.Contains(t, out, "(total: 0)")

	report, err := convert.ReadReport(filepath.Join(outRoot, "2018_02_T", convert.ReportFile))
	require.NoError(t, err)
	assert.Zero(t, report.Summary.Total)

	store, err := ledger.Open(dbPath)
	require.NoError(t, err)
	filings, err := store.List(t.Context(), ledger.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, filings)
	require.NoError(t, store.Close())

	_, err = run("convert", "--backend", "pdfcpu", "--output-root", outRoot, missing)
	assert.ErrorIs(t, err, locate.ErrMetadataNotFound)
	assert.Equal(t, 1, exitCode(err))
	_, statErr := os.Stat(filepath.Join(outRoot, "2018_03_T"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	out, err = run("filings", "--index-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No filings found.")

	out, err = run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "filing-converter dev")
}

func TestFormatFilings(t *testing.T) {
	var buf bytes.Buffer
	filings := []ledger.Filing{{
		Identifier:       "751107227",
		FilingType:       "990T",
		TaxPeriod:        "201409",
		OrganizationName: "A VERY LONG ORGANIZATION NAME THAT OVERFLOWS",
		State:            "TX",
		Status:           types.ConversionDone,
		Pages:            3,
		OutputPath:       "pdfs/2018_01_T/75-1107227_990T_201409.pdf",
	}}
	require.NoError(t, formatFilings(&buf, filings, false))
	assert.Contains(t, buf.String(), "A VERY LONG ORGANIZATION NA...")
	assert.Contains(t, buf.String(), "1 filings")

	buf.Reset()
	require.NoError(t, formatFilings(&buf, filings, true))
	assert.Contains(t, buf.String(), `"identifier": "751107227"`)
}
