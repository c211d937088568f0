// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/pdiddy/filing-converter/pkg/types"
)

// conversionConfig assembles the run configuration from viper, which merges
// flags, FILING_CONVERTER_* environment variables, and the config file.
// Individual columns can be remapped under the "columns" key, e.g.
//
//	layout: ein-third
//	columns:
//	  revenue: 8
func conversionConfig(v *viper.Viper) (types.ConversionConfig, error) {
	cfg := types.DefaultConversionConfig()

	if s := v.GetString("layout"); s != "" {
		cfg.Layout = types.ColumnLayout(s)
	}
	cols, err := types.LayoutColumns(cfg.Layout)
	if err != nil {
		return cfg, err
	}
	overrides := map[string]*int{
		"columns.identifier":        &cols.Identifier,
		"columns.tax_period":        &cols.TaxPeriod,
		"columns.organization_name": &cols.OrganizationName,
		"columns.state":             &cols.State,
		"columns.zipcode":           &cols.Zipcode,
		"columns.filing_type":       &cols.FilingType,
		"columns.revenue":           &cols.Revenue,
		"columns.filing_date":       &cols.FilingDate,
		"columns.images_from":       &cols.ImagesFrom,
	}
	for key, field := range overrides {
		if v.IsSet(key) {
			*field = v.GetInt(key)
		}
	}
	cfg.Columns = cols

	if s := v.GetString("delimiter"); s != "" {
		d, err := parseDelimiter(s)
		if err != nil {
			return cfg, err
		}
		cfg.Delimiter = d
	}
	if s := v.GetString("on_malformed"); s != "" {
		cfg.OnMalformed = types.MalformedPolicy(s)
	}
	if s := v.GetString("output_root"); s != "" {
		cfg.OutputRoot = s
	}
	if s := v.GetString("backend"); s != "" {
		cfg.Backend = types.ConversionBackend(s)
	}
	cfg.ConverterBin = v.GetString("converter_bin")
	cfg.IndexDB = v.GetString("index_db")
	if v.IsSet("skip_existing") {
		cfg.SkipExisting = v.GetBool("skip_existing")
	}
	if v.IsSet("verify") {
		cfg.Verify = v.GetBool("verify")
	}
	if v.IsSet("report") {
		cfg.Report = v.GetBool("report")
	}

	return cfg, cfg.Validate()
}

// parseDelimiter accepts a single character or one of the names "tab",
// "comma", "pipe", "semicolon". A literal `\t` is read as a tab.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character or tab, comma, pipe, semicolon; got %q", s)
	}
	return r, nil
}
