// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutColumns(t *testing.T) {
	first, err := LayoutColumns(LayoutEINFirst)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Identifier)
	assert.Equal(t, 11, first.ImagesFrom)
	assert.Equal(t, 12, first.Required())

	third, err := LayoutColumns(LayoutEINThird)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Identifier)
	assert.Equal(t, first.TaxPeriod, third.TaxPeriod)
	assert.Equal(t, first.FilingDate, third.FilingDate)

	_, err = LayoutColumns("ein-last")
	assert.Error(t, err)
}

func TestColumnsMapped(t *testing.T) {
	cols, err := LayoutColumns(LayoutEINFirst)
	require.NoError(t, err)

	for _, idx := range []int{0, 3, 4, 5, 6, 7, 9, 10, 11, 25} {
		assert.True(t, cols.Mapped(idx), "column %d", idx)
	}
	for _, idx := range []int{1, 2, 8} {
		assert.False(t, cols.Mapped(idx), "column %d", idx)
	}
}

func TestColumnsValidate(t *testing.T) {
	base, err := LayoutColumns(LayoutEINFirst)
	require.NoError(t, err)
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		modify func(*Columns)
	}{
		{"negative field", func(c *Columns) { c.State = -1 }},
		{"negative images", func(c *Columns) { c.ImagesFrom = -1 }},
		{"duplicate index", func(c *Columns) { c.State = c.Zipcode }},
		{"field inside images", func(c *Columns) { c.Revenue = 14 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := base
			tt.modify(&cols)
			assert.Error(t, cols.Validate())
		})
	}
}

func TestConversionConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConversionConfig().Validate())

	tests := []struct {
		name   string
		modify func(*ConversionConfig)
	}{
		{"quote delimiter", func(c *ConversionConfig) { c.Delimiter = '"' }},
		{"zero delimiter", func(c *ConversionConfig) { c.Delimiter = 0 }},
		{"unknown policy", func(c *ConversionConfig) { c.OnMalformed = "ignore" }},
		{"unknown backend", func(c *ConversionConfig) { c.Backend = "ghostscript" }},
		{"empty output root", func(c *ConversionConfig) { c.OutputRoot = "" }},
		{"bad columns", func(c *ConversionConfig) { c.Columns.Identifier = c.Columns.State }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConversionConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConversionConfig()
	cfg.Delimiter = '\t'
	assert.NoError(t, cfg.Validate())
}
