// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filing

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/filing-converter/pkg/types"
)

func TestFormatIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"nine digits", "751107227", "75-1107227", nil},
		{"three digits", "123", "12-3", nil},
		{"leading zeros kept", "010000001", "01-0000001", nil},
		{"empty", "", "", ErrIdentifierTooShort},
		{"two digits", "75", "", ErrIdentifierTooShort},
		{"already formatted", "75-1107227", "", ErrAlreadyFormatted},
		{"letters", "75A107227", "", ErrIdentifierNotNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatIdentifier(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, strings.Count(got, "-"))
			assert.Equal(t, tt.input, strings.Replace(got, "-", "", 1))
		})
	}
}

func TestFormatIdentifier_DoubleApplicationRejected(t *testing.T) {
	once, err := FormatIdentifier("751107227")
	require.NoError(t, err)

	_, err = FormatIdentifier(once)
	assert.ErrorIs(t, err, ErrAlreadyFormatted)
}

func TestResolveImageRef(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		ref  string
		want string
	}{
		{"uppercase drive", "2018_01_T", `T:\0eac7966.TIF`, "2018_01_T/0eac7966.TIF"},
		{"lowercase drive", "2018_01_T", `t:\0ecd4d44.tif`, "2018_01_T/0ecd4d44.tif"},
		{"other drive letter", "scans", `D:\page1.TIF`, "scans/page1.TIF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveImageRef(tt.dir, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
			assert.Equal(t, filepath.Join(tt.dir, tt.ref[3:]), got)
		})
	}
}

func TestResolveImageRef_Invalid(t *testing.T) {
	for _, ref := range []string{
		"",
		`T:\`,
		"0eac7966.TIF",
		`T:/0eac7966.TIF`,
		`TT\0eac7966.TIF`,
		`1:\0eac7966.TIF`,
		`\\server\0eac7966.TIF`,
	} {
		t.Run(ref, func(t *testing.T) {
			_, err := ResolveImageRef("dir", ref)
			var pre *PathResolutionError
			require.True(t, errors.As(err, &pre), "want *PathResolutionError, got %v", err)
			assert.Equal(t, ref, pre.Ref)
		})
	}
}

func TestResolveImageRefs_PreservesOrder(t *testing.T) {
	refs := []string{`T:\0ecd4d46.TIF`, `T:\0ecd4d44.TIF`, `T:\0ecd4d45.TIF`}
	got, err := ResolveImageRefs("2018_01_T", refs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("2018_01_T", "0ecd4d46.TIF"),
		filepath.Join("2018_01_T", "0ecd4d44.TIF"),
		filepath.Join("2018_01_T", "0ecd4d45.TIF"),
	}, got)

	_, err = ResolveImageRefs("2018_01_T", []string{`T:\a.TIF`, "bad"})
	assert.Error(t, err)
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "2018_01_T/a.TIF 2018_01_T/b.TIF", JoinPaths([]string{"2018_01_T/a.TIF", "2018_01_T/b.TIF"}))
	assert.Equal(t, "'my scans/a.TIF' b.TIF", JoinPaths([]string{"my scans/a.TIF", "b.TIF"}))
	assert.Equal(t, `'it'\''s.TIF'`, JoinPaths([]string{"it's.TIF"}))
	assert.Empty(t, JoinPaths(nil))
}

func TestNewJob(t *testing.T) {
	rec := types.FilingRecord{
		Line:       4,
		Identifier: "751107227",
		FilingType: "990T",
		TaxPeriod:  "201409",
		ImageRefs:  []string{`T:\0eac7966.TIF`, `T:\0eac7967.TIF`},
	}
	target := TargetDir("pdfs", "2018_01_T")

	job, err := NewJob(rec, "2018_01_T", target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("pdfs", "2018_01_T", "75-1107227_990T_201409.pdf"), job.OutputPath)
	assert.Equal(t, []string{
		filepath.Join("2018_01_T", "0eac7966.TIF"),
		filepath.Join("2018_01_T", "0eac7967.TIF"),
	}, job.Inputs)
	assert.Equal(t, rec, job.Record)
}

func TestNewJob_Errors(t *testing.T) {
	rec := types.FilingRecord{Line: 9, Identifier: "75", ImageRefs: []string{`T:\a.TIF`}}
	_, err := NewJob(rec, "in", "out")
	assert.ErrorIs(t, err, ErrIdentifierTooShort)
	assert.Contains(t, err.Error(), "line 9")

	rec = types.FilingRecord{Line: 2, Identifier: "751107227", ImageRefs: []string{"a.TIF"}}
	_, err = NewJob(rec, "in", "out")
	var pre *PathResolutionError
	assert.True(t, errors.As(err, &pre))
}

func TestTargetDir(t *testing.T) {
	assert.Equal(t, filepath.Join("pdfs", "2018_01_T"), TargetDir("pdfs", "2018_01_T"))
	assert.Equal(t, filepath.Join("pdfs", "2018_01_T"), TargetDir("pdfs", "/data/in/2018_01_T/"))
	assert.Equal(t, filepath.Join("/out", "batch"), TargetDir("/out", "./batch"))
}
