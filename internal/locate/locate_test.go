// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		want    string
		wantErr error
		wantAmb int
	}{
		{
			name:  "uppercase extension at root",
			files: []string{"index.DAT", "0eac7966.TIF"},
			want:  "index.DAT",
		},
		{
			name:  "lowercase extension in subdirectory",
			files: []string{"scans/0eac7966.TIF", "meta/batch.dat"},
			want:  "meta/batch.dat",
		},
		{
			name:  "mixed case extension",
			files: []string{"batch.Dat"},
			want:  "batch.Dat",
		},
		{
			name:    "no metadata file",
			files:   []string{"0eac7966.TIF", "notes.txt", "data.dat.bak"},
			wantErr: ErrMetadataNotFound,
		},
		{
			name:    "empty directory",
			wantErr: ErrMetadataNotFound,
		},
		{
			name:    "two metadata files",
			files:   []string{"a.DAT", "sub/b.dat"},
			wantAmb: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(root, f))
			}

			got, err := Find(root)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAmb > 0:
				var amb *AmbiguousError
				require.True(t, errors.As(err, &amb), "want *AmbiguousError, got %v", err)
				assert.Len(t, amb.Candidates, tt.wantAmb)
				assert.Contains(t, err.Error(), "expected exactly one")
			default:
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(root, tt.want), got)
			}
		})
	}
}

func TestFind_DirectoryNamedLikeMetadata(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "old.dat"), 0o755))
	touch(t, filepath.Join(root, "real.DAT"))

	got, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real.DAT"), got)
}

func TestFind_RootErrors(t *testing.T) {
	root := t.TempDir()

	_, err := Find(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(root, "file.txt")
	touch(t, file)
	_, err = Find(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestIsMetadataFile(t *testing.T) {
	assert.True(t, IsMetadataFile("a.DAT"))
	assert.True(t, IsMetadataFile("a.dat"))
	assert.False(t, IsMetadataFile("a.data"))
	assert.False(t, IsMetadataFile("dat"))
}
