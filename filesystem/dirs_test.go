package filesystem

import (
	"os/user"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestGetUserHomeDirectory(t *testing.T) {
	t.Setenv("HOME", "/home/esgf")
	require.Equal(t, "/home/esgf", GetUserHomeDirectory())

	t.Setenv("HOME", "")
	usr, err := user.Current()
	require.NoError(t, err)
	require.Equal(t, usr.HomeDir, GetUserHomeDirectory())
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/esgf")
	t.Setenv("SOLRSYNC_ROOT", "/srv")
	for _, tc := range []struct {
		path     string
		expected string
	}{
		{"", "."},
		{".", "."},
		{"~", "/home/esgf"},
		{"~/.solrsync", "/home/esgf/.solrsync"},
		{"~/.solrsync/../state", "/home/esgf/state"},
		{"~other/dir", "~other/dir"},
		{"a/b/../c/d/..", "a/c"},
		{"$SOLRSYNC_ROOT/solrsync", "/srv/solrsync"},
		{"/var/lib/solrsync/", "/var/lib/solrsync"},
	} {
		require.Equal(t, filepath.FromSlash(tc.expected), ExpandPath(tc.path), tc.path)
	}
}

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := EnsureDir(fs, "/data/solrsync")
	require.NoError(t, err)
	require.Equal(t, "/data/solrsync", path)
	info, err := fs.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// existing directories are kept
	require.NoError(t, afero.WriteFile(fs, "/data/solrsync/state.sql", []byte("x"), 0o600))
	_, err = EnsureDir(fs, "/data/solrsync")
	require.NoError(t, err)
	exists, err := afero.Exists(fs, "/data/solrsync/state.sql")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = EnsureDir(fs, "/data/solrsync/state.sql")
	require.ErrorContains(t, err, "not a directory")
}
