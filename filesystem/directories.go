package filesystem

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Directory and paths helpers

const OwnerReadWriteExec = 0o700

// GetUserHomeDirectory returns the user home directory if one is set.
func GetUserHomeDirectory() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// ExpandPath returns an os-specific full path:
// ~ is replaced with the home directory, ${vars} are expanded and the
// result is cleaned.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := GetUserHomeDirectory(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// EnsureDir creates the expanded directory with its parents if it does not
// exist and returns its path.
func EnsureDir(fs afero.Fs, name string) (string, error) {
	path := ExpandPath(name)
	info, err := fs.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("%s exists and is not a directory", path)
	case err == nil:
		return path, nil
	case !os.IsNotExist(err):
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if err := fs.MkdirAll(path, OwnerReadWriteExec); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return path, nil
}
