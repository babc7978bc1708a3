package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the daemon's directories
const AppName = "catalogd"

// DataDir returns the daemon's data directory. It falls back to a
// directory under the system temp dir when no home is available.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// Resolve returns path, or DataDir when path is empty.
func Resolve(path string) string {
	if path == "" {
		return DataDir()
	}
	return filepath.Clean(path)
}

// EnsureDir creates dir and its parents with owner-only permissions.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
