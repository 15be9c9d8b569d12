//go:build !windows

package paths

import "os"

func temporaryBase() string {
	// Linux: prefer XDG_RUNTIME_DIR, which is wiped at logout.
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	// macOS / fallback
	return os.TempDir()
}
