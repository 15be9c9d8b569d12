//go:build windows

package paths

import "os"

func temporaryBase() string { return os.TempDir() }
