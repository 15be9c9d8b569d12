// Package paths resolves where slot directories live on disk.
//
// Two roots exist:
//
//   - temporary:  volatile storage, cleared per boot or session
//     (default: $XDG_RUNTIME_DIR/clipslots or $TMPDIR/clipslots)
//   - persistent: survives reboots (default: $HOME/.clipslots)
//
// A slot whose name contains an underscore lives under the persistent root;
// every other name lives under the temporary root unless AlwaysPersist is set.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultSlot is the slot used when no name is given. It is the only slot
	// mirrored to the GUI clipboard.
	DefaultSlot = "0"

	temporaryDirName  = "clipslots"
	persistentDirName = ".clipslots"
)

// Layout holds the two storage roots and the always-persist override.
type Layout struct {
	Temporary     string
	Persistent    string
	AlwaysPersist bool
}

// Location is a resolved slot name.
type Location struct {
	Name       string
	Root       string
	Persistent bool
}

// New returns a Layout, filling empty roots with the platform defaults.
func New(temporary, persistent string, alwaysPersist bool) (Layout, error) {
	l := Layout{
		Temporary:     temporary,
		Persistent:    persistent,
		AlwaysPersist: alwaysPersist,
	}
	if l.Temporary == "" {
		l.Temporary = filepath.Join(temporaryBase(), temporaryDirName)
	}
	if l.Persistent == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, fmt.Errorf("persistent root: %w", err)
		}
		l.Persistent = filepath.Join(home, persistentDirName)
	}
	return l, nil
}

// IsPersistent reports whether name denotes a persistent slot by convention.
func IsPersistent(name string) bool {
	return strings.Contains(name, "_")
}

// Resolve maps a slot name to its root directory.
func (l Layout) Resolve(name string) Location {
	persistent := l.AlwaysPersist || IsPersistent(name)
	base := l.Temporary
	if persistent {
		base = l.Persistent
	}
	return Location{
		Name:       name,
		Root:       filepath.Join(base, name),
		Persistent: persistent,
	}
}

// Roots returns the storage roots in listing order, temporary first.
func (l Layout) Roots() []string {
	if l.AlwaysPersist {
		return []string{l.Persistent}
	}
	return []string{l.Temporary, l.Persistent}
}

// ValidName reports whether name can be used as a slot directory name.
func ValidName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty clipboard name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid clipboard name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("clipboard name %q contains a path separator", name)
	}
	return nil
}
