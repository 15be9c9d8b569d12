// Package slot manages the on-disk layout of a single named clipboard.
//
//	<root>/<name>/
//	  data/
//	    rawdata.clipboard   raw-data mode only
//	    <items>             file mode only
//	  metadata/
//	    notes
//	    originals           cut provenance, one absolute path per line
//	    ignore              ignore rules, one per line
//	    lock                holder pid
//
// A slot is in raw-data mode when rawdata.clipboard is present and
// non-empty. Entries found next to a raw buffer are orphans: they are never
// listed and the next write removes them.
package slot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"go.klb.dev/clipslots/internal/ignore"
	"go.klb.dev/clipslots/internal/paths"
)

const (
	// RawFileName is the file holding a raw-data slot's buffer.
	RawFileName = "rawdata.clipboard"

	dataDirName     = "data"
	metadataDirName = "metadata"
	notesName       = "notes"
	originalsName   = "originals"
	ignoreName      = "ignore"
	lockName        = "lock"
)

var (
	// ErrRawData is returned when a file operation targets a raw-data slot.
	ErrRawData = errors.New("slot holds raw data")

	// ErrFileData is returned when a raw-data operation targets a slot
	// holding files.
	ErrFileData = errors.New("slot holds files")
)

// Slot is one named clipboard.
type Slot struct {
	loc  paths.Location
	data string
	meta string
}

// Open resolves name against layout and creates the data and metadata
// directories if they are missing.
func Open(layout paths.Layout, name string) (*Slot, error) {
	s, err := Lookup(layout, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup resolves name like Open but creates nothing. A slot that was never
// written reads as unused.
func Lookup(layout paths.Layout, name string) (*Slot, error) {
	if err := paths.ValidName(name); err != nil {
		return nil, err
	}
	loc := layout.Resolve(name)
	return &Slot{
		loc:  loc,
		data: filepath.Join(loc.Root, dataDirName),
		meta: filepath.Join(loc.Root, metadataDirName),
	}, nil
}

func (s *Slot) ensureDirs() error {
	for _, d := range []string{s.data, s.meta} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Name returns the slot name.
func (s *Slot) Name() string { return s.loc.Name }

// Persistent reports whether the slot lives under the persistent root.
func (s *Slot) Persistent() bool { return s.loc.Persistent }

// Root returns the slot's directory.
func (s *Slot) Root() string { return s.loc.Root }

// DataDir returns the data directory.
func (s *Slot) DataDir() string { return s.data }

// RawPath returns the raw-data file path.
func (s *Slot) RawPath() string { return filepath.Join(s.data, RawFileName) }

// LockPath returns the lock marker path.
func (s *Slot) LockPath() string { return filepath.Join(s.meta, lockName) }

func (s *Slot) notesPath() string     { return filepath.Join(s.meta, notesName) }
func (s *Slot) originalsPath() string { return filepath.Join(s.meta, originalsName) }
func (s *Slot) ignorePath() string    { return filepath.Join(s.meta, ignoreName) }

// IsDefault reports whether this is the GUI-mirrored default slot.
func (s *Slot) IsDefault() bool { return s.loc.Name == paths.DefaultSlot }

// HoldsData reports whether data/ exists and is non-empty, and a present
// raw-data file is itself non-empty.
func (s *Slot) HoldsData() bool {
	if isEmptyDir(s.data) {
		return false
	}
	if exists(s.RawPath()) && !nonEmptyFile(s.RawPath()) {
		return false
	}
	return true
}

// HoldsRawData reports whether the raw-data file exists and is non-empty.
func (s *Slot) HoldsRawData() bool { return nonEmptyFile(s.RawPath()) }

// HoldsIgnoreRules reports whether an ignore file with content exists.
func (s *Slot) HoldsIgnoreRules() bool { return nonEmptyFile(s.ignorePath()) }

// IsUnused reports whether the slot holds no data, no note and no cut
// provenance.
func (s *Slot) IsUnused() bool {
	if s.HoldsData() {
		return false
	}
	if nonEmptyFile(s.notesPath()) || nonEmptyFile(s.originalsPath()) {
		return false
	}
	return true
}

// IsLocked reports whether a lock marker is present, stale or not.
func (s *Slot) IsLocked() bool { return exists(s.LockPath()) }

// LockHolder returns the raw content of the lock marker.
func (s *Slot) LockHolder() (string, error) {
	b, err := os.ReadFile(s.LockPath())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Items returns the sorted entry names of a file-mode slot. A raw-data
// slot has no items.
func (s *Slot) Items() ([]string, error) {
	if s.HoldsRawData() {
		return nil, nil
	}
	entries, err := os.ReadDir(s.data)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.data, err)
	}
	var names []string
	for _, e := range entries {
		if e.Name() == RawFileName {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ItemPaths returns the absolute paths of Items.
func (s *Slot) ItemPaths() ([]string, error) {
	names, err := s.Items()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(s.data, n)
	}
	return out, nil
}

// Orphans returns entries found alongside a raw buffer.
func (s *Slot) Orphans() []string {
	if !s.HoldsRawData() {
		return nil
	}
	entries, err := os.ReadDir(s.data)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Name() != RawFileName {
			names = append(names, e.Name())
		}
	}
	return names
}

// RawData returns the raw buffer. A slot without a raw-data file yields an
// empty buffer and no error.
func (s *Slot) RawData() ([]byte, error) {
	b, err := os.ReadFile(s.RawPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

// WriteRawData replaces the slot's data with b.
func (s *Slot) WriteRawData(b []byte) error {
	if err := s.ClearData(); err != nil {
		return err
	}
	return writeFile(s.RawPath(), b)
}

// AppendRawData appends b to the raw buffer. It fails with ErrFileData when
// the slot holds files.
func (s *Slot) AppendRawData(b []byte) error {
	if s.HoldsData() && !s.HoldsRawData() {
		return ErrFileData
	}
	f, err := os.OpenFile(s.RawPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ClearData empties data/, leaving the directory in place.
func (s *Slot) ClearData() error {
	if err := os.RemoveAll(s.data); err != nil {
		return fmt.Errorf("clear %s: %w", s.data, err)
	}
	return s.ensureDirs()
}

// Clear empties data/ and forgets cut provenance. Notes and ignore rules
// survive.
func (s *Slot) Clear() error {
	if err := s.ClearData(); err != nil {
		return err
	}
	return s.SetOriginals(nil)
}

// Note returns the slot's note.
func (s *Slot) Note() (string, error) {
	b, err := os.ReadFile(s.notesPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return string(b), err
}

// SetNote stores note. An empty note removes the file.
func (s *Slot) SetNote(note string) error {
	if note == "" {
		return removeIfExists(s.notesPath())
	}
	return writeFile(s.notesPath(), []byte(note))
}

// Originals returns the recorded cut sources.
func (s *Slot) Originals() ([]string, error) { return readLines(s.originalsPath()) }

// SetOriginals records cut sources. An empty list removes the record.
func (s *Slot) SetOriginals(list []string) error {
	if len(list) == 0 {
		return removeIfExists(s.originalsPath())
	}
	return writeLines(s.originalsPath(), list)
}

// IgnoreLines returns the stored ignore patterns as written.
func (s *Slot) IgnoreLines() ([]string, error) { return readLines(s.ignorePath()) }

// IgnoreRules compiles the stored ignore patterns. Patterns that fail to
// compile are logged and skipped.
func (s *Slot) IgnoreRules() (ignore.Rules, error) {
	lines, err := s.IgnoreLines()
	if err != nil {
		return nil, err
	}
	rules, err := ignore.Compile(lines)
	if err != nil {
		slog.Warn("skipping invalid ignore rules", "clipboard", s.Name(), "err", err)
	}
	return rules, nil
}

// SetIgnoreRules validates and stores patterns. An empty set clears the
// rules.
func (s *Slot) SetIgnoreRules(patterns []string) error {
	rules, err := ignore.Compile(patterns)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return removeIfExists(s.ignorePath())
	}
	return writeLines(s.ignorePath(), rules.Strings())
}

// ApplyIgnoreRules runs the ignore rules over the slot's data and returns
// the names of removed entries. A raw buffer filtered down to nothing stays
// on disk with zero length.
func (s *Slot) ApplyIgnoreRules() ([]string, error) {
	if !s.HoldsIgnoreRules() {
		return nil, nil
	}
	rules, err := s.IgnoreRules()
	if err != nil {
		return nil, err
	}
	if s.HoldsRawData() {
		b, err := s.RawData()
		if err != nil {
			return nil, err
		}
		return nil, writeFile(s.RawPath(), rules.FilterBuffer(b))
	}
	return rules.FilterDir(s.data, RawFileName)
}

// Size returns the total size in bytes of everything under data/.
func (s *Slot) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.data, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.data && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
