package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.klb.dev/clipslots/internal/mime"
	"go.klb.dev/clipslots/internal/paths"
	"go.klb.dev/clipslots/internal/slot"
)

const statusPreviewLen = 50

// SlotStatus is one line of Status.
type SlotStatus struct {
	Name       string
	Persistent bool
	Raw        bool
	MIME       string
	Items      []string
	Size       int64
	Preview    string
	Note       string
	Locked     bool
}

// Status lists every slot that is in use, temporary slots first, each
// group in name order. It takes no locks.
func (e *Engine) Status(ctx context.Context) ([]SlotStatus, error) {
	var out []SlotStatus
	for _, root := range e.layout.Roots() {
		entries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, ent := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name := ent.Name()
			if !ent.IsDir() || paths.ValidName(name) != nil {
				continue
			}
			// Slots left under the other root by a different
			// always-persist setting are not addressable.
			if e.layout.Resolve(name).Root != filepath.Join(root, name) {
				continue
			}
			s, err := e.lookup(name)
			if err != nil {
				return nil, err
			}
			if s.IsUnused() {
				continue
			}
			st, err := statusOf(s)
			if err != nil {
				return nil, err
			}
			out = append(out, st)
		}
	}
	return out, nil
}

func statusOf(s *slot.Slot) (SlotStatus, error) {
	st := SlotStatus{Name: s.Name(), Persistent: s.Persistent(), Locked: s.IsLocked()}
	note, err := s.Note()
	if err != nil {
		return st, err
	}
	st.Note = note
	if st.Size, err = s.Size(); err != nil {
		return st, err
	}
	if s.HoldsRawData() {
		b, err := s.RawData()
		if err != nil {
			return st, err
		}
		st.Raw = true
		st.MIME = mime.Label(b)
		if mime.IsText(st.MIME) {
			st.Preview = oneLine(string(b), statusPreviewLen)
		}
		return st, nil
	}
	st.Items, err = s.Items()
	return st, err
}

// oneLine flattens whitespace and truncates s to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// SlotInfo is the detail returned by Info.
type SlotInfo struct {
	Name        string
	Path        string
	Persistent  bool
	LockedBy    string
	Raw         bool
	MIME        string
	Files       int
	Directories int
	Size        int64
	Note        string
	IgnoreRules []string
	Originals   []string
}

// Info describes one slot. It takes no lock so that a holder can be
// reported, and creates nothing for a slot that was never used.
func (e *Engine) Info(ctx context.Context, name string) (SlotInfo, error) {
	s, err := e.lookup(name)
	if err != nil {
		return SlotInfo{}, err
	}
	info := SlotInfo{Name: s.Name(), Path: s.Root(), Persistent: s.Persistent()}
	if s.IsLocked() {
		holder, err := s.LockHolder()
		if err == nil {
			info.LockedBy = strings.TrimSpace(holder)
		}
	}
	if info.Note, err = s.Note(); err != nil {
		return info, err
	}
	if info.IgnoreRules, err = s.IgnoreLines(); err != nil {
		return info, err
	}
	if info.Originals, err = s.Originals(); err != nil {
		return info, err
	}
	if info.Size, err = s.Size(); err != nil {
		return info, err
	}

	if s.HoldsRawData() {
		info.Raw = true
		info.MIME, err = mime.DetectFile(s.RawPath())
		return info, err
	}
	items, err := s.ItemPaths()
	if err != nil {
		return info, err
	}
	for _, p := range items {
		fi, err := os.Lstat(p)
		if err != nil {
			return info, err
		}
		if fi.IsDir() {
			info.Directories++
		} else {
			info.Files++
		}
	}
	if len(items) == 1 && info.Files == 1 {
		if m, err := mime.DetectFile(items[0]); err == nil {
			info.MIME = m
		}
	}
	return info, ctx.Err()
}
