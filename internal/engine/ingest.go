package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/paths"
	"go.klb.dev/clipslots/internal/slot"
)

// Copy replaces the slot's contents with copies of srcs. An existing item
// named like a source is a collision for the resolver; skipping it keeps
// the stored item.
func (e *Engine) Copy(ctx context.Context, name string, srcs []string, policy conflict.Policy) (Report, error) {
	return e.ingestFiles(ctx, ActionCopy, name, srcs, policy)
}

// Cut is Copy that also records srcs so a later paste removes them.
func (e *Engine) Cut(ctx context.Context, name string, srcs []string, policy conflict.Policy) (Report, error) {
	return e.ingestFiles(ctx, ActionCut, name, srcs, policy)
}

// Add copies srcs into the slot next to what it already holds. A slot
// holding raw data cannot take files.
func (e *Engine) Add(ctx context.Context, name string, srcs []string, policy conflict.Policy) (Report, error) {
	return e.ingestFiles(ctx, ActionAdd, name, srcs, policy)
}

func (e *Engine) ingestFiles(ctx context.Context, a Action, name string, srcs []string, policy conflict.Policy) (Report, error) {
	r := e.start(newOp(a, slotName(name)), policy)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		if a == ActionAdd {
			if s.HoldsRawData() {
				return slot.ErrRawData
			}
		} else if err := replaceFor(s, srcs); err != nil {
			return err
		}

		var cut []string
		for _, src := range srcs {
			if r.cancelled(ctx) {
				break
			}
			abs, err := filepath.Abs(src)
			if err != nil {
				r.op.fail(src, err)
				continue
			}
			if r.ingest(s, abs) && a == ActionCut {
				cut = append(cut, abs)
			}
		}
		if len(cut) > 0 {
			if err := s.SetOriginals(cut); err != nil {
				return err
			}
		}
		return applyIgnore(s)
	})
	return r.finish(), err
}

// replaceFor empties s ahead of a copy of srcs. Items named like an
// incoming source stay so the resolver can decide whether to keep them, as
// do items holding a source.
func replaceFor(s *slot.Slot, srcs []string) error {
	if exists(s.RawPath()) {
		if err := s.ClearData(); err != nil {
			return err
		}
	}
	incoming := make(map[string]bool, len(srcs))
	abs := make([]string, 0, len(srcs))
	for _, src := range srcs {
		incoming[filepath.Base(src)] = true
		if p, err := filepath.Abs(src); err == nil {
			abs = append(abs, p)
		}
	}
	items, err := s.Items()
	if err != nil {
		return err
	}
	for _, item := range items {
		p := filepath.Join(s.DataDir(), item)
		if incoming[item] || slices.ContainsFunc(abs, func(src string) bool { return within(src, p) }) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return s.SetOriginals(nil)
}

// ingest copies one source into s and reports whether it landed.
func (r *run) ingest(s *slot.Slot, src string) bool {
	base := filepath.Base(src)
	if base == slot.RawFileName {
		r.op.fail(src, fmt.Errorf("%s is a reserved name", base))
		return false
	}
	if overlaps(src, s.Root()) {
		r.op.fail(src, fmt.Errorf("cannot copy clipboard %s into itself", s.Name()))
		return false
	}
	info, err := os.Lstat(src)
	if err != nil {
		r.op.fail(src, err)
		return false
	}
	dst := filepath.Join(s.DataDir(), base)
	if exists(dst) {
		if !r.resolve(base) {
			return false
		}
		if err := os.RemoveAll(dst); err != nil {
			r.op.fail(src, err)
			return false
		}
	}
	n, err := copyTree(src, dst)
	r.op.Bytes.Add(n)
	if err != nil {
		r.op.fail(src, err)
		return false
	}
	if info.IsDir() {
		r.op.Directories.Add(1)
	} else {
		r.op.Files.Add(1)
	}
	return true
}

// CopyText replaces the slot's contents with everything read from in.
func (e *Engine) CopyText(ctx context.Context, name string, in io.Reader) (Report, error) {
	r := e.start(newOp(ActionPipeIn, slotName(name)), conflict.Unknown)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		b, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := s.Clear(); err != nil {
			return err
		}
		if err := s.WriteRawData(b); err != nil {
			return err
		}
		r.op.Bytes.Add(int64(len(b)))
		return applyIgnore(s)
	})
	return r.finish(), err
}

// AddText appends everything read from in to the slot's raw buffer. A slot
// holding files cannot take text.
func (e *Engine) AddText(ctx context.Context, name string, in io.Reader) (Report, error) {
	r := e.start(newOp(ActionAdd, slotName(name)), conflict.Unknown)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		b, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := s.AppendRawData(b); err != nil {
			return err
		}
		r.op.Bytes.Add(int64(len(b)))
		return applyIgnore(s)
	})
	return r.finish(), err
}

func applyIgnore(s *slot.Slot) error {
	removed, err := s.ApplyIgnoreRules()
	if len(removed) > 0 {
		slog.Debug("ignore rules removed items", "clipboard", s.Name(), "items", removed)
	}
	return err
}

// overlaps reports whether one of a and b contains the other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func slotName(name string) string {
	if name == "" {
		return paths.DefaultSlot
	}
	return name
}
