package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/ignore"
	"go.klb.dev/clipslots/internal/slot"
)

// Clear empties the slot and forgets any cut.
func (e *Engine) Clear(ctx context.Context, name string) (Report, error) {
	r := e.start(newOp(ActionClear, slotName(name)), conflict.Unknown)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		if err := s.Clear(); err != nil {
			return err
		}
		r.op.Clipboards.Add(1)
		return nil
	})
	return r.finish(), err
}

// Edit hands the slot's raw buffer to edit while the slot is locked, then
// filters the result through the ignore rules. An unused slot starts with an
// empty buffer; a slot holding files cannot be edited.
func (e *Engine) Edit(ctx context.Context, name string, edit func(path string) error) (Report, error) {
	r := e.start(newOp(ActionEdit, slotName(name)), conflict.Unknown)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		if err := s.AppendRawData(nil); err != nil {
			return err
		}
		r.ind.Pause()
		err := edit(s.RawPath())
		r.ind.Resume()
		if err != nil {
			return fmt.Errorf("edit %s: %w", s.Name(), err)
		}
		if err := applyIgnore(s); err != nil {
			return err
		}
		size, err := s.Size()
		if err != nil {
			return err
		}
		r.op.Bytes.Add(size)
		return nil
	})
	return r.finish(), err
}

// Remove deletes what matches patterns: every match inside a raw buffer,
// or items whose whole name matches.
func (e *Engine) Remove(ctx context.Context, name string, patterns []string) (Report, error) {
	rules, err := ignore.Compile(patterns)
	if err != nil {
		return Report{}, err
	}
	r := e.start(newOp(ActionRemove, slotName(name)), conflict.Unknown)
	err = e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		if s.HoldsRawData() {
			b, err := s.RawData()
			if err != nil {
				return err
			}
			out := rules.FilterBuffer(b)
			r.op.Bytes.Add(int64(len(b) - len(out)))
			return s.WriteRawData(out)
		}
		items, err := s.Items()
		if err != nil {
			return err
		}
		for _, item := range items {
			if !rules.MatchName(item) {
				continue
			}
			p := filepath.Join(s.DataDir(), item)
			info, err := os.Lstat(p)
			if err != nil {
				r.op.fail(item, err)
				continue
			}
			if err := os.RemoveAll(p); err != nil {
				r.op.fail(item, err)
				continue
			}
			if info.IsDir() {
				r.op.Directories.Add(1)
			} else {
				r.op.Files.Add(1)
			}
		}
		return nil
	})
	return r.finish(), err
}

// SetNote stores a note on the slot. An empty note removes it.
func (e *Engine) SetNote(ctx context.Context, name, note string) error {
	return e.withSlot(ctx, name, false, func(s *slot.Slot) error {
		return s.SetNote(note)
	})
}

// Note returns the slot's note.
func (e *Engine) Note(ctx context.Context, name string) (string, error) {
	var note string
	err := e.withSlot(ctx, name, false, func(s *slot.Slot) (err error) {
		note, err = s.Note()
		return err
	})
	return note, err
}

// SetIgnore replaces the slot's ignore rules. An empty set clears them.
// Rules take effect on the next write into the slot.
func (e *Engine) SetIgnore(ctx context.Context, name string, patterns []string) error {
	return e.withSlot(ctx, name, false, func(s *slot.Slot) error {
		return s.SetIgnoreRules(patterns)
	})
}

// Ignore returns the slot's ignore rules as written.
func (e *Engine) Ignore(ctx context.Context, name string) ([]string, error) {
	var lines []string
	err := e.withSlot(ctx, name, false, func(s *slot.Slot) (err error) {
		lines, err = s.IgnoreLines()
		return err
	})
	return lines, err
}

// Swap exchanges the contents and cut records of two slots.
func (e *Engine) Swap(ctx context.Context, a, b string) (Report, error) {
	a, b = slotName(a), slotName(b)
	if a == b {
		return Report{}, fmt.Errorf("cannot swap clipboard %s with itself", a)
	}
	r := e.start(newOp(ActionSwap, a, b), conflict.Unknown)
	err := e.withSlots(ctx, []string{a, b}, func(slots map[string]*slot.Slot) error {
		sa, sb := slots[a], slots[b]
		oa, err := sa.Originals()
		if err != nil {
			return err
		}
		ob, err := sb.Originals()
		if err != nil {
			return err
		}

		if err := swapData(sa, sb); err != nil {
			return err
		}
		if err := sa.SetOriginals(ob); err != nil {
			return err
		}
		if err := sb.SetOriginals(oa); err != nil {
			return err
		}
		r.op.Clipboards.Add(2)
		return nil
	})
	return r.finish(), err
}

// swapData exchanges the data directories of a and b through a parking
// directory inside a's root. A failed step puts back everything already
// moved; the parking directory is removed only once a's data is home again.
func swapData(a, b *slot.Slot) error {
	tmp, err := os.MkdirTemp(a.Root(), ".swap-")
	if err != nil {
		return err
	}
	parked := filepath.Join(tmp, "data")
	if err := moveDir(a.DataDir(), parked); err != nil {
		return errors.Join(err, os.RemoveAll(tmp))
	}
	if err := moveDir(b.DataDir(), a.DataDir()); err != nil {
		return restore(err, tmp,
			func() error { return moveDir(parked, a.DataDir()) },
		)
	}
	if err := moveDir(parked, b.DataDir()); err != nil {
		return restore(err, tmp,
			func() error { return moveDir(a.DataDir(), b.DataDir()) },
			func() error { return moveDir(parked, a.DataDir()) },
		)
	}
	return os.RemoveAll(tmp)
}

// restore runs undo steps after cause. If one fails, tmp is kept since it
// may hold the only copy of a slot's data.
func restore(cause error, tmp string, undo ...func() error) error {
	for _, step := range undo {
		if err := step(); err != nil {
			return fmt.Errorf("%w (restore failed, data kept in %s: %v)", cause, tmp, err)
		}
	}
	return errors.Join(cause, os.RemoveAll(tmp))
}

// Load copies src's contents into each of dsts, replacing what they held.
func (e *Engine) Load(ctx context.Context, src string, dsts []string) (Report, error) {
	src = slotName(src)
	names := append([]string{src}, dsts...)
	r := e.start(newOp(ActionLoad, names...), conflict.Unknown)
	err := e.withSlots(ctx, names, func(slots map[string]*slot.Slot) error {
		from := slots[src]
		for _, d := range dsts {
			d = slotName(d)
			if r.cancelled(ctx) {
				break
			}
			if d == src {
				continue
			}
			to := slots[d]
			if err := to.Clear(); err != nil {
				r.op.fail(d, err)
				continue
			}
			n, err := copyContents(from.DataDir(), to.DataDir())
			r.op.Bytes.Add(n)
			if err != nil {
				r.op.fail(d, err)
				continue
			}
			if err := applyIgnore(to); err != nil {
				r.op.fail(d, err)
				continue
			}
			r.op.Clipboards.Add(1)
		}
		return nil
	})
	return r.finish(), err
}
