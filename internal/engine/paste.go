package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/mime"
	"go.klb.dev/clipslots/internal/slot"
)

// PreviewLen bounds the raw preview returned by Show.
const PreviewLen = 1024

// Paste copies the slot's items into dest. A raw-data slot is written to
// out instead. After a clean paste of a cut, the cut sources are deleted
// and the slot is cleared.
func (e *Engine) Paste(ctx context.Context, name, dest string, out io.Writer, policy conflict.Policy) (Report, error) {
	r := e.start(newOp(ActionPaste, slotName(name)), policy)
	err := e.withSlot(ctx, name, true, func(s *slot.Slot) error {
		if s.HoldsRawData() {
			return pipeOut(r.op, s, out)
		}
		items, err := s.ItemPaths()
		if err != nil {
			return err
		}
		pasted := make(map[string]bool, len(items))
		for _, src := range items {
			if r.cancelled(ctx) {
				break
			}
			dst, err := filepath.Abs(filepath.Join(dest, filepath.Base(src)))
			if err != nil {
				r.op.fail(src, err)
				continue
			}
			if r.place(src, dst) {
				pasted[dst] = true
			}
		}
		return r.finishCut(s, pasted)
	})
	return r.finish(), err
}

// place copies one slot item to dst, consulting the resolver when dst
// exists. It reports whether the item landed.
func (r *run) place(src, dst string) bool {
	name := filepath.Base(dst)
	if exists(dst) {
		if !r.resolve(name) {
			return false
		}
		if err := os.RemoveAll(dst); err != nil {
			r.op.fail(name, err)
			return false
		}
	}
	n, err := copyTree(src, dst)
	r.op.Bytes.Add(n)
	if err != nil {
		r.op.fail(name, err)
		return false
	}
	if info, err := os.Lstat(src); err == nil && info.IsDir() {
		r.op.Directories.Add(1)
	} else {
		r.op.Files.Add(1)
	}
	return true
}

// finishCut deletes cut sources once everything was pasted. A source that
// is also where its copy landed is kept.
func (r *run) finishCut(s *slot.Slot, pasted map[string]bool) error {
	orig, err := s.Originals()
	if err != nil || len(orig) == 0 {
		return err
	}
	if !r.op.clean() {
		return nil
	}
	for _, o := range orig {
		if pasted[o] {
			continue
		}
		if err := os.RemoveAll(o); err != nil {
			r.op.fail(o, err)
		}
	}
	if !r.op.clean() {
		return nil
	}
	return s.Clear()
}

// PipeOut writes the slot to out: the raw buffer, or the item paths one per
// line.
func (e *Engine) PipeOut(ctx context.Context, name string, out io.Writer) (Report, error) {
	r := e.start(newOp(ActionPipeOut, slotName(name)), conflict.Unknown)
	err := e.withSlot(ctx, name, false, func(s *slot.Slot) error {
		return pipeOut(r.op, s, out)
	})
	return r.finish(), err
}

func pipeOut(op *Op, s *slot.Slot, out io.Writer) error {
	var b []byte
	if s.HoldsRawData() {
		raw, err := s.RawData()
		if err != nil {
			return err
		}
		b = raw
	} else {
		items, err := s.ItemPaths()
		if err != nil {
			return err
		}
		if len(items) > 0 {
			b = []byte(strings.Join(items, "\n") + "\n")
		}
	}
	n, err := out.Write(b)
	op.Bytes.Add(int64(n))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Listing is what Show returns.
type Listing struct {
	Name    string
	Raw     bool
	MIME    string
	Size    int64
	Preview []byte
	Items   []string
	Note    string
}

// Show describes the slot's contents without changing them.
func (e *Engine) Show(ctx context.Context, name string) (Listing, error) {
	var l Listing
	err := e.withSlot(ctx, name, false, func(s *slot.Slot) error {
		l.Name = s.Name()
		note, err := s.Note()
		if err != nil {
			return err
		}
		l.Note = note
		if s.HoldsRawData() {
			b, err := s.RawData()
			if err != nil {
				return err
			}
			l.Raw = true
			l.MIME = mime.Label(b)
			l.Size = int64(len(b))
			l.Preview = b[:min(len(b), PreviewLen)]
			return nil
		}
		l.Items, err = s.Items()
		return err
	})
	return l, err
}
