package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mholt/archiver/v3"

	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/paths"
	"go.klb.dev/clipslots/internal/slot"
)

const (
	// ExportDirName is created inside the export directory.
	ExportDirName = "Exported_Clipboards"

	archiveExt = ".tar.gz"
)

func newTarGz() *archiver.TarGz {
	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	tgz.MkdirAll = true
	return tgz
}

// Export copies slots into <dir>/Exported_Clipboards/<name>, or with
// archive set writes <name>.tar.gz there. No names exports every slot in
// use.
func (e *Engine) Export(ctx context.Context, names []string, dir string, archive bool) (Report, error) {
	if len(names) == 0 {
		st, err := e.Status(ctx)
		if err != nil {
			return Report{}, err
		}
		for _, s := range st {
			names = append(names, s.Name)
		}
	}
	r := e.start(newOp(ActionExport, names...), conflict.Unknown)
	base := filepath.Join(dir, ExportDirName)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return r.finish(), err
	}

	for _, name := range names {
		if r.cancelled(ctx) {
			break
		}
		err := e.withSlot(ctx, name, false, func(s *slot.Slot) error {
			if archive {
				return exportArchive(r.op, s, filepath.Join(base, s.Name()+archiveExt))
			}
			return exportDir(r.op, s, filepath.Join(base, s.Name()))
		})
		if err != nil {
			r.op.fail(slotName(name), err)
			continue
		}
		r.op.Clipboards.Add(1)
	}
	return r.finish(), nil
}

func exportDir(op *Op, s *slot.Slot, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	n, err := copyContents(s.DataDir(), dest)
	op.Bytes.Add(n)
	return err
}

func exportArchive(op *Op, s *slot.Slot, dest string) error {
	if err := newTarGz().Archive([]string{s.DataDir()}, dest); err != nil {
		return fmt.Errorf("archive %s: %w", s.Name(), err)
	}
	n, err := s.Size()
	op.Bytes.Add(n)
	return err
}

// exported is one slot found in an export directory.
type exported struct {
	name    string
	path    string
	archive bool
}

func scanExports(base string) ([]exported, error) {
	entries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s directory in %s", ExportDirName, filepath.Dir(base))
	}
	if err != nil {
		return nil, err
	}
	var out []exported
	for _, ent := range entries {
		x := exported{name: ent.Name(), path: filepath.Join(base, ent.Name())}
		switch {
		case ent.IsDir():
		case strings.HasSuffix(x.name, archiveExt):
			x.name = strings.TrimSuffix(x.name, archiveExt)
			x.archive = true
		default:
			continue
		}
		if paths.ValidName(x.name) != nil {
			continue
		}
		out = append(out, x)
	}
	return out, nil
}

// Import restores slots written by Export from dir, replacing their
// contents. No names imports everything found.
func (e *Engine) Import(ctx context.Context, dir string, names []string) (Report, error) {
	found, err := scanExports(filepath.Join(dir, ExportDirName))
	if err != nil {
		return Report{}, err
	}
	if len(names) > 0 {
		found = slices.DeleteFunc(found, func(x exported) bool {
			return !slices.Contains(names, x.name)
		})
	}
	r := e.start(newOp(ActionImport), conflict.Unknown)
	for _, x := range found {
		if r.cancelled(ctx) {
			break
		}
		r.op.Slots = append(r.op.Slots, x.name)
		err := e.withSlot(ctx, x.name, true, func(s *slot.Slot) error {
			if err := s.Clear(); err != nil {
				return err
			}
			if x.archive {
				if err := newTarGz().Unarchive(x.path, s.Root()); err != nil {
					return fmt.Errorf("unarchive %s: %w", x.path, err)
				}
			} else if _, err := copyContents(x.path, s.DataDir()); err != nil {
				return err
			}
			if err := applyIgnore(s); err != nil {
				return err
			}
			n, err := s.Size()
			r.op.Bytes.Add(n)
			return err
		})
		if err != nil {
			r.op.fail(x.name, err)
			continue
		}
		r.op.Clipboards.Add(1)
	}
	return r.finish(), nil
}
