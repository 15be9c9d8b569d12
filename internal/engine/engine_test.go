package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipslots/internal/clip"
	"go.klb.dev/clipslots/internal/clip/cliptest"
	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/paths"
	"go.klb.dev/clipslots/internal/slot"
)

type fixture struct {
	e      *Engine
	layout paths.Layout
	gui    *cliptest.Bridge
	work   string
}

func newFixture(t *testing.T, prompter conflict.Prompter) *fixture {
	t.Helper()
	dir := t.TempDir()
	l, err := paths.New(filepath.Join(dir, "tmp"), filepath.Join(dir, "persist"), false)
	require.NoError(t, err)
	gui := cliptest.New(false)
	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	return &fixture{
		e: New(Options{
			Layout:     l,
			Bridge:     gui,
			Prompter:   prompter,
			Unattended: prompter == nil,
		}),
		layout: l,
		gui:    gui,
		work:   work,
	}
}

func (f *fixture) file(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.work, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (f *fixture) slot(t *testing.T, name string) *slot.Slot {
	t.Helper()
	s, err := slot.Open(f.layout, name)
	require.NoError(t, err)
	return s
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// answers replies from a fixed list and counts prompts.
type answers struct {
	list  []conflict.Policy
	asked int
}

func (a *answers) Ask(string) (conflict.Policy, error) {
	a.asked++
	if len(a.list) == 0 {
		return conflict.Unknown, conflict.ErrAborted
	}
	p := a.list[0]
	a.list = a.list[1:]
	return p, nil
}

var ctx = context.Background()

// ============================================================================
// Copy / Cut / Add
// ============================================================================

func TestCopyFilesAndDirectories(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "a.txt", "alpha")
	f.file(t, "dir/b.txt", "bravo")

	rep, err := f.e.Copy(ctx, "1", []string{a, filepath.Join(f.work, "dir")}, conflict.Unknown)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	assert.EqualValues(t, 1, rep.Files)
	assert.EqualValues(t, 1, rep.Directories)
	assert.EqualValues(t, 10, rep.Bytes)
	assert.Contains(t, rep.Summary(), "Copied 1 file, 1 directory")

	s := f.slot(t, "1")
	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "dir"}, items)
	assert.Equal(t, "bravo", readFile(t, filepath.Join(s.DataDir(), "dir", "b.txt")))
	assert.False(t, s.IsLocked(), "lock released")
}

func TestCopyReplacesContents(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "old", "o")}, conflict.Unknown)
	require.NoError(t, err)
	_, err = f.e.Copy(ctx, "1", []string{f.file(t, "new", "n")}, conflict.Unknown)
	require.NoError(t, err)

	items, err := f.slot(t, "1").Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, items)
}

func TestCopyMissingSourceIsPartialFailure(t *testing.T) {
	f := newFixture(t, nil)
	rep, err := f.e.Copy(ctx, "1", []string{f.file(t, "ok", "x"), filepath.Join(f.work, "missing")}, conflict.Unknown)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Contains(t, rep.Failures[0].Item, "missing")
	assert.EqualValues(t, 1, rep.Files)
	assert.Error(t, rep.Err())
}

func TestCopyDuplicateBaseNamesUseResolver(t *testing.T) {
	p := &answers{list: []conflict.Policy{conflict.SkipOnce}}
	f := newFixture(t, p)
	first := f.file(t, "x/same", "first")
	second := f.file(t, "y/same", "second")

	rep, err := f.e.Copy(ctx, "1", []string{first, second}, conflict.Unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, p.asked)
	assert.Equal(t, []string{"same"}, rep.Skipped)
	assert.Equal(t, "first", readFile(t, filepath.Join(f.slot(t, "1").DataDir(), "same")))
}

func TestAddSkipAllLeavesItemUnchanged(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "A", "original")

	_, err := f.e.Copy(ctx, "5", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	other := f.file(t, "other/A", "different")
	rep, err := f.e.Add(ctx, "5", []string{other}, conflict.SkipAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, rep.Skipped)
	assert.Zero(t, rep.Files)
	assert.Equal(t, "original", readFile(t, filepath.Join(f.slot(t, "5").DataDir(), "A")))
}

func TestCopySkipAllKeepsStoredItem(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "5", []string{f.file(t, "one/A", "first")}, conflict.Unknown)
	require.NoError(t, err)

	rep, err := f.e.Copy(ctx, "5", []string{f.file(t, "two/A", "second")}, conflict.SkipAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, rep.Skipped)
	assert.Zero(t, rep.Files)
	assert.Equal(t, "first", readFile(t, filepath.Join(f.slot(t, "5").DataDir(), "A")))
}

func TestCopyCollisionPrompts(t *testing.T) {
	p := &answers{list: []conflict.Policy{conflict.ReplaceOnce}}
	f := newFixture(t, p)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "one/A", "first"), f.file(t, "one/B", "b")}, conflict.Unknown)
	require.NoError(t, err)
	require.Zero(t, p.asked)

	rep, err := f.e.Copy(ctx, "1", []string{f.file(t, "two/A", "second")}, conflict.Unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, p.asked)
	assert.EqualValues(t, 1, rep.Files)

	s := f.slot(t, "1")
	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, items, "items not being copied again are dropped")
	assert.Equal(t, "second", readFile(t, filepath.Join(s.DataDir(), "A")))
}

func TestCopyOverRawData(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("text"))
	require.NoError(t, err)
	_, err = f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)

	s := f.slot(t, "1")
	assert.False(t, s.HoldsRawData())
	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)
}

func TestCopySlotIntoItselfFails(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)
	s := f.slot(t, "1")

	for _, src := range []string{s.Root(), f.layout.Temporary, filepath.Join(s.DataDir(), "a")} {
		rep, err := f.e.Add(ctx, "1", []string{src}, conflict.Unknown)
		require.NoError(t, err, src)
		require.Len(t, rep.Failures, 1, src)
		assert.Contains(t, rep.Failures[0].Err.Error(), "into itself")
	}

	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)
	assert.Equal(t, "x", readFile(t, filepath.Join(s.DataDir(), "a")))

	_, err = f.e.Copy(ctx, "2", []string{filepath.Dir(f.file(t, "d/inner", "y"))}, conflict.Unknown)
	require.NoError(t, err)
	inner := filepath.Join(f.slot(t, "2").DataDir(), "d", "inner")
	rep, err := f.e.Copy(ctx, "2", []string{inner}, conflict.Unknown)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "y", readFile(t, inner), "the item holding the source survives")
}

func TestAddKeepsExistingItems(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "1")}, conflict.Unknown)
	require.NoError(t, err)
	_, err = f.e.Add(ctx, "1", []string{f.file(t, "b", "2")}, conflict.Unknown)
	require.NoError(t, err)

	items, err := f.slot(t, "1").Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestAddFilesToRawSlotFails(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("text"))
	require.NoError(t, err)

	_, err = f.e.Add(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	assert.ErrorIs(t, err, slot.ErrRawData)
	assert.False(t, f.slot(t, "1").IsLocked())
}

func TestCutRecordsOriginals(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "a", "x")
	_, err := f.e.Cut(ctx, "1", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	orig, err := f.slot(t, "1").Originals()
	require.NoError(t, err)
	assert.Equal(t, []string{a}, orig)
	assert.FileExists(t, a, "cut keeps the source until paste")
}

func TestReservedNameRejected(t *testing.T) {
	f := newFixture(t, nil)
	rep, err := f.e.Copy(ctx, "1", []string{f.file(t, slot.RawFileName, "x")}, conflict.Unknown)
	require.NoError(t, err)
	assert.Len(t, rep.Failures, 1)
	assert.False(t, f.slot(t, "1").HoldsData())
}

// ============================================================================
// Text
// ============================================================================

func TestCopyTextAndPipeOut(t *testing.T) {
	f := newFixture(t, nil)
	rep, err := f.e.CopyText(ctx, "2", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, rep.Bytes)

	_, err = f.e.AddText(ctx, "2", strings.NewReader(" world"))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = f.e.PipeOut(ctx, "2", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.String())
}

func TestAddTextToFileSlotFails(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)
	_, err = f.e.AddText(ctx, "1", strings.NewReader("x"))
	assert.ErrorIs(t, err, slot.ErrFileData)
}

func TestEdit(t *testing.T) {
	t.Run("EditsRawBuffer", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.e.CopyText(ctx, "0", strings.NewReader("draft"))
		require.NoError(t, err)
		require.NoError(t, f.e.SetIgnore(ctx, "0", []string{"secret"}))

		rep, err := f.e.Edit(ctx, "0", func(path string) error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(path, append(b, " with a secret"...), 0o644)
		})
		require.NoError(t, err)
		assert.Equal(t, ActionEdit, rep.Action)
		assert.EqualValues(t, len("draft with a "), rep.Bytes)

		b, err := f.slot(t, "0").RawData()
		require.NoError(t, err)
		assert.Equal(t, "draft with a ", string(b))
		assert.Equal(t, "draft with a ", string(f.gui.Content().Data))
	})

	t.Run("UnusedSlotStartsEmpty", func(t *testing.T) {
		f := newFixture(t, nil)
		var before []byte
		_, err := f.e.Edit(ctx, "3", func(path string) error {
			var err error
			if before, err = os.ReadFile(path); err != nil {
				return err
			}
			return os.WriteFile(path, []byte("fresh"), 0o644)
		})
		require.NoError(t, err)
		assert.Empty(t, before)
		b, err := f.slot(t, "3").RawData()
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(b))
	})

	t.Run("FileSlotFails", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
		require.NoError(t, err)
		called := false
		_, err = f.e.Edit(ctx, "1", func(string) error { called = true; return nil })
		assert.ErrorIs(t, err, slot.ErrFileData)
		assert.False(t, called)
	})

	t.Run("EditorFailure", func(t *testing.T) {
		f := newFixture(t, nil)
		boom := errors.New("editor exited 1")
		_, err := f.e.Edit(ctx, "1", func(string) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestIgnoreRulesApplyOnIngest(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.e.SetIgnore(ctx, "1", []string{`password=\S+`}))

	_, err := f.e.CopyText(ctx, "1", strings.NewReader("user=bob password=hunter2"))
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = f.e.PipeOut(ctx, "1", &out)
	require.NoError(t, err)
	assert.Equal(t, "user=bob ", out.String())

	require.NoError(t, f.e.SetIgnore(ctx, "3", []string{`.*\.log`}))
	_, err = f.e.Copy(ctx, "3", []string{f.file(t, "keep.txt", "k"), f.file(t, "drop.log", "d")}, conflict.Unknown)
	require.NoError(t, err)
	items, err := f.slot(t, "3").Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, items)
}

func TestPipeOutFileSlotListsPaths(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = f.e.PipeOut(ctx, "1", &out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.slot(t, "1").DataDir(), "a")+"\n", out.String())
}

// ============================================================================
// Paste
// ============================================================================

func TestPasteFiles(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "src/a", "x"), f.file(t, "src/b", "y")}, conflict.Unknown)
	require.NoError(t, err)

	dest := filepath.Join(f.work, "dest")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	rep, err := f.e.Paste(ctx, "1", dest, nil, conflict.Unknown)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.Files)
	assert.Equal(t, "x", readFile(t, filepath.Join(dest, "a")))
	assert.True(t, f.slot(t, "1").HoldsData(), "copy paste keeps the slot")
}

func TestPasteReplaceAllPromptsOnce(t *testing.T) {
	p := &answers{list: []conflict.Policy{conflict.ReplaceAll}}
	f := newFixture(t, p)
	srcs := []string{f.file(t, "src/a", "new"), f.file(t, "src/b", "new"), f.file(t, "src/c", "new")}
	_, err := f.e.Copy(ctx, "1", srcs, conflict.Unknown)
	require.NoError(t, err)

	dest := filepath.Join(f.work, "dest")
	for _, n := range []string{"a", "b", "c"} {
		f.file(t, filepath.Join("dest", n), "old")
	}
	rep, err := f.e.Paste(ctx, "1", dest, nil, conflict.Unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, p.asked)
	assert.EqualValues(t, 3, rep.Files)
	for _, n := range []string{"a", "b", "c"} {
		assert.Equal(t, "new", readFile(t, filepath.Join(dest, n)))
	}
}

func TestPasteAbortIsCancelled(t *testing.T) {
	p := &answers{}
	f := newFixture(t, p)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "src/a", "new"), f.file(t, "src/b", "new")}, conflict.Unknown)
	require.NoError(t, err)

	dest := filepath.Join(f.work, "dest")
	f.file(t, "dest/a", "old")
	rep, err := f.e.Paste(ctx, "1", dest, nil, conflict.Unknown)
	require.NoError(t, err)
	assert.True(t, rep.Cancelled)
	assert.ErrorIs(t, rep.Err(), ErrCancelled)
	assert.Equal(t, "old", readFile(t, filepath.Join(dest, "a")))
	assert.NoFileExists(t, filepath.Join(dest, "b"), "no items after the abort")
	assert.False(t, f.slot(t, "1").IsLocked())
}

func TestPasteCutRemovesSources(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "src/a", "x")
	_, err := f.e.Cut(ctx, "1", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	dest := filepath.Join(f.work, "dest")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	_, err = f.e.Paste(ctx, "1", dest, nil, conflict.Unknown)
	require.NoError(t, err)

	assert.NoFileExists(t, a)
	assert.FileExists(t, filepath.Join(dest, "a"))
	s := f.slot(t, "1")
	assert.False(t, s.HoldsData())
	orig, err := s.Originals()
	require.NoError(t, err)
	assert.Empty(t, orig)
}

func TestPasteCutWithSkipKeepsSources(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "src/a", "x")
	_, err := f.e.Cut(ctx, "1", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	dest := filepath.Join(f.work, "dest")
	f.file(t, "dest/a", "old")
	_, err = f.e.Paste(ctx, "1", dest, nil, conflict.SkipAll)
	require.NoError(t, err)

	assert.FileExists(t, a)
	assert.True(t, f.slot(t, "1").HoldsData())
}

func TestPasteCutIntoSourceDirKeepsFile(t *testing.T) {
	f := newFixture(t, nil)
	a := f.file(t, "a", "x")
	_, err := f.e.Cut(ctx, "1", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	_, err = f.e.Paste(ctx, "1", f.work, nil, conflict.ReplaceAll)
	require.NoError(t, err)
	assert.Equal(t, "x", readFile(t, a))
}

func TestPasteRawWritesOut(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("raw"))
	require.NoError(t, err)

	var out bytes.Buffer
	rep, err := f.e.Paste(ctx, "1", f.work, &out, conflict.Unknown)
	require.NoError(t, err)
	assert.Equal(t, "raw", out.String())
	assert.EqualValues(t, 3, rep.Bytes)
}

// ============================================================================
// Editing
// ============================================================================

func TestClear(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, f.e.SetNote(ctx, "1", "note"))

	rep, err := f.e.Clear(ctx, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.Clipboards)
	s := f.slot(t, "1")
	assert.False(t, s.HoldsData())
	assert.False(t, s.IsUnused(), "note survives")
}

func TestRemove(t *testing.T) {
	t.Run("Raw", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.e.CopyText(ctx, "1", strings.NewReader("a1b2c3"))
		require.NoError(t, err)
		rep, err := f.e.Remove(ctx, "1", []string{`\d`})
		require.NoError(t, err)
		assert.EqualValues(t, 3, rep.Bytes)

		b, err := f.slot(t, "1").RawData()
		require.NoError(t, err)
		assert.Equal(t, "abc", string(b))
	})

	t.Run("Files", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a.tmp", ""), f.file(t, "b.txt", "")}, conflict.Unknown)
		require.NoError(t, err)
		rep, err := f.e.Remove(ctx, "1", []string{`.*\.tmp`})
		require.NoError(t, err)
		assert.EqualValues(t, 1, rep.Files)

		items, err := f.slot(t, "1").Items()
		require.NoError(t, err)
		assert.Equal(t, []string{"b.txt"}, items)
	})

	t.Run("InvalidPattern", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.e.Remove(ctx, "1", []string{"("})
		assert.Error(t, err)
	})
}

func TestNoteAndIgnore(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.e.SetNote(ctx, "my_notes", "hello"))
	note, err := f.e.Note(ctx, "my_notes")
	require.NoError(t, err)
	assert.Equal(t, "hello", note)
	assert.True(t, f.slot(t, "my_notes").Persistent())

	require.NoError(t, f.e.SetIgnore(ctx, "1", []string{"a", "b"}))
	rules, err := f.e.Ignore(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rules)

	require.NoError(t, f.e.SetIgnore(ctx, "1", nil))
	rules, err = f.e.Ignore(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, rules)

	assert.Error(t, f.e.SetIgnore(ctx, "1", []string{"(bad"}))
}

func TestSwap(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("one"))
	require.NoError(t, err)
	a := f.file(t, "a", "x")
	_, err = f.e.Cut(ctx, "keep_2", []string{a}, conflict.Unknown)
	require.NoError(t, err)

	rep, err := f.e.Swap(ctx, "1", "keep_2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.Clipboards)

	s1, s2 := f.slot(t, "1"), f.slot(t, "keep_2")
	items, err := s1.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)
	orig, err := s1.Originals()
	require.NoError(t, err)
	assert.Equal(t, []string{a}, orig)

	b, err := s2.RawData()
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))
	orig, err = s2.Originals()
	require.NoError(t, err)
	assert.Empty(t, orig)

	_, err = f.e.Swap(ctx, "1", "1")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "1", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)
	_, err = f.e.CopyText(ctx, "3", strings.NewReader("replaced"))
	require.NoError(t, err)

	rep, err := f.e.Load(ctx, "1", []string{"2", "3", "1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.Clipboards)

	for _, n := range []string{"2", "3"} {
		items, err := f.slot(t, n).Items()
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, items, n)
	}
}

// ============================================================================
// Status / Info
// ============================================================================

func TestStatus(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "2", strings.NewReader("hello\nworld"))
	require.NoError(t, err)
	_, err = f.e.Copy(ctx, "my_files", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)
	require.NoError(t, f.e.SetNote(ctx, "1", "only a note"))
	f.slot(t, "9")

	st, err := f.e.Status(ctx)
	require.NoError(t, err)
	require.Len(t, st, 3)

	assert.Equal(t, "1", st[0].Name)
	assert.Equal(t, "only a note", st[0].Note)

	assert.Equal(t, "2", st[1].Name)
	assert.True(t, st[1].Raw)
	assert.Equal(t, "hello world", st[1].Preview)

	assert.Equal(t, "my_files", st[2].Name)
	assert.True(t, st[2].Persistent)
	assert.Equal(t, []string{"a"}, st[2].Items)
}

func TestInfo(t *testing.T) {
	f := newFixture(t, nil)
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader(png))
	require.NoError(t, err)

	info, err := f.e.Info(ctx, "1")
	require.NoError(t, err)
	assert.True(t, info.Raw)
	assert.Equal(t, "image/png", info.MIME)
	assert.EqualValues(t, len(png), info.Size)
	assert.Empty(t, info.LockedBy)

	_, err = f.e.Copy(ctx, "2", []string{f.file(t, "d/x", "1"), f.file(t, "y", "2")}, conflict.Unknown)
	require.NoError(t, err)
	info, err = f.e.Info(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Files)
	assert.Equal(t, 1, info.Directories)
}

func TestInspectionCreatesNothing(t *testing.T) {
	f := newFixture(t, nil)
	stray := filepath.Join(f.layout.Temporary, "7")
	require.NoError(t, os.MkdirAll(stray, 0o755))

	st, err := f.e.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, st)
	entries, err := os.ReadDir(stray)
	require.NoError(t, err)
	assert.Empty(t, entries)

	info, err := f.e.Info(ctx, "never_used")
	require.NoError(t, err)
	assert.Equal(t, "never_used", info.Name)
	assert.Zero(t, info.Size)
	assert.NoDirExists(t, info.Path)
}

// ============================================================================
// Export / Import
// ============================================================================

func TestExportImport(t *testing.T) {
	for _, archive := range []bool{false, true} {
		name := "Dir"
		if archive {
			name = "Archive"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.e.Copy(ctx, "1", []string{f.file(t, "d/nested", "n"), f.file(t, "top", "t")}, conflict.Unknown)
			require.NoError(t, err)
			_, err = f.e.CopyText(ctx, "2", strings.NewReader("text"))
			require.NoError(t, err)

			out := filepath.Join(f.work, "out")
			rep, err := f.e.Export(ctx, nil, out, archive)
			require.NoError(t, err)
			require.NoError(t, rep.Err())
			assert.EqualValues(t, 2, rep.Clipboards)
			if archive {
				assert.FileExists(t, filepath.Join(out, ExportDirName, "1.tar.gz"))
			} else {
				assert.FileExists(t, filepath.Join(out, ExportDirName, "1", "d", "nested"))
			}

			_, err = f.e.Clear(ctx, "1")
			require.NoError(t, err)
			_, err = f.e.Clear(ctx, "2")
			require.NoError(t, err)

			rep, err = f.e.Import(ctx, out, nil)
			require.NoError(t, err)
			require.NoError(t, rep.Err())
			assert.EqualValues(t, 2, rep.Clipboards)

			s1 := f.slot(t, "1")
			assert.Equal(t, "n", readFile(t, filepath.Join(s1.DataDir(), "d", "nested")))
			b, err := f.slot(t, "2").RawData()
			require.NoError(t, err)
			assert.Equal(t, "text", string(b))
		})
	}
}

func TestImportFiltersNames(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "1", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = f.e.CopyText(ctx, "2", strings.NewReader("two"))
	require.NoError(t, err)
	out := filepath.Join(f.work, "out")
	_, err = f.e.Export(ctx, []string{"1", "2"}, out, false)
	require.NoError(t, err)

	_, err = f.e.CopyText(ctx, "2", strings.NewReader("kept"))
	require.NoError(t, err)
	rep, err := f.e.Import(ctx, out, []string{"1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.Clipboards)

	b, err := f.slot(t, "2").RawData()
	require.NoError(t, err)
	assert.Equal(t, "kept", string(b))
}

func TestImportMissingDir(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Import(ctx, f.work, nil)
	assert.Error(t, err)
}

// ============================================================================
// Desktop clipboard
// ============================================================================

func TestDefaultSlotMirrorsToGUI(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "", strings.NewReader("to gui"))
	require.NoError(t, err)

	c := f.gui.Content()
	assert.Equal(t, "to gui", string(c.Data))
	assert.Equal(t, clip.MIMEText, c.MIME)
}

func TestOtherSlotsDoNotTouchGUI(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "4", strings.NewReader("private"))
	require.NoError(t, err)
	assert.Empty(t, f.gui.Writes)
	assert.Zero(t, f.gui.Reads)
}

func TestExternalGUIChangeIsImported(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "0", strings.NewReader("ours"))
	require.NoError(t, err)

	f.gui.Set(clip.Content{MIME: clip.MIMEText, Data: []byte("theirs")})
	l, err := f.e.Show(ctx, "0")
	require.NoError(t, err)
	assert.Equal(t, "theirs", string(l.Preview))
}

func TestGUIImportAppliesIgnoreRules(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.e.SetIgnore(ctx, "0", []string{"secret"}))

	f.gui.Set(clip.Content{MIME: clip.MIMEText, Data: []byte("my secret text")})
	l, err := f.e.Show(ctx, "0")
	require.NoError(t, err)
	assert.Equal(t, "my  text", string(l.Preview))

	b, err := f.slot(t, "0").RawData()
	require.NoError(t, err)
	assert.Equal(t, "my  text", string(b))
}

func TestFileSlotNotReimportedFromGUIText(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.Copy(ctx, "0", []string{f.file(t, "a", "x")}, conflict.Unknown)
	require.NoError(t, err)
	require.NotEmpty(t, f.gui.Writes)

	// A text-only desktop clipboard hands the paths back as text.
	paths := f.gui.Content().Paths
	f.gui.Set(clip.Content{MIME: clip.MIMEText, Data: []byte(strings.Join(paths, "\n"))})

	l, err := f.e.Show(ctx, "0")
	require.NoError(t, err)
	assert.False(t, l.Raw)
	assert.Equal(t, []string{"a"}, l.Items)
}

func TestClearEmptiesGUI(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.e.CopyText(ctx, "0", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = f.e.Clear(ctx, "0")
	require.NoError(t, err)

	assert.True(t, f.gui.Content().IsEmpty())
	l, err := f.e.Show(ctx, "0")
	require.NoError(t, err)
	assert.False(t, l.Raw)
}

func TestGUIFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.gui.ReadErr = assert.AnError
	f.gui.WriteErr = assert.AnError

	_, err := f.e.CopyText(ctx, "0", strings.NewReader("x"))
	require.NoError(t, err)
	b, err := f.slot(t, "0").RawData()
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}
