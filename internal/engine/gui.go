package engine

import (
	"context"
	"log/slog"
	"path/filepath"

	"go.klb.dev/clipslots/internal/clip"
	"go.klb.dev/clipslots/internal/mime"
	"go.klb.dev/clipslots/internal/slot"
)

// guiView is how a slot looks on the desktop clipboard. Text and PNG travel
// as themselves; other raw data is offered as the path of its file, and a
// file-mode slot as its item paths.
func (e *Engine) guiView(s *slot.Slot) (clip.Content, error) {
	if s.HoldsRawData() {
		b, err := s.RawData()
		if err != nil {
			return clip.Content{}, err
		}
		label := mime.Label(b)
		if mime.IsText(label) || label == clip.MIMEPNG {
			return clip.Content{MIME: label, Data: b}, nil
		}
		return clip.Content{Paths: []string{s.RawPath()}}, nil
	}
	if !s.HoldsData() {
		return clip.Content{}, nil
	}
	items, err := s.ItemPaths()
	if err != nil {
		return clip.Content{}, err
	}
	orig, err := s.Originals()
	if err != nil {
		return clip.Content{}, err
	}
	return clip.Content{Paths: items, Cut: len(orig) > 0 && e.bridge.SupportsCut()}, nil
}

// pull imports the desktop clipboard into s when it holds something the
// slot does not. Failures are notices only.
func (e *Engine) pull(ctx context.Context, s *slot.Slot) {
	c, err := e.bridge.Read(ctx, "")
	if err != nil {
		slog.Warn("reading desktop clipboard", "bridge", e.bridge.Name(), "err", err)
		return
	}
	if c.IsEmpty() {
		return
	}
	cur, err := e.guiView(s)
	if err != nil {
		slog.Warn("reading clipboard", "clipboard", s.Name(), "err", err)
		return
	}
	if c.Equal(cur) {
		return
	}

	clip.LogContent(ctx, "importing desktop clipboard", e.bridge, s.Name(), c)
	if err := importContent(s, c); err != nil {
		slog.Warn("importing desktop clipboard", "clipboard", s.Name(), "err", err)
	}
}

// importContent replaces the contents of s with c. The slot's ignore rules
// apply as they do for any other ingest.
func importContent(s *slot.Slot, c clip.Content) error {
	if err := s.Clear(); err != nil {
		return err
	}
	if !c.IsFiles() {
		if err := s.WriteRawData(c.Data); err != nil {
			return err
		}
		return applyIgnore(s)
	}
	for _, p := range c.Paths {
		if _, err := copyTree(p, filepath.Join(s.DataDir(), filepath.Base(p))); err != nil {
			return err
		}
	}
	if c.Cut {
		if err := s.SetOriginals(c.Paths); err != nil {
			return err
		}
	}
	return applyIgnore(s)
}

// push mirrors s onto the desktop clipboard. An emptied slot clears it.
func (e *Engine) push(ctx context.Context, s *slot.Slot) {
	c, err := e.guiView(s)
	if err != nil {
		slog.Warn("reading clipboard", "clipboard", s.Name(), "err", err)
		return
	}
	if c.IsEmpty() {
		c = clip.Content{MIME: clip.MIMEText}
	}
	clip.LogContent(ctx, "writing desktop clipboard", e.bridge, s.Name(), c)
	if err := e.bridge.Write(ctx, c); err != nil {
		slog.Warn("writing desktop clipboard", "bridge", e.bridge.Name(), "err", err)
	}
}
