//go:build darwin || windows || linux

package clip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.design/x/clipboard"
)

// writeFunc stores data on the clipboard through something other than
// x/clipboard.
type writeFunc func(ctx context.Context, mime string, data []byte) error

type desktopBackend struct {
	persist writeFunc
}

// newPlatform initialises the system clipboard. clipboard.Init is called here
// rather than in init() so that commands which never touch the default slot
// don't trigger the warning on headless systems.
func newPlatform() Bridge {
	if err := clipboard.Init(); err != nil {
		slog.Debug("clipboard unavailable, running headless", "err", err)
		return Headless()
	}
	return desktopBackend{persist: selectionWriter()}
}

func (desktopBackend) Name() string      { return "desktop clipboard" }
func (desktopBackend) SupportsCut() bool { return false }

func (desktopBackend) Read(ctx context.Context, mime string) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	switch {
	case mime == MIMEPNG:
		return Content{MIME: MIMEPNG, Data: clipboard.Read(clipboard.FmtImage)}, nil
	case mime == "" || strings.HasPrefix(mime, "text/"):
		if mime == "" {
			if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
				return Content{MIME: MIMEPNG, Data: img}, nil
			}
		}
		return Content{MIME: MIMEText, Data: clipboard.Read(clipboard.FmtText)}, nil
	}
	return Content{}, fmt.Errorf("%w: %s", ErrUnsupportedMIME, mime)
}

// Write places c on the clipboard. File lists travel as newline-separated
// paths in the text format. A persist func is tried first; x/clipboard is
// the fallback.
func (b desktopBackend) Write(ctx context.Context, c Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, mime, data := clipboard.FmtText, MIMEText, c.Data
	switch {
	case c.IsFiles():
		data = []byte(strings.Join(c.Paths, "\n"))
	case c.MIME == MIMEPNG:
		format, mime = clipboard.FmtImage, MIMEPNG
	case strings.HasPrefix(c.MIME, "text/") || (c.MIME == "" && utf8.Valid(c.Data)):
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMIME, c.MIME)
	}

	if b.persist != nil {
		err := b.persist(ctx, mime, data)
		if err == nil {
			return nil
		}
		slog.Debug("clipboard helper failed, content lasts while clipslots runs", "err", err)
	}
	clipboard.Write(format, data)
	return nil
}
