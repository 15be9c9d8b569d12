package clip

import (
	"context"
	"log/slog"
	"strings"
)

const previewLen = 120

// LogContent logs a bridge transfer at DEBUG: the event, bridge, slot and
// type, then a text preview or the byte size for binary content.
func LogContent(ctx context.Context, event string, b Bridge, slot string, c Content) {
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []any{"bridge", b.Name(), "clipboard", slot}
	switch {
	case c.IsFiles():
		attrs = append(attrs, "files", len(c.Paths), "cut", c.Cut)
	case strings.HasPrefix(c.MIME, "text/"):
		preview := string(c.Data)
		if len(preview) > previewLen {
			preview = preview[:previewLen] + "…"
		}
		attrs = append(attrs, "mime", c.MIME, "preview", preview)
	default:
		attrs = append(attrs, "mime", c.MIME, "size_bytes", len(c.Data))
	}
	slog.DebugContext(ctx, event, attrs...)
}
