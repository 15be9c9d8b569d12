package clip

import (
	"context"
	"os"
	"os/exec"
)

// selectionWriter hands writes to wl-copy, xclip or xsel. The X11 and
// Wayland selections are served by their owner, so content written by
// golang.design/x/clipboard disappears when clipslots exits.
func selectionWriter() writeFunc {
	return func(ctx context.Context, mime string, data []byte) error {
		h, ok := selectionHelper(exec.LookPath, os.Getenv, mime)
		if !ok {
			return errNoHelper
		}
		return h.write(ctx, data)
	}
}
