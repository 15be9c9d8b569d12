package clip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// errNoHelper is returned when no selection helper fits the session.
var errNoHelper = errors.New("no clipboard helper found")

// helper is an external program that takes the clipboard contents on stdin
// and keeps serving the selection after clipslots exits.
type helper struct {
	name string
	args []string
}

// selectionHelper picks wl-copy on Wayland and xclip or xsel on X11. xsel
// carries text only.
func selectionHelper(lookPath func(string) (string, error), getenv func(string) string, mime string) (helper, bool) {
	text := mime == "" || strings.HasPrefix(mime, "text/")
	var candidates []helper
	if getenv("WAYLAND_DISPLAY") != "" {
		h := helper{name: "wl-copy"}
		if !text {
			h.args = []string{"--type", mime}
		}
		candidates = append(candidates, h)
	}
	if getenv("DISPLAY") != "" {
		h := helper{name: "xclip", args: []string{"-selection", "clipboard"}}
		if !text {
			h.args = append(h.args, "-t", mime)
		}
		candidates = append(candidates, h)
		if text {
			candidates = append(candidates, helper{name: "xsel", args: []string{"--clipboard", "--input"}})
		}
	}
	for _, h := range candidates {
		if _, err := lookPath(h.name); err == nil {
			return h, true
		}
	}
	return helper{}, false
}

// write runs the helper with data on stdin. Stdout and stderr stay
// unattached: the helpers fork a child that would hold the pipes open and
// stall Run until the selection is taken over.
func (h helper) write(ctx context.Context, data []byte) error {
	cmd := exec.CommandContext(ctx, h.name, h.args...)
	cmd.Stdin = bytes.NewReader(data)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", h.name, err)
	}
	return nil
}
