// Package clip bridges the default slot to the desktop clipboard. Build
// constraints select the implementation:
//
//	clip_desktop.go   macOS, Windows and Linux via golang.design/x/clipboard
//	clip_other.go     everything else, headless only
//	clip_headless.go  no-op bridge, also used when the display is unavailable
//	helper_linux.go   writes through wl-copy, xclip or xsel so content outlives the process
package clip

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
)

const (
	MIMEText = "text/plain"
	MIMEPNG  = "image/png"
)

// ErrUnsupportedMIME is returned when a bridge cannot carry a content type.
var ErrUnsupportedMIME = errors.New("unsupported MIME type")

// Content is what the desktop clipboard holds: either a typed buffer or a
// list of file paths.
type Content struct {
	MIME  string
	Data  []byte
	Paths []string
	Cut   bool
}

// IsEmpty reports whether c carries nothing.
func (c Content) IsEmpty() bool { return len(c.Data) == 0 && len(c.Paths) == 0 }

// IsFiles reports whether c is a file list.
func (c Content) IsFiles() bool { return len(c.Paths) > 0 }

// Equal compares payloads. MIME labels and the cut flag are ignored since
// not every bridge round-trips them. A file list equals a buffer holding
// the same paths one per line, which is how text-only bridges carry it.
func (c Content) Equal(o Content) bool {
	switch {
	case c.IsFiles() && o.IsFiles():
		return slices.Equal(c.Paths, o.Paths)
	case c.IsFiles():
		return string(o.Data) == strings.Join(c.Paths, "\n")
	case o.IsFiles():
		return string(c.Data) == strings.Join(o.Paths, "\n")
	}
	return bytes.Equal(c.Data, o.Data)
}

// Bridge is a desktop clipboard.
type Bridge interface {
	// Name returns a human-readable name for the bridge.
	Name() string

	// Read returns the clipboard contents. An empty mime asks for whatever
	// the clipboard holds; an empty Content means nothing usable is there.
	Read(ctx context.Context, mime string) (Content, error)

	// Write replaces the clipboard contents.
	Write(ctx context.Context, c Content) error

	// SupportsCut reports whether the bridge can mark content as cut.
	SupportsCut() bool
}

// New returns the platform bridge, or the headless bridge when disabled is
// set or no display is available.
func New(disabled bool) Bridge {
	if disabled {
		return Headless()
	}
	return newPlatform()
}
