// Package cliptest provides an in-memory clip.Bridge for tests.
package cliptest

import (
	"context"
	"slices"
	"sync"

	"go.klb.dev/clipslots/internal/clip"
)

// Bridge is an in-memory clipboard that records traffic.
type Bridge struct {
	mu      sync.Mutex
	content clip.Content
	cut     bool

	Reads  int
	Writes []clip.Content

	// ReadErr and WriteErr, when set, are returned by every call.
	ReadErr  error
	WriteErr error
}

// New returns an empty bridge. With cut set it claims cut support.
func New(cut bool) *Bridge { return &Bridge{cut: cut} }

// Set replaces the content, as another application copying would.
func (b *Bridge) Set(c clip.Content) {
	b.mu.Lock()
	b.content = clone(c)
	b.mu.Unlock()
}

// Content returns what the bridge holds.
func (b *Bridge) Content() clip.Content {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.content)
}

func (b *Bridge) Name() string      { return "memory" }
func (b *Bridge) SupportsCut() bool { return b.cut }

func (b *Bridge) Read(_ context.Context, _ string) (clip.Content, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Reads++
	if b.ReadErr != nil {
		return clip.Content{}, b.ReadErr
	}
	return clone(b.content), nil
}

func (b *Bridge) Write(_ context.Context, c clip.Content) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.content = clone(c)
	b.Writes = append(b.Writes, clone(c))
	return nil
}

func clone(c clip.Content) clip.Content {
	c.Data = slices.Clone(c.Data)
	c.Paths = slices.Clone(c.Paths)
	return c
}
