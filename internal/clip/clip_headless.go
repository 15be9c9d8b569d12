package clip

import "context"

// headlessBackend is a no-op bridge for environments without a display
// server (headless Linux servers, containers, CI) or when the GUI is
// disabled. It never has content and silently discards writes.
type headlessBackend struct{}

// Headless returns the no-op bridge.
func Headless() Bridge { return headlessBackend{} }

func (headlessBackend) Name() string                                  { return "headless (no-op)" }
func (headlessBackend) Read(context.Context, string) (Content, error) { return Content{}, nil }
func (headlessBackend) Write(context.Context, Content) error          { return nil }
func (headlessBackend) SupportsCut() bool                             { return false }
