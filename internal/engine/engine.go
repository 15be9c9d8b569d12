// Package engine runs clipboard operations against slots.
//
// Every operation opens its slots, holds their locks for its whole
// duration, and records what it did on an Op. Operations on the default
// slot are mirrored to the desktop clipboard through a clip.Bridge.
package engine

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/facebookgo/clock"

	"go.klb.dev/clipslots/internal/clip"
	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/lock"
	"go.klb.dev/clipslots/internal/paths"
	"go.klb.dev/clipslots/internal/progress"
	"go.klb.dev/clipslots/internal/slot"
)

// Options configures an Engine.
type Options struct {
	Layout paths.Layout

	// Locks defaults to a lock.Manager on the wall clock.
	Locks *lock.Manager

	// Bridge defaults to the headless bridge.
	Bridge clip.Bridge

	// Prompter is asked about collisions unless Unattended is set.
	Prompter   conflict.Prompter
	Unattended bool

	// Progress receives the activity indicator; nil disables it.
	Progress         io.Writer
	ProgressInterval time.Duration
	Clock            clock.Clock
}

// Engine runs operations.
type Engine struct {
	layout     paths.Layout
	locks      *lock.Manager
	bridge     clip.Bridge
	prompter   conflict.Prompter
	unattended bool

	progressOut      io.Writer
	progressInterval time.Duration
	clock            clock.Clock
}

// New returns an Engine.
func New(o Options) *Engine {
	e := &Engine{
		layout:           o.Layout,
		locks:            o.Locks,
		bridge:           o.Bridge,
		prompter:         o.Prompter,
		unattended:       o.Unattended,
		progressOut:      o.Progress,
		progressInterval: o.ProgressInterval,
		clock:            o.Clock,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.locks == nil {
		e.locks = lock.NewManager(lock.WithClock(e.clock))
	}
	if e.bridge == nil {
		e.bridge = clip.Headless()
	}
	return e
}

// Layout returns the storage roots.
func (e *Engine) Layout() paths.Layout { return e.layout }

// Bridge returns the desktop clipboard bridge.
func (e *Engine) Bridge() clip.Bridge { return e.bridge }

// run carries one operation: its Op, conflict resolver and indicator.
type run struct {
	op       *Op
	resolver *conflict.Resolver
	ind      *progress.Indicator
}

func (e *Engine) start(op *Op, policy conflict.Policy) *run {
	r := &run{op: op}
	if e.progressOut != nil {
		r.ind = progress.Start(e.clock, e.progressOut, e.progressInterval, op.progressLine)
	}
	var p conflict.Prompter
	if e.prompter != nil {
		p = conflict.PrompterFunc(func(item string) (conflict.Policy, error) {
			r.ind.Pause()
			defer r.ind.Resume()
			return e.prompter.Ask(item)
		})
	}
	r.resolver = conflict.NewResolver(p, e.unattended)
	if policy != conflict.Unknown {
		r.resolver.Set(policy)
	}
	return r
}

func (r *run) finish() Report {
	if r.op.Cancelled() {
		r.ind.Cancel()
	} else {
		r.ind.Finish()
	}
	return r.op.Report()
}

// resolve consults the resolver for a collision on item and records skips
// and aborts. It reports whether item should be written.
func (r *run) resolve(item string) bool {
	switch r.resolver.Resolve(item) {
	case conflict.Overwrite:
		return true
	case conflict.Skip:
		r.op.skip(item)
		return false
	default:
		r.op.cancel()
		return false
	}
}

// open opens name without locking it.
func (e *Engine) open(name string) (*slot.Slot, error) {
	return slot.Open(e.layout, slotName(name))
}

// lookup resolves name for inspection without creating anything on disk.
func (e *Engine) lookup(name string) (*slot.Slot, error) {
	return slot.Lookup(e.layout, slotName(name))
}

// withSlot opens and locks name, imports an external desktop clipboard
// change into the default slot, runs fn, and mirrors the default slot back
// when mutates is set. The lock is released on every path.
func (e *Engine) withSlot(ctx context.Context, name string, mutates bool, fn func(*slot.Slot) error) error {
	s, err := e.open(name)
	if err != nil {
		return err
	}
	g, err := e.locks.Acquire(ctx, s.LockPath())
	if err != nil {
		return err
	}
	defer e.release(g)

	if s.IsDefault() {
		e.pull(ctx, s)
	}
	if err := fn(s); err != nil {
		return err
	}
	if mutates && s.IsDefault() {
		e.push(ctx, s)
	}
	return nil
}

// withSlots locks every named slot in name order and runs fn with the
// slots keyed by name.
func (e *Engine) withSlots(ctx context.Context, names []string, fn func(map[string]*slot.Slot) error) error {
	sorted := make([]string, len(names))
	for i, n := range names {
		sorted[i] = slotName(n)
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	slots := make(map[string]*slot.Slot, len(sorted))
	for _, n := range sorted {
		s, err := e.open(n)
		if err != nil {
			return err
		}
		g, err := e.locks.Acquire(ctx, s.LockPath())
		if err != nil {
			return err
		}
		defer e.release(g)
		slots[n] = s
	}

	def, hasDefault := slots[paths.DefaultSlot]
	if hasDefault {
		e.pull(ctx, def)
	}
	if err := fn(slots); err != nil {
		return err
	}
	if hasDefault {
		e.push(ctx, def)
	}
	return nil
}

func (e *Engine) release(g *lock.Guard) {
	if err := g.Release(); err != nil {
		slog.Warn("releasing clipboard lock", "path", g.Path(), "err", err)
	}
}

// cancelled reports whether the operation should stop before the next item.
func (r *run) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil && !r.op.Cancelled() {
		r.op.cancel()
	}
	return r.op.Cancelled()
}
