// Package lock implements the per-slot advisory lock.
//
// A lock is a marker file holding the holder's decimal pid. Acquire takes the
// marker when it is absent or its holder is dead, shares it when the holder is
// in the caller's own process group, and otherwise polls until one of those
// becomes true. Liveness is a check: a failed check counts as alive, so a
// waiter never steals a lock it cannot prove is stale.
package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// PollInterval is the delay between attempts while another process holds
// the lock.
const PollInterval = 250 * time.Millisecond

// Action is the decision for one observation of a marker.
type Action int

const (
	// Take: write our own pid.
	Take Action = iota
	// Share: the holder is a relative; proceed without a marker of our own.
	Share
	// Wait: sleep PollInterval and look again.
	Wait
)

func (a Action) String() string {
	switch a {
	case Take:
		return "take"
	case Share:
		return "share"
	case Wait:
		return "wait"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Observation is what one look at a marker found.
type Observation struct {
	Present   bool // marker exists
	Valid     bool // content parsed as a pid
	SameGroup bool // holder shares our process group
	Alive     bool // liveness check succeeded and reported alive
	CheckErr  bool // liveness check failed
}

// Next decides what to do about a marker.
func Next(o Observation) Action {
	switch {
	case !o.Present, !o.Valid:
		return Take
	case o.SameGroup:
		return Share
	case o.CheckErr, o.Alive:
		return Wait
	default:
		return Take
	}
}

// Liveness reports whether pid names a running process.
type Liveness interface {
	Alive(ctx context.Context, pid int) (bool, error)
}

// LivenessFunc adapts a function to Liveness.
type LivenessFunc func(ctx context.Context, pid int) (bool, error)

// Alive calls f.
func (f LivenessFunc) Alive(ctx context.Context, pid int) (bool, error) { return f(ctx, pid) }

// GroupCheck reports whether pid is in the caller's process group.
type GroupCheck func(pid int) bool

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option { return func(m *Manager) { m.clock = c } }

// WithLiveness replaces the liveness check.
func WithLiveness(l Liveness) Option { return func(m *Manager) { m.live = l } }

// WithGroupCheck replaces the process-group test.
func WithGroupCheck(g GroupCheck) Option { return func(m *Manager) { m.group = g } }

// WithPID sets the pid written into markers.
func WithPID(pid int) Option { return func(m *Manager) { m.pid = pid } }

// Manager acquires slot locks on behalf of this process.
type Manager struct {
	clock clock.Clock
	live  Liveness
	group GroupCheck
	pid   int
}

// NewManager returns a Manager using the wall clock, the process table and
// the current pid unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock: clock.New(),
		live:  ProcessLiveness(),
		group: SameProcessGroup,
		pid:   os.Getpid(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Guard is a held lock. Release is safe to call more than once.
type Guard struct {
	path  string
	owned bool
	once  sync.Once
	err   error
}

// Owned reports whether this guard wrote the marker. A shared guard did not
// and leaves the marker alone on release.
func (g *Guard) Owned() bool { return g.owned }

// Path returns the marker path.
func (g *Guard) Path() string { return g.path }

// Release removes the marker if this guard owns it.
func (g *Guard) Release() error {
	g.once.Do(func() {
		if !g.owned {
			return
		}
		if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			g.err = fmt.Errorf("release lock %s: %w", g.path, err)
		}
	})
	return g.err
}

// Acquire blocks until the marker at path can be taken or shared, or ctx is
// done.
func (m *Manager) Acquire(ctx context.Context, path string) (*Guard, error) {
	logged := false
	for {
		obs, holder, err := m.observe(ctx, path)
		if err != nil {
			return nil, err
		}
		switch Next(obs) {
		case Share:
			slog.Debug("sharing lock with process group", "path", path, "holder", holder)
			return &Guard{path: path}, nil
		case Take:
			if obs.Present {
				slog.Debug("taking over stale lock", "path", path, "holder", holder)
				if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return nil, fmt.Errorf("remove stale lock %s: %w", path, err)
				}
			}
			ok, err := m.create(path)
			if err != nil {
				return nil, err
			}
			if ok {
				return &Guard{path: path, owned: true}, nil
			}
			// Lost a race with another taker; look again immediately.
			continue
		}

		if !logged {
			slog.Info("waiting for clipboard lock", "path", path, "holder", holder)
			logged = true
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.clock.After(PollInterval):
		}
	}
}

func (m *Manager) observe(ctx context.Context, path string) (Observation, int, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Observation{}, 0, nil
	}
	if err != nil {
		return Observation{}, 0, fmt.Errorf("read lock %s: %w", path, err)
	}
	obs := Observation{Present: true}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return obs, 0, nil
	}
	obs.Valid = true
	if pid == m.pid || m.group(pid) {
		obs.SameGroup = true
		return obs, pid, nil
	}
	alive, err := m.live.Alive(ctx, pid)
	if err != nil {
		slog.Debug("liveness check failed", "pid", pid, "err", err)
		obs.CheckErr = true
	}
	obs.Alive = alive
	return obs, pid, nil
}

// create writes our pid exclusively. It reports false when another process
// created the marker first.
func (m *Manager) create(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create lock %s: %w", path, err)
	}
	if _, err := f.WriteString(strconv.Itoa(m.pid)); err != nil {
		f.Close()
		os.Remove(path)
		return false, fmt.Errorf("write lock %s: %w", path, err)
	}
	return true, f.Close()
}
