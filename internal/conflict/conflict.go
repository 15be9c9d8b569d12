// Package conflict decides what happens when an incoming item collides with
// one already in place.
package conflict

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrAborted is returned by a Prompter when the user cancels the operation.
var ErrAborted = errors.New("aborted")

// Policy is the resolver's decision state.
type Policy int

const (
	Unknown Policy = iota
	ReplaceAll
	ReplaceOnce
	SkipOnce
	SkipAll
)

func (p Policy) String() string {
	switch p {
	case Unknown:
		return "unknown"
	case ReplaceAll:
		return "replace-all"
	case ReplaceOnce:
		return "replace-once"
	case SkipOnce:
		return "skip-once"
	case SkipAll:
		return "skip-all"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Outcome is the resolution for one collision.
type Outcome int

const (
	Overwrite Outcome = iota
	Skip
	Abort
)

func (o Outcome) String() string {
	switch o {
	case Overwrite:
		return "overwrite"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Prompter asks the user about one colliding item.
type Prompter interface {
	Ask(item string) (Policy, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(item string) (Policy, error)

// Ask calls f.
func (f PrompterFunc) Ask(item string) (Policy, error) { return f(item) }

// Resolver tracks the policy for one operation. It is safe for concurrent
// use, though operations resolve items one at a time.
type Resolver struct {
	mu         sync.Mutex
	policy     Policy
	prompter   Prompter
	unattended bool
}

// NewResolver returns a resolver in the Unknown state. With unattended set,
// or a nil prompter, undecided collisions resolve to ReplaceAll.
func NewResolver(p Prompter, unattended bool) *Resolver {
	return &Resolver{prompter: p, unattended: unattended || p == nil}
}

// Set forces the policy, as a --force or --no-clobber flag would.
func (r *Resolver) Set(p Policy) {
	r.mu.Lock()
	r.policy = p
	r.mu.Unlock()
}

// Policy returns the current state.
func (r *Resolver) Policy() Policy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.policy
}

// Resolve decides the outcome for a collision on item. The Once states
// apply to this item only.
func (r *Resolver) Resolve(item string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.policy {
	case ReplaceAll:
		return Overwrite
	case SkipAll:
		return Skip
	}

	if r.unattended {
		r.policy = ReplaceAll
		return Overwrite
	}

	p, err := r.prompter.Ask(item)
	if err != nil {
		if !errors.Is(err, ErrAborted) {
			slog.Warn("conflict prompt failed", "item", item, "err", err)
		}
		r.policy = Unknown
		return Abort
	}

	switch p {
	case ReplaceAll, SkipAll:
		r.policy = p
	default:
		r.policy = Unknown
	}
	switch p {
	case ReplaceAll, ReplaceOnce:
		return Overwrite
	case SkipAll, SkipOnce:
		return Skip
	}
	return Abort
}
