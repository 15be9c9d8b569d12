// Package progress draws a one-line activity indicator while a long
// operation runs.
//
// The indicator goroutine sleeps on a sync.Cond and redraws on every tick
// until the operation moves it out of the Active state. A nil *Indicator is
// valid and does nothing.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// State is the indicator's lifecycle.
type State int

const (
	Active State = iota
	Done
	Cancel
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Done:
		return "done"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultInterval is the redraw period.
const DefaultInterval = 100 * time.Millisecond

var spinner = []string{"-", "\\", "|", "/"}

// Indicator is a running progress line.
type Indicator struct {
	mu     sync.Mutex
	cond   *sync.Cond
	state  State
	paused bool
	ticks  uint64
	frame  int
	drawn  bool

	out    io.Writer
	render func() string
	ticker *clock.Ticker

	stopOnce sync.Once
	exited   chan struct{}
}

// Start begins drawing render's output on out every interval, timed by c.
func Start(c clock.Clock, out io.Writer, interval time.Duration, render func() string) *Indicator {
	if c == nil {
		c = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	ind := &Indicator{
		out:    out,
		render: render,
		ticker: c.Ticker(interval),
		exited: make(chan struct{}),
	}
	ind.cond = sync.NewCond(&ind.mu)
	go ind.tick()
	go ind.draw()
	return ind
}

func (ind *Indicator) tick() {
	for {
		select {
		case <-ind.exited:
			return
		case <-ind.ticker.C:
			ind.mu.Lock()
			ind.ticks++
			ind.cond.Broadcast()
			ind.mu.Unlock()
		}
	}
}

func (ind *Indicator) draw() {
	defer close(ind.exited)
	ind.mu.Lock()
	defer ind.mu.Unlock()

	var seen uint64
	for {
		for ind.state == Active && (ind.paused || ind.ticks == seen) {
			ind.cond.Wait()
		}
		if ind.state != Active {
			ind.erase()
			return
		}
		seen = ind.ticks
		fmt.Fprintf(ind.out, "\r\033[K%s %s", spinner[ind.frame%len(spinner)], ind.render())
		ind.frame++
		ind.drawn = true
	}
}

// erase clears the line; mu must be held.
func (ind *Indicator) erase() {
	if ind.drawn {
		fmt.Fprint(ind.out, "\r\033[K")
		ind.drawn = false
	}
}

// State returns the current state.
func (ind *Indicator) State() State {
	if ind == nil {
		return Done
	}
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.state
}

// Pause clears the line and stops drawing, for example while prompting.
func (ind *Indicator) Pause() {
	if ind == nil {
		return
	}
	ind.mu.Lock()
	ind.paused = true
	ind.erase()
	ind.mu.Unlock()
}

// Resume undoes Pause.
func (ind *Indicator) Resume() {
	if ind == nil {
		return
	}
	ind.mu.Lock()
	ind.paused = false
	ind.cond.Broadcast()
	ind.mu.Unlock()
}

// Finish moves the indicator to Done and waits for it to stop drawing.
func (ind *Indicator) Finish() { ind.stop(Done) }

// Cancel moves the indicator to Cancel and waits for it to stop drawing.
func (ind *Indicator) Cancel() { ind.stop(Cancel) }

func (ind *Indicator) stop(s State) {
	if ind == nil {
		return
	}
	ind.mu.Lock()
	if ind.state == Active {
		ind.state = s
	}
	ind.cond.Broadcast()
	ind.mu.Unlock()

	ind.stopOnce.Do(ind.ticker.Stop)
	<-ind.exited
}
