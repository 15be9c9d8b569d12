package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// ErrCancelled reports an operation stopped by the user. Items finished
// before the cancel stay in place.
var ErrCancelled = errors.New("cancelled")

// Action names an engine operation.
type Action string

const (
	ActionCopy    Action = "copy"
	ActionCut     Action = "cut"
	ActionAdd     Action = "add"
	ActionPaste   Action = "paste"
	ActionShow    Action = "show"
	ActionClear   Action = "clear"
	ActionRemove  Action = "remove"
	ActionNote    Action = "note"
	ActionIgnore  Action = "ignore"
	ActionSwap    Action = "swap"
	ActionLoad    Action = "load"
	ActionStatus  Action = "status"
	ActionInfo    Action = "info"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionPipeIn  Action = "pipe-in"
	ActionPipeOut Action = "pipe-out"
	ActionEdit    Action = "edit"
)

var pastTense = map[Action]string{
	ActionCopy:    "Copied",
	ActionCut:     "Cut",
	ActionAdd:     "Added",
	ActionPaste:   "Pasted",
	ActionClear:   "Cleared",
	ActionRemove:  "Removed",
	ActionSwap:    "Swapped",
	ActionLoad:    "Loaded",
	ActionExport:  "Exported",
	ActionImport:  "Imported",
	ActionPipeIn:  "Piped in",
	ActionPipeOut: "Piped out",
	ActionEdit:    "Edited",
}

// Failure is one item that could not be processed.
type Failure struct {
	Item string
	Err  error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Item, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Op is the state of one running operation. Counters are read by the
// progress indicator while the operation writes them.
type Op struct {
	Action Action
	Slots  []string

	Files       atomic.Int64
	Directories atomic.Int64
	Bytes       atomic.Int64
	Clipboards  atomic.Int64

	mu        sync.Mutex
	failures  []Failure
	skipped   []string
	cancelled bool
}

func newOp(a Action, slots ...string) *Op {
	return &Op{Action: a, Slots: slots}
}

func (o *Op) fail(item string, err error) {
	o.mu.Lock()
	o.failures = append(o.failures, Failure{Item: item, Err: err})
	o.mu.Unlock()
}

func (o *Op) skip(item string) {
	o.mu.Lock()
	o.skipped = append(o.skipped, item)
	o.mu.Unlock()
}

func (o *Op) cancel() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

// Cancelled reports whether the user aborted the operation.
func (o *Op) Cancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func (o *Op) clean() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.cancelled && len(o.failures) == 0 && len(o.skipped) == 0
}

// progressLine renders the counters for the indicator.
func (o *Op) progressLine() string {
	return fmt.Sprintf("%s %s, %s",
		o.Action,
		english.Plural(int(o.Files.Load()+o.Directories.Load()), "item", ""),
		humanize.Bytes(uint64(o.Bytes.Load())))
}

// Report snapshots the operation's outcome.
func (o *Op) Report() Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Report{
		Action:      o.Action,
		Slots:       append([]string(nil), o.Slots...),
		Files:       o.Files.Load(),
		Directories: o.Directories.Load(),
		Bytes:       o.Bytes.Load(),
		Clipboards:  o.Clipboards.Load(),
		Failures:    append([]Failure(nil), o.failures...),
		Skipped:     append([]string(nil), o.skipped...),
		Cancelled:   o.cancelled,
	}
}

// Report is the success and failure tally of a finished operation.
type Report struct {
	Action      Action
	Slots       []string
	Files       int64
	Directories int64
	Bytes       int64
	Clipboards  int64
	Failures    []Failure
	Skipped     []string
	Cancelled   bool
}

// Err returns ErrCancelled for a cancelled operation, the joined failures
// otherwise, or nil.
func (r Report) Err() error {
	if r.Cancelled {
		return ErrCancelled
	}
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Summary renders the success tally on one line, or "" when nothing was
// counted.
func (r Report) Summary() string {
	verb, ok := pastTense[r.Action]
	if !ok {
		return ""
	}
	var parts []string
	if r.Files > 0 {
		parts = append(parts, english.Plural(int(r.Files), "file", ""))
	}
	if r.Directories > 0 {
		parts = append(parts, english.Plural(int(r.Directories), "directory", "directories"))
	}
	if r.Bytes > 0 && (r.Files > 0 || r.Directories > 0 || r.Clipboards == 0) {
		parts = append(parts, humanize.Bytes(uint64(r.Bytes)))
	}
	if r.Clipboards > 0 {
		parts = append(parts, english.Plural(int(r.Clipboards), "clipboard", ""))
	}
	if len(parts) == 0 {
		return ""
	}
	s := verb + " " + strings.Join(parts, ", ")
	if len(r.Slots) > 0 && r.Clipboards == 0 {
		s += " (clipboard " + strings.Join(r.Slots, ", ") + ")"
	}
	return s
}
