package conflict

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalPrompter asks on out and reads answers from in, one per line.
type TerminalPrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter returns a prompter reading in and writing out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

const promptText = "%q already exists. Replace? [(y)es/(a)ll/(n)o/(N)one/(q)uit] "

// Ask prompts until it gets a recognised answer. End of input aborts.
func (p *TerminalPrompter) Ask(item string) (Policy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		fmt.Fprintf(p.out, promptText, item)
		line, err := p.in.ReadString('\n')
		if pol, ok := parseAnswer(strings.TrimSpace(line)); ok {
			if pol == Unknown {
				return Unknown, ErrAborted
			}
			return pol, nil
		}
		if err != nil {
			fmt.Fprintln(p.out)
			return Unknown, ErrAborted
		}
		fmt.Fprintln(p.out, "Please answer y, a, n, N or q.")
	}
}

// parseAnswer maps an answer to a policy; Unknown with ok set means quit.
func parseAnswer(s string) (Policy, bool) {
	switch s {
	case "N", "none", "None", "NONE":
		return SkipAll, true
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return ReplaceOnce, true
	case "a", "all":
		return ReplaceAll, true
	case "n", "no":
		return SkipOnce, true
	case "q", "quit":
		return Unknown, true
	}
	return Unknown, false
}
