package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/clip"
	"go.klb.dev/clipslots/internal/config"
	"go.klb.dev/clipslots/internal/conflict"
	"go.klb.dev/clipslots/internal/engine"
	"go.klb.dev/clipslots/internal/logging"
)

// session is what a command runs against: its engine, selected clipboard
// and streams.
type session struct {
	cmd    *cobra.Command
	engine *engine.Engine
	slot   string
}

func newSession(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	unattended := cfg.Unattended || config.ImpliedUnattended(os.LookupEnv, isTerminal(cmd.InOrStdin()))
	o := engine.Options{
		Layout:     layout,
		Bridge:     clip.New(cfg.NoGUI),
		Unattended: unattended,
	}
	if !unattended {
		o.Prompter = conflict.NewTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	if isTerminal(cmd.ErrOrStderr()) {
		o.Progress = cmd.ErrOrStderr()
	}

	s := &session{cmd: cmd, engine: engine.New(o)}
	if f := cmd.Flags().Lookup("clipboard"); f != nil {
		s.slot = f.Value.String()
	}
	return s, nil
}

func (s *session) stdin() io.Reader  { return s.cmd.InOrStdin() }
func (s *session) stdout() io.Writer { return s.cmd.OutOrStdout() }
func (s *session) stderr() io.Writer { return s.cmd.ErrOrStderr() }

// policy turns --force and --no-clobber into a starting conflict policy.
func (s *session) policy() conflict.Policy {
	if force, _ := s.cmd.Flags().GetBool("force"); force {
		return conflict.ReplaceAll
	}
	if keep, _ := s.cmd.Flags().GetBool("no-clobber"); keep {
		return conflict.SkipAll
	}
	return conflict.Unknown
}

// report prints the operation's tally to stderr and returns its error.
func (s *session) report(rep engine.Report, err error) error {
	if err != nil {
		return err
	}
	if line := rep.Summary(); line != "" {
		fmt.Fprintln(s.stderr(), line)
	}
	if n := len(rep.Skipped); n > 0 {
		fmt.Fprintf(s.stderr(), "Skipped %d existing item(s)\n", n)
	}
	return rep.Err()
}

var errNoInput = errors.New("no paths given and stdin is a terminal")

func (s *session) requirePipedInput() error {
	if isTerminal(s.stdin()) {
		return errNoInput
	}
	return nil
}

func isTerminal(v any) bool {
	w, ok := v.(io.Writer)
	return ok && logging.IsTTY(w)
}
