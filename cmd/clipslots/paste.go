package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/engine"
	"go.klb.dev/clipslots/internal/mime"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste [DEST]",
		Short: "Paste a clipboard into a directory or stdout",
		Long: `Copies the clipboard's items into DEST (default: the current directory).
A clipboard holding text is written to stdout.

When stdout is not a terminal and no DEST is given, the clipboard is piped
out instead: its text, or the paths of its items one per line.

  clipslots paste -c 2 > out.txt`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 && !isTerminal(s.stdout()) {
				_, err := s.engine.PipeOut(ctx, s.slot, s.stdout())
				return err
			}
			dest := "."
			if len(args) == 1 {
				dest = args[0]
			}
			return s.report(s.engine.Paste(ctx, s.slot, dest, s.stdout(), s.policy()))
		},
	}

	addSlotFlag(cmd)
	addPolicyFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "List what a clipboard holds",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			l, err := s.engine.Show(cmd.Context(), s.slot)
			if err != nil {
				return err
			}
			printListing(s, l)
			return nil
		},
	}

	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func printListing(s *session, l engine.Listing) {
	w := s.stdout()
	if l.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", strings.TrimSpace(l.Note))
	}
	switch {
	case l.Raw && mime.IsText(l.MIME):
		text := string(l.Preview)
		fmt.Fprint(w, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(w)
		}
		if l.Size > int64(len(l.Preview)) {
			fmt.Fprintf(s.stderr(), "(%s more)\n", humanize.Bytes(uint64(l.Size-int64(len(l.Preview)))))
		}
	case l.Raw:
		fmt.Fprintf(w, "<%s, %s>\n", l.MIME, humanize.Bytes(uint64(l.Size)))
	case len(l.Items) > 0:
		for _, item := range l.Items {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintf(s.stderr(), "Clipboard %s is empty\n", l.Name)
	}
}
