package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Empty a clipboard",
		Long:    `Removes the clipboard's contents and forgets a pending cut. Notes and ignore rules are kept.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Clear(cmd.Context(), s.slot))
		},
	}

	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newEditCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a clipboard's text in $VISUAL or $EDITOR",
		Long: `Opens the clipboard's text in $VISUAL, then $EDITOR, falling back to vi.
The clipboard stays locked until the editor exits, and the ignore rules
are applied to the saved text. A clipboard holding files cannot be edited.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return s.report(s.engine.Edit(ctx, s.slot, func(path string) error {
				argv := append(editorCommand(os.Getenv), path)
				c := exec.CommandContext(ctx, argv[0], argv[1:]...)
				c.Stdin, c.Stdout, c.Stderr = s.stdin(), s.stdout(), s.stderr()
				return c.Run()
			}))
		},
	}

	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

// editorCommand splits $VISUAL or $EDITOR into argv.
func editorCommand(getenv func(string) string) []string {
	for _, k := range []string{"VISUAL", "EDITOR"} {
		if f := strings.Fields(getenv(k)); len(f) > 0 {
			return f
		}
	}
	return []string{"vi"}
}

func newRemoveCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "remove REGEX...",
		Short: "Remove matching items or text from a clipboard",
		Long: `For a clipboard holding files, removes every item whose whole name
matches one of the regular expressions. For a clipboard holding text,
deletes every match from the text.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Remove(cmd.Context(), s.slot, args))
		},
	}

	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newNoteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "note [TEXT...]",
		Short: "Show or set a clipboard's note",
		Long: `With TEXT, stores it as the clipboard's note. Without, prints the
current note. --clear removes it.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if drop, _ := cmd.Flags().GetBool("clear"); drop {
				return s.engine.SetNote(ctx, s.slot, "")
			}
			if len(args) > 0 {
				return s.engine.SetNote(ctx, s.slot, strings.Join(args, " "))
			}
			note, err := s.engine.Note(ctx, s.slot)
			if err != nil {
				return err
			}
			if note != "" {
				fmt.Fprintln(s.stdout(), strings.TrimSpace(note))
			}
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "remove the note")
	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newIgnoreCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ignore [REGEX...]",
		Short: "Show or set a clipboard's ignore rules",
		Long: `With REGEXes, replaces the clipboard's ignore rules. Items whose whole
name matches a rule never enter the clipboard, and matches are removed
from text written into it. Without arguments, prints the rules. --clear
removes them.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if drop, _ := cmd.Flags().GetBool("clear"); drop {
				return s.engine.SetIgnore(ctx, s.slot, nil)
			}
			if len(args) > 0 {
				return s.engine.SetIgnore(ctx, s.slot, args)
			}
			rules, err := s.engine.Ignore(ctx, s.slot)
			if err != nil {
				return err
			}
			for _, r := range rules {
				fmt.Fprintln(s.stdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "remove every rule")
	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newSwapCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "swap A B",
		Short:   "Exchange the contents of two clipboards",
		Args:    cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Swap(cmd.Context(), args[0], args[1]))
		},
	}

	addCommonFlags(cmd)
	return cmd
}

func newLoadCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "load DEST...",
		Short: "Copy a clipboard into other clipboards",
		Long: `Replaces the contents of every DEST clipboard with a copy of the
clipboard selected by --clipboard.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Load(cmd.Context(), s.slot, args))
		},
	}

	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}
