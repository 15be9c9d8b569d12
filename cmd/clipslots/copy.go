package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [PATH...]",
		Short: "Copy files or stdin into a clipboard",
		Long: `Replaces the clipboard's contents with copies of PATHs. Directories are
copied recursively and symlinks are kept as symlinks.

With no PATH, stdin is read and stored as the clipboard's text.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 {
				if err := s.requirePipedInput(); err != nil {
					return err
				}
				return s.report(s.engine.CopyText(ctx, s.slot, s.stdin()))
			}
			return s.report(s.engine.Copy(ctx, s.slot, args, s.policy()))
		},
	}

	addSlotFlag(cmd)
	addPolicyFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newCutCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cut PATH...",
		Short: "Cut files into a clipboard",
		Long: `Like copy, but the next paste of the clipboard deletes PATHs once every
item has been pasted.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Cut(cmd.Context(), s.slot, args, s.policy()))
		},
	}

	addSlotFlag(cmd)
	addPolicyFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [PATH...]",
		Short: "Add files or stdin to a clipboard",
		Long: `Copies PATHs into the clipboard next to what it already holds. With no
PATH, stdin is appended to the clipboard's text.

Files cannot be added to a clipboard holding text, nor text to one holding
files.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 {
				if err := s.requirePipedInput(); err != nil {
					return err
				}
				return s.report(s.engine.AddText(ctx, s.slot, s.stdin()))
			}
			return s.report(s.engine.Add(ctx, s.slot, args, s.policy()))
		},
	}

	addSlotFlag(cmd)
	addPolicyFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}
