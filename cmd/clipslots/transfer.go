package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/engine"
)

func newExportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "export DIR [NAME...]",
		Short: "Export clipboards to a directory",
		Long: `Copies each named clipboard, or every clipboard in use, into
DIR/` + engine.ExportDirName + `/NAME. With --archive each clipboard is
written as NAME.tar.gz instead.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			archive, _ := cmd.Flags().GetBool("archive")
			return s.report(s.engine.Export(cmd.Context(), args[1:], args[0], archive))
		},
	}

	cmd.Flags().Bool("archive", false, "write one .tar.gz per clipboard")
	addCommonFlags(cmd)
	return cmd
}

func newImportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "import DIR [NAME...]",
		Short: "Import clipboards written by export",
		Long: `Restores clipboards from DIR/` + engine.ExportDirName + `, replacing their
contents. Directories and .tar.gz archives are both read. With NAMEs only
those clipboards are imported.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			return s.report(s.engine.Import(cmd.Context(), args[0], args[1:]))
		},
	}

	addCommonFlags(cmd)
	return cmd
}
