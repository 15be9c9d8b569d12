// clipslots: numbered and named clipboards on the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go.klb.dev/clipslots/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "clipslots:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipslots",
		Short: "Multiple clipboards for files and text",
		Long: `clipslots keeps any number of clipboards. Clipboard 0 is the default and
follows the desktop clipboard. Names containing "_" are persistent and
survive a reboot; all others live under the temporary directory.

  clipslots copy report.pdf notes/     # copy into clipboard 0
  clipslots cut -c 3 *.log             # cut into clipboard 3
  echo hello | clipslots copy -c my_notes
  clipslots paste -c 3 /tmp/logs

Config file search order (first found wins):
  /etc/clipslots/clipslots.toml
  $HOME/.config/clipslots/clipslots.toml
  path supplied via --config

All settings can be set via CLIPSLOTS_<KEY> env vars or config-file keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCopyCmd(),
		newCutCmd(),
		newAddCmd(),
		newPasteCmd(),
		newShowCmd(),
		newClearCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newNoteCmd(),
		newIgnoreCmd(),
		newSwapCmd(),
		newLoadCmd(),
		newStatusCmd(),
		newInfoCmd(),
		newExportCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipslots %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
// Commands are quiet unless asked otherwise.
func resolveLogging(formatStr, levelStr string) {
	logging.Setup(logging.Options{
		Format: logging.ParseFormat(formatStr),
		Level:  logging.ParseLevel(levelStr, slog.LevelWarn),
	})
}
