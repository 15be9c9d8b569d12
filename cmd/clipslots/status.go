package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/engine"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List clipboards in use",
		Long: `Displays every clipboard that holds data, a note or a pending cut,
temporary clipboards first. Locked clipboards are marked with *.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			st, err := s.engine.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(s.stdout(), st)
			}
			printStatus(s.stdout(), st)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output JSON")
	addCommonFlags(cmd)
	return cmd
}

func printStatus(w io.Writer, st []engine.SlotStatus) {
	if len(st) == 0 {
		fmt.Fprintln(w, "No clipboards in use.")
		return
	}

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\tCLIPBOARD\tSIZE\tCONTENT\tNOTE\n")
	_, _ = fmt.Fprintf(tw, "\t---------\t----\t-------\t----\n")
	for _, s := range st {
		marker := ""
		if s.Locked {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			marker, s.Name, humanize.Bytes(uint64(s.Size)), describe(s), oneLine(s.Note),
		)
	}
	_ = tw.Flush()
}

const maxListed = 3

// describe summarises a slot's contents for one table cell.
func describe(s engine.SlotStatus) string {
	switch {
	case s.Raw && s.Preview != "":
		return fmt.Sprintf("%q", s.Preview)
	case s.Raw:
		return s.MIME
	case len(s.Items) == 0:
		return "-"
	case len(s.Items) <= maxListed:
		return strings.Join(s.Items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(s.Items[:maxListed], ", "), len(s.Items)-maxListed)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func newInfoCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "info",
		Short:   "Show details about a clipboard",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			info, err := s.engine.Info(cmd.Context(), s.slot)
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(s.stdout(), info)
			}
			printInfo(s.stdout(), info)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output JSON")
	addSlotFlag(cmd)
	addCommonFlags(cmd)
	return cmd
}

func printInfo(w io.Writer, info engine.SlotInfo) {
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	kind := "temporary"
	if info.Persistent {
		kind = "persistent"
	}
	fmt.Fprintf(tw, "Clipboard:\t%s (%s)\n", info.Name, kind)
	fmt.Fprintf(tw, "Path:\t%s\n", info.Path)
	if info.LockedBy != "" {
		fmt.Fprintf(tw, "Locked by:\tpid %s\n", info.LockedBy)
	}
	if info.Raw {
		fmt.Fprintf(tw, "Content:\tdata\n")
	} else {
		fmt.Fprintf(tw, "Content:\t%s, %s\n",
			english.Plural(info.Files, "file", ""),
			english.Plural(info.Directories, "directory", "directories"))
	}
	if info.MIME != "" {
		fmt.Fprintf(tw, "Type:\t%s\n", info.MIME)
	}
	fmt.Fprintf(tw, "Size:\t%s\n", humanize.Bytes(uint64(info.Size)))
	if len(info.Originals) > 0 {
		fmt.Fprintf(tw, "Cut from:\t%s\n", strings.Join(info.Originals, ", "))
	}
	if len(info.IgnoreRules) > 0 {
		fmt.Fprintf(tw, "Ignoring:\t%s\n", strings.Join(info.IgnoreRules, " "))
	}
	if info.Note != "" {
		fmt.Fprintf(tw, "Note:\t%s\n", oneLine(info.Note))
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(enc))
	return err
}
