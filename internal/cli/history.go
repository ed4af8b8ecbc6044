package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/journal"
)

// HistoryResult is the JSON payload of the history listing.
type HistoryResult struct {
	Operations []journal.Entry `json:"operations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		opts  storeOptions
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent operations from the journal",
		Long: `Show the journal of mutating operations recorded against a store,
newest first. The journal lives next to the store data file unless
--journal points elsewhere.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd, &opts, limit)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "database", "", "store data file the journal belongs to")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal file (default <database>.history.db)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func runHistory(rootOpts *RootOptions, cmd *cobra.Command, opts *storeOptions, limit int) error {
	f := newFormatter(rootOpts, cmd)

	j, err := journal.Open(opts.journalPath(), rootOpts.logger())
	if err != nil {
		return failUsage(f, ErrCodeJournal, err)
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return failUsage(f, ErrCodeJournal, err)
	}

	if f.Format == "json" {
		if entries == nil {
			entries = []journal.Entry{}
		}
		return f.Success(HistoryResult{Operations: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "No operations recorded.")
		return nil
	}
	fmt.Fprintf(f.Writer, "Recent operations (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "  %s  %s %s [%s]\n",
			e.RecordedAt.Format(time.RFC3339), e.Command, e.Package, e.Outcome)
		if e.Activity != "" {
			fmt.Fprintf(f.Writer, "    Activity: %s\n", e.Activity)
		}
		if e.DrawViewKey != "" {
			fmt.Fprintf(f.Writer, "    Draw View: %s\n", e.DrawViewKey)
		}
		if e.Detail != "" {
			fmt.Fprintf(f.Writer, "    Detail: %s\n", e.Detail)
		}
	}
	return nil
}
