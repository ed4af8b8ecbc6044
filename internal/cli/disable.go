package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/journal"
)

// DisableResult is the JSON payload for a successful disable.
type DisableResult struct {
	Package string   `json:"package"`
	Removed []string `json:"removed"`
	Backups []string `json:"backups,omitempty"`
}

// NewDisableCommand creates the disable command.
func NewDisableCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app      string
		activity string
		opts     storeOptions
	)

	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Remove handwriting optimization entries",
		Long: `Remove handwriting optimization for an application.

With --activity exactly that entry is removed. Without it, every entry
currently passing the active check is swept away; entries that were
already switched off survive untouched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisable(rootOpts, cmd, app, activity, &opts)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "application package name")
	cmd.Flags().StringVar(&activity, "activity", "", "remove only this activity's entry")
	_ = cmd.MarkFlagRequired("app")
	addStoreFlags(cmd, &opts, true)

	return cmd
}

func runDisable(rootOpts *RootOptions, cmd *cobra.Command, app, activity string, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	sess, err := openSession(rootOpts, opts, nil, f, true)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	removed, err := sess.manager.Disable(app, activity)
	oc, detail := outcome(err)
	if err == nil && len(removed) > 0 {
		detail = "removed " + strings.Join(removed, ", ")
	}
	sess.record(journal.Entry{
		Command:  "disable",
		Package:  app,
		Activity: activity,
		Outcome:  oc,
		Detail:   detail,
	})
	if err != nil {
		return fail(f, err)
	}

	if f.Format == "json" {
		if removed == nil {
			removed = []string{}
		}
		return f.Success(DisableResult{
			Package: app,
			Removed: removed,
			Backups: sess.backups,
		})
	}
	if len(removed) == 0 {
		fmt.Fprintf(f.Writer, "No optimizations found for %s\n", app)
	}
	for _, name := range removed {
		fmt.Fprintf(f.Writer, "Removed optimization for activity: %s\n", name)
	}
	fmt.Fprintf(f.Writer, "✓ Disabled handwriting optimization for %s\n", app)
	return nil
}
