package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/journal"
)

// EnableResult is the JSON payload for a successful enable.
type EnableResult struct {
	Package     string   `json:"package"`
	Activity    string   `json:"activity"`
	DrawViewKey string   `json:"drawViewKey"`
	Backups     []string `json:"backups,omitempty"`
}

// NewEnableCommand creates the enable command.
func NewEnableCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app      string
		drawView string
		activity string
		opts     storeOptions
	)

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable handwriting optimization for one activity",
		Long: `Enable handwriting optimization for a specific application activity.

The application must already have a record in the store, which means it
has been launched on the device at least once. Any existing entry for
the activity is replaced; other activities and every unrelated field of
the record stay byte-identical.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnable(rootOpts, cmd, app, drawView, activity, &opts)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "application package name")
	cmd.Flags().StringVar(&drawView, "draw-view", "", "DrawViewKey class of the app's drawing view")
	cmd.Flags().StringVar(&activity, "activity", "", "activity class to optimize")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("draw-view")
	_ = cmd.MarkFlagRequired("activity")
	addStoreFlags(cmd, &opts, true)

	return cmd
}

func runEnable(rootOpts *RootOptions, cmd *cobra.Command, app, drawView, activity string, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	sess, err := openSession(rootOpts, opts, nil, f, true)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	err = sess.manager.Enable(app, drawView, activity)
	oc, detail := outcome(err)
	sess.record(journal.Entry{
		Command:     "enable",
		Package:     app,
		Activity:    activity,
		DrawViewKey: drawView,
		Outcome:     oc,
		Detail:      detail,
	})
	if err != nil {
		return fail(f, err)
	}

	if f.Format == "json" {
		return f.Success(EnableResult{
			Package:     app,
			Activity:    activity,
			DrawViewKey: drawView,
			Backups:     sess.backups,
		})
	}
	fmt.Fprintf(f.Writer, "✓ Enabled handwriting optimization for %s\n", app)
	fmt.Fprintf(f.Writer, "  Activity: %s\n", activity)
	fmt.Fprintf(f.Writer, "  Draw View: %s\n", drawView)
	return nil
}
