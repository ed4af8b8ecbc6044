package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/eac"
	"github.com/roach88/eacctl/internal/journal"
)

// TestResult is the JSON payload for a successful trial enable.
type TestResult struct {
	Package     string   `json:"package"`
	Name        string   `json:"name"`
	Activity    string   `json:"activity"`
	DrawViewKey string   `json:"drawViewKey"`
	Backups     []string `json:"backups,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app      string
		drawView string
		activity string
		name     string
		opts     storeOptions
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Try a DrawViewKey candidate for an unknown app",
		Long: `Apply a trial handwriting configuration for an app that is not in the
preset catalog, then print the steps to verify it on the device.

Identical to enable except for the existence precheck and the printed
verification guidance.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, cmd, app, drawView, activity, name, &opts)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "application package name")
	cmd.Flags().StringVar(&drawView, "draw-view", "", "DrawViewKey candidate to try")
	cmd.Flags().StringVar(&activity, "activity", "", "activity class to optimize")
	cmd.Flags().StringVar(&name, "name", "", "display name used in the guidance output")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("draw-view")
	_ = cmd.MarkFlagRequired("activity")
	addStoreFlags(cmd, &opts, true)

	return cmd
}

func runTest(rootOpts *RootOptions, cmd *cobra.Command, app, drawView, activity, name string, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	display := name
	if display == "" {
		display = app
	}

	if f.Format != "json" {
		fmt.Fprintf(f.Writer, "Testing DrawViewKey for %s\n", display)
		fmt.Fprintf(f.Writer, "Package: %s\n", app)
		fmt.Fprintf(f.Writer, "DrawViewKey: %s\n", drawView)
		fmt.Fprintf(f.Writer, "Activity: %s\n", activity)
		fmt.Fprintln(f.Writer)
	}

	sess, err := openSession(rootOpts, opts, nil, f, true)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	// Precheck before the backup hook gets a chance to run, so a trial
	// against an app that never ran on the device creates no files.
	if !sess.manager.Exists(app) {
		err := fmt.Errorf("%s: %w", app, eac.ErrAppNotFound)
		_ = f.Error(ErrCodeAppNotFound, err.Error(), nil)
		if f.Format != "json" {
			fmt.Fprintln(f.Writer, "Make sure the app is installed and has been launched at least once.")
		}
		return WrapExitError(ExitFailure, ErrCodeAppNotFound, err)
	}

	err = sess.manager.Enable(app, drawView, activity)
	oc, detail := outcome(err)
	sess.record(journal.Entry{
		Command:     "test",
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
		return f.Success(TestResult{
			Package:     app,
			Name:        display,
			Activity:    activity,
			DrawViewKey: drawView,
			Backups:     sess.backups,
		})
	}

	fmt.Fprintln(f.Writer, "Test configuration applied.")
	fmt.Fprintln(f.Writer)
	fmt.Fprintln(f.Writer, "Testing steps:")
	fmt.Fprintf(f.Writer, "1. Copy %s and %s back to the device\n", sess.store.Path(), sess.store.CRCPath())
	fmt.Fprintln(f.Writer, "2. Restart the target app")
	fmt.Fprintln(f.Writer, "3. Draw with the stylus in the app")
	fmt.Fprintln(f.Writer, "4. Check whether strokes now track the pen")
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "If handwriting works, this DrawViewKey is correct for %s.\n", display)
	fmt.Fprintf(f.Writer, "  Consider sharing: %s -> %s\n", app, drawView)
	fmt.Fprintln(f.Writer, "If it does not, try another candidate from 'discover'.")
	if len(sess.backups) > 0 {
		fmt.Fprintf(f.Writer, "  Restore the original: cp %s %s\n", sess.backups[0], opts.Database)
	}
	return nil
}
