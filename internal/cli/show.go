package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app  string
		opts storeOptions
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one app's activity configuration",
		Long: `Show every activity configuration entry of one application record,
with the handwriting state of each.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, app, &opts)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "application package name")
	_ = cmd.MarkFlagRequired("app")
	addStoreFlags(cmd, &opts, false)

	return cmd
}

func runShow(rootOpts *RootOptions, cmd *cobra.Command, app string, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	sess, err := openSession(rootOpts, opts, nil, f, false)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	status, err := sess.manager.Show(app)
	if err != nil {
		return fail(f, err)
	}

	if f.Format == "json" {
		return f.Success(status)
	}
	fmt.Fprintf(f.Writer, "Configuration for %s:\n", status.Package)
	if len(status.Activities) == 0 {
		fmt.Fprintln(f.Writer, "  No activity configurations")
		return nil
	}
	fmt.Fprintln(f.Writer, "  Activity configurations:")
	for _, act := range status.Activities {
		if act.Optimized {
			fmt.Fprintf(f.Writer, "    ✓ %s (handwriting enabled)\n", act.Activity)
			fmt.Fprintf(f.Writer, "      Draw View: %s\n", act.DrawViewKey)
		} else {
			fmt.Fprintf(f.Writer, "    - %s (no handwriting)\n", act.Activity)
		}
	}
	return nil
}
