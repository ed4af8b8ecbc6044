package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/eac"
)

// ListOptimizedResult is the JSON payload of the default listing.
type ListOptimizedResult struct {
	Apps []eac.AppOptimizations `json:"apps"`
}

// ListAllResult is the JSON payload of --all.
type ListAllResult struct {
	Apps []string `json:"apps"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		all  bool
		opts storeOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List apps in the store",
		Long: `List applications with handwriting optimization enabled.

With --all, list every application that has a record in the store
instead, whether optimized or not.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd, all, &opts)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every app in the store, not just optimized ones")
	addStoreFlags(cmd, &opts, false)

	return cmd
}

func runList(rootOpts *RootOptions, cmd *cobra.Command, all bool, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	sess, err := openSession(rootOpts, opts, nil, f, false)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	if all {
		apps := sess.manager.ListAll()
		if f.Format == "json" {
			if apps == nil {
				apps = []string{}
			}
			return f.Success(ListAllResult{Apps: apps})
		}
		fmt.Fprintf(f.Writer, "All apps in database (%d):\n", len(apps))
		for _, app := range apps {
			fmt.Fprintf(f.Writer, "  %s\n", app)
		}
		return nil
	}

	optimized := sess.manager.ListOptimized()
	if f.Format == "json" {
		if optimized == nil {
			optimized = []eac.AppOptimizations{}
		}
		return f.Success(ListOptimizedResult{Apps: optimized})
	}
	fmt.Fprintf(f.Writer, "Apps with handwriting optimization (%d):\n", len(optimized))
	for _, app := range optimized {
		fmt.Fprintf(f.Writer, "  %s:\n", app.Package)
		for _, act := range app.Activities {
			fmt.Fprintf(f.Writer, "    - %s (view: %s)\n", act.Activity, act.DrawViewKey)
		}
	}
	return nil
}
