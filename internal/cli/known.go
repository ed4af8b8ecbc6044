package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/eac"
	"github.com/roach88/eacctl/internal/preset"
)

// KnownResult is the JSON payload of the catalog listing.
type KnownResult struct {
	Apps []preset.App `json:"apps"`
}

// NewKnownCommand creates the known command.
func NewKnownCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app         string
		presetsPath string
	)

	cmd := &cobra.Command{
		Use:   "known",
		Short: "List apps with pre-configured DrawViewKeys",
		Long: `List the preset catalog of applications with community-verified
DrawViewKeys, usable directly with the quick command.

With --app, show the full preset for one application. Never touches a
store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnown(rootOpts, cmd, app, presetsPath)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "show the preset for this package only")
	cmd.Flags().StringVar(&presetsPath, "presets", "", "extra preset catalog file (YAML)")

	return cmd
}

func runKnown(rootOpts *RootOptions, cmd *cobra.Command, app, presetsPath string) error {
	f := newFormatter(rootOpts, cmd)

	catalog, err := loadPresets(presetsPath)
	if err != nil {
		return failUsage(f, ErrCodePresets, err)
	}

	if app != "" {
		p, ok := catalog.Lookup(app)
		if !ok {
			err := fmt.Errorf("%s: %w", app, eac.ErrUnknownApp)
			_ = f.Error(ErrCodeUnknownApp, err.Error(), nil)
			if f.Format != "json" {
				fmt.Fprintln(f.Writer, "Run 'eacctl known' without --app to list the catalog.")
			}
			return WrapExitError(ExitFailure, ErrCodeUnknownApp, err)
		}

		if f.Format == "json" {
			return f.Success(p)
		}
		fmt.Fprintf(f.Writer, "Known app: %s\n", p.Name)
		fmt.Fprintf(f.Writer, "Package: %s\n", p.Package)
		fmt.Fprintf(f.Writer, "DrawViewKey: %s\n", p.DrawViewKey)
		fmt.Fprintln(f.Writer, "Common Activities:")
		for _, act := range p.Activities {
			fmt.Fprintf(f.Writer, "  - %s\n", act)
		}
		return nil
	}

	apps := catalog.Apps()
	if f.Format == "json" {
		return f.Success(KnownResult{Apps: apps})
	}
	fmt.Fprintf(f.Writer, "Known apps with pre-configured DrawViewKeys (%d):\n", len(apps))
	for _, p := range apps {
		fmt.Fprintf(f.Writer, "  %s\n", p.Package)
		fmt.Fprintf(f.Writer, "    Name: %s\n", p.Name)
		fmt.Fprintf(f.Writer, "    DrawViewKey: %s\n", p.DrawViewKey)
		fmt.Fprintln(f.Writer)
	}
	return nil
}
