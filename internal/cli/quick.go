package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/journal"
)

// QuickEnableResult is the JSON payload for a successful quick enable.
type QuickEnableResult struct {
	Package     string   `json:"package"`
	Name        string   `json:"name"`
	Activity    string   `json:"activity"`
	DrawViewKey string   `json:"drawViewKey"`
	Backups     []string `json:"backups,omitempty"`
}

// NewQuickCommand creates the quick command.
func NewQuickCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app         string
		activity    string
		presetsPath string
		opts        storeOptions
	)

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Enable optimization using a preset",
		Long: `Enable handwriting optimization for a known application, taking the
DrawViewKey and activity from the preset catalog instead of flags.

--activity overrides the preset's first candidate activity.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuick(rootOpts, cmd, app, activity, presetsPath, &opts)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "application package name")
	cmd.Flags().StringVar(&activity, "activity", "", "activity class (default: the preset's first candidate)")
	cmd.Flags().StringVar(&presetsPath, "presets", "", "extra preset catalog file (YAML)")
	_ = cmd.MarkFlagRequired("app")
	addStoreFlags(cmd, &opts, true)

	return cmd
}

func runQuick(rootOpts *RootOptions, cmd *cobra.Command, app, activity, presetsPath string, opts *storeOptions) error {
	f := newFormatter(rootOpts, cmd)

	catalog, err := loadPresets(presetsPath)
	if err != nil {
		return failUsage(f, ErrCodePresets, err)
	}

	sess, err := openSession(rootOpts, opts, catalog, f, true)
	if err != nil {
		return fail(f, err)
	}
	defer sess.close()

	res, err := sess.manager.QuickEnable(app, activity)
	oc, detail := outcome(err)
	entry := journal.Entry{Command: "quick", Package: app, Outcome: oc, Detail: detail}
	if res != nil {
		entry.Activity = res.Activity
		entry.DrawViewKey = res.DrawViewKey
	}
	sess.record(entry)
	if err != nil {
		return fail(f, err)
	}

	if f.Format == "json" {
		return f.Success(QuickEnableResult{
			Package:     res.Package,
			Name:        res.Name,
			Activity:    res.Activity,
			DrawViewKey: res.DrawViewKey,
			Backups:     sess.backups,
		})
	}
	fmt.Fprintf(f.Writer, "✓ Enabled handwriting optimization for %s\n", res.Name)
	fmt.Fprintf(f.Writer, "  Package: %s\n", res.Package)
	fmt.Fprintf(f.Writer, "  Activity: %s\n", res.Activity)
	fmt.Fprintf(f.Writer, "  Draw View: %s\n", res.DrawViewKey)
	return nil
}
