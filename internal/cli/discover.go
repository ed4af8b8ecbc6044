package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eacctl/internal/preset"
)

// commonViewSuffixes are drawing view class names that keep showing up
// across Android drawing apps, in rough order of how often they hit.
var commonViewSuffixes = []string{
	"DrawView", "CanvasView", "PaintView", "DrawingView",
	"PDFViewCtrl", "WebView", "RenderView", "EditorView",
	"NoteView", "SketchView", "InkView", "PenView",
}

const maxSuggestions = 10

// ViewPattern groups catalog apps by the class name of their draw view.
type ViewPattern struct {
	Pattern string   `json:"pattern"`
	Apps    []string `json:"apps"`
}

// DiscoverReport is the JSON payload of the discovery guide.
type DiscoverReport struct {
	Patterns    []ViewPattern `json:"patterns"`
	Suffixes    []string      `json:"suffixes"`
	Package     string        `json:"package,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		app         string
		presetsPath string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print DrawViewKey discovery heuristics",
		Long: `Print heuristics for finding an app's DrawViewKey: view class
patterns seen in the preset catalog, common suffixes, and, with --app,
concrete candidate keys derived from the package name.

Purely informational; never touches a store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(rootOpts, cmd, app, presetsPath)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "suggest candidate keys for this package")
	cmd.Flags().StringVar(&presetsPath, "presets", "", "extra preset catalog file (YAML)")

	return cmd
}

func runDiscover(rootOpts *RootOptions, cmd *cobra.Command, app, presetsPath string) error {
	f := newFormatter(rootOpts, cmd)

	catalog, err := loadPresets(presetsPath)
	if err != nil {
		return failUsage(f, ErrCodePresets, err)
	}

	patterns := viewPatterns(catalog)
	var suggestions []string
	if app != "" {
		suggestions = suggestKeys(app)
	}

	if f.Format == "json" {
		return f.Success(DiscoverReport{
			Patterns:    patterns,
			Suffixes:    commonViewSuffixes,
			Package:     app,
			Suggestions: suggestions,
		})
	}

	fmt.Fprintln(f.Writer, "DrawViewKey discovery guide")
	fmt.Fprintln(f.Writer, strings.Repeat("=", 50))

	fmt.Fprintln(f.Writer)
	fmt.Fprintln(f.Writer, "Common DrawViewKey patterns from known apps:")
	for _, p := range patterns {
		fmt.Fprintf(f.Writer, "  %s: %s\n", p.Pattern, strings.Join(p.Apps, ", "))
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintln(f.Writer, "Common View class suffixes to try:")
	for _, suffix := range commonViewSuffixes {
		fmt.Fprintf(f.Writer, "  *%s\n", suffix)
	}

	if app != "" {
		fmt.Fprintln(f.Writer)
		fmt.Fprintf(f.Writer, "Suggestions for %s:\n", app)
		for i, s := range suggestions {
			fmt.Fprintf(f.Writer, "  %2d. %s\n", i+1, s)
		}
		fmt.Fprintln(f.Writer)
		fmt.Fprintln(f.Writer, "Test candidates with:")
		fmt.Fprintf(f.Writer, "  eacctl test --app %s --draw-view <DrawViewKey> --activity <Activity> --database <store>\n", app)
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintln(f.Writer, "Discovery methods:")
	fmt.Fprintln(f.Writer, "1. Android debugging: adb shell dumpsys activity top")
	fmt.Fprintln(f.Writer, "2. APK analysis: search for *View classes in decompiled code")
	fmt.Fprintln(f.Writer, "3. Inspect the app's view hierarchy while drawing")
	fmt.Fprintln(f.Writer, "4. Check similar apps' patterns")
	fmt.Fprintln(f.Writer, "5. Community forums: MobileRead, Reddit r/Onyx_Boox")
	return nil
}

// viewPatterns extracts the draw view class names from the catalog,
// keeping catalog order and grouping apps sharing a class name.
func viewPatterns(catalog *preset.Catalog) []ViewPattern {
	var out []ViewPattern
	index := map[string]int{}
	for _, app := range catalog.Apps() {
		if !strings.Contains(app.DrawViewKey, "View") {
			continue
		}
		parts := strings.Split(app.DrawViewKey, ".")
		pattern := parts[len(parts)-1]
		if i, ok := index[pattern]; ok {
			out[i].Apps = append(out[i].Apps, app.Name)
			continue
		}
		index[pattern] = len(out)
		out = append(out, ViewPattern{Pattern: pattern, Apps: []string{app.Name}})
	}
	return out
}

// suggestKeys builds candidate DrawViewKeys for a package by pairing
// the common suffixes with plausible prefixes: the parent package, the
// package itself, and the vendor's ui/view subpackages.
func suggestKeys(pkg string) []string {
	parts := strings.Split(pkg, ".")
	base := pkg
	if len(parts) > 2 {
		base = strings.Join(parts[:len(parts)-1], ".")
	}

	var out []string
	for _, suffix := range commonViewSuffixes {
		out = append(out, base+"."+suffix, pkg+"."+suffix)
		if len(parts) >= 3 {
			out = append(out,
				parts[0]+"."+parts[1]+".ui."+suffix,
				parts[0]+"."+parts[1]+".view."+suffix)
		}
		if len(out) >= maxSuggestions {
			break
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
