// Package preset carries the catalog of applications with known draw
// view keys, so optimization can be enabled without hunting for the
// right view class by hand. A built-in table ships with the tool;
// user catalog files can extend or override it.
package preset

import "fmt"

// App is one known application's activation parameters.
type App struct {
	Package     string   `json:"package"`
	Name        string   `json:"name"`
	DrawViewKey string   `json:"drawViewKey"`
	Activities  []string `json:"activities"`
}

// Catalog maps package names to presets, preserving the order entries
// were added. It is read-only to its consumers; the manager receives
// it as an injected dependency.
type Catalog struct {
	apps  map[string]App
	order []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{apps: make(map[string]App)}
}

// Add registers app, replacing any existing entry for the same package
// (the replacement keeps the original position). Every field must be
// populated and the activity list non-empty.
func (c *Catalog) Add(app App) error {
	switch {
	case app.Package == "":
		return fmt.Errorf("preset has no package name")
	case app.Name == "":
		return fmt.Errorf("preset %s has no display name", app.Package)
	case app.DrawViewKey == "":
		return fmt.Errorf("preset %s has no drawViewKey", app.Package)
	case len(app.Activities) == 0:
		return fmt.Errorf("preset %s has no candidate activities", app.Package)
	}
	c.add(app)
	return nil
}

func (c *Catalog) add(app App) {
	if _, ok := c.apps[app.Package]; !ok {
		c.order = append(c.order, app.Package)
	}
	c.apps[app.Package] = app
}

// Lookup returns the preset for pkg.
func (c *Catalog) Lookup(pkg string) (App, bool) {
	app, ok := c.apps[pkg]
	return app, ok
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Apps returns every preset in catalog order.
func (c *Catalog) Apps() []App {
	apps := make([]App, len(c.order))
	for i, pkg := range c.order {
		apps[i] = c.apps[pkg]
	}
	return apps
}

// builtinApps is the shipped catalog. Draw view keys are
// community-verified against real devices.
var builtinApps = []App{
	{
		Package:     "com.xodo.pdf.reader",
		Name:        "Xodo PDF Reader",
		DrawViewKey: "com.pdftron.pdf.PDFViewCtrl",
		Activities: []string{
			"com.xodo.presentation.activity.TabletReaderActivity",
			"com.xodo.presentation.activity.ReaderActivity",
		},
	},
	{
		Package:     "com.steadfastinnovation.android.projectpapyrus",
		Name:        "Squid",
		DrawViewKey: "com.steadfastinnovation.android.projectpapyrus.ui.widget.PageViewContainer",
		Activities: []string{
			"com.steadfastinnovation.android.projectpapyrus.ui.MainActivity",
		},
	},
	{
		Package:     "md.obsidian",
		Name:        "Obsidian (Excalidraw/Ink)",
		DrawViewKey: "com.getcapacitor.CapacitorWebView",
		Activities: []string{
			"md.obsidian.MainActivity",
		},
	},
	{
		Package:     "com.penly.penly",
		Name:        "Penly",
		DrawViewKey: "com.penly.penly.editor.views.EditorView",
		Activities: []string{
			"com.penly.penly.editor.EditorActivity",
		},
	},
	{
		Package:     "jp.ne.ibis.ibispaintx",
		Name:        "Ibis Paint X",
		DrawViewKey: "jp.ne.ibis.ibispaintx.app.glwtk.IbisPaintView",
		Activities: []string{
			"jp.ne.ibis.ibispaintx.app.MainActivity",
		},
	},
	{
		Package:     "com.medibang.android.paint.tablet",
		Name:        "MediBang Paint",
		DrawViewKey: "com.medibang.android.paint.tablet.ui.widget.CanvasView",
		Activities: []string{
			"com.medibang.android.paint.tablet.MainActivity",
		},
	},
	{
		Package:     "org.joplin.react",
		Name:        "Joplin (Drawing plugin)",
		DrawViewKey: "com.reactnativecommunity.webview.RNCWebView",
		Activities: []string{
			"org.joplin.react.MainActivity",
		},
	},
	{
		Package:     "com.easyinnovation.notebook.gfree",
		Name:        "DrawNote",
		DrawViewKey: "com.dragonnest.app.view.DrawingContainerView",
		Activities: []string{
			"com.easyinnovation.notebook.gfree.MainActivity",
		},
	},
	{
		Package:     "com.microsoft.office.onenote",
		Name:        "Microsoft OneNote",
		DrawViewKey: "com.microsoft.office.onenote.drawing.CanvasView",
		Activities: []string{
			"com.microsoft.office.onenote.ui.main.MainActivity",
		},
	},
}

// Builtin returns a fresh catalog holding the shipped presets.
func Builtin() *Catalog {
	c := New()
	for _, app := range builtinApps {
		c.add(app)
	}
	return c
}
