package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eacctl/internal/store"
)

// seedStore writes a store pair under a temp dir and returns the data
// file path.
func seedStore(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onyx_config")
	require.NoError(t, store.Create(path, entries))
	return path
}

// fixtureEntries is the store content shared by the list and show
// tests, covering an optimized app, an untouched app and a non-app key.
func fixtureEntries() map[string]string {
	return map[string]string{
		"eac_app_com.alpha.notes": `{"pkgName":"com.alpha.notes","activityConfigMap":{` +
			`"com.alpha.notes.MainActivity":{"noteConfig":{"drawViewKey":"com.alpha.notes.SketchView","enable":true}},` +
			`"com.alpha.notes.SettingsActivity":{"noteConfig":{"drawViewKey":"","enable":false}}}}`,
		"eac_app_com.beta.draw": `{"pkgName":"com.beta.draw"}`,
		"pref_theme":            `dark`,
	}
}

// writePresetFile drops a preset catalog file under a temp dir.
func writePresetFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// runCommand executes a freshly built command, capturing its combined
// output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// storedValue reopens the pair and returns the raw value under key.
func storedValue(t *testing.T, path, key string) string {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	raw, ok := st.Get(key)
	require.True(t, ok, "key %s missing", key)
	return raw
}
