package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAfterEnable(t *testing.T) {
	dbPath := seedStore(t, fixtureEntries())

	_, err := runCommand(t, NewEnableCommand(&RootOptions{Format: "text"}),
		"--app", "com.beta.draw",
		"--draw-view", "com.beta.draw.CanvasView",
		"--activity", "com.beta.draw.MainActivity",
		"--database", dbPath)
	require.NoError(t, err)

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}),
		"--database", dbPath)
	require.NoError(t, err)

	assert.Contains(t, output, "Recent operations (1):")
	assert.Contains(t, output, "enable com.beta.draw [ok]")
	assert.Contains(t, output, "    Activity: com.beta.draw.MainActivity")
	assert.Contains(t, output, "    Draw View: com.beta.draw.CanvasView")
}

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "onyx_config")

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}),
		"--database", dbPath)
	require.NoError(t, err)

	assert.Equal(t, "No operations recorded.\n", output)
}

func TestHistoryNewestFirstAndLimit(t *testing.T) {
	dbPath := seedStore(t, fixtureEntries())

	_, err := runCommand(t, NewEnableCommand(&RootOptions{Format: "text"}),
		"--app", "com.beta.draw",
		"--draw-view", "v.K",
		"--activity", "a.One",
		"--database", dbPath)
	require.NoError(t, err)

	_, err = runCommand(t, NewDisableCommand(&RootOptions{Format: "text"}),
		"--app", "com.beta.draw",
		"--database", dbPath)
	require.NoError(t, err)

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}),
		"--database", dbPath, "--limit", "1")
	require.NoError(t, err)

	assert.Contains(t, output, "Recent operations (1):")
	assert.Contains(t, output, "disable com.beta.draw [ok]")
	assert.NotContains(t, output, " enable ")
}

func TestHistoryCustomJournalPath(t *testing.T) {
	dbPath := seedStore(t, fixtureEntries())
	journalPath := filepath.Join(t.TempDir(), "ops.db")

	_, err := runCommand(t, NewEnableCommand(&RootOptions{Format: "text"}),
		"--app", "com.beta.draw",
		"--draw-view", "v.K",
		"--activity", "a.One",
		"--database", dbPath,
		"--journal", journalPath)
	require.NoError(t, err)

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}),
		"--database", dbPath, "--journal", journalPath)
	require.NoError(t, err)

	assert.Contains(t, output, "Recent operations (1):")
}

func TestHistoryJSON(t *testing.T) {
	dbPath := seedStore(t, fixtureEntries())

	_, err := runCommand(t, NewEnableCommand(&RootOptions{Format: "text"}),
		"--app", "com.beta.draw",
		"--draw-view", "com.beta.draw.CanvasView",
		"--activity", "com.beta.draw.MainActivity",
		"--database", dbPath)
	require.NoError(t, err)

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "json"}),
		"--database", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	ops, ok := data["operations"].([]interface{})
	require.True(t, ok)
	require.Len(t, ops, 1)

	op, ok := ops[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "enable", op["command"])
	assert.Equal(t, "com.beta.draw", op["package"])
	assert.Equal(t, "ok", op["outcome"])
	assert.NotEmpty(t, op["id"])
}

func TestHistoryJSONEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "onyx_config")

	output, err := runCommand(t, NewHistoryCommand(&RootOptions{Format: "json"}),
		"--database", dbPath)
	require.NoError(t, err)

	assert.Contains(t, output, `"operations":[]`)
}
