package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddge/learnengine/internal/catalog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsAgainstSQLite(t *testing.T) {
	t.Setenv("EDDGE_LOG", "off")
	t.Setenv("EDDGE_CATALOG", "")
	t.Setenv("EDDGE_REDIS_URL", "")
	t.Setenv("EDDGE_DB_DRIVER", "")

	dir := t.TempDir()
	db := filepath.Join(dir, "eddge.db")
	topic := catalog.Default().All()[0].ID

	out, err := execute(t, "--db", db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded")

	out, err = execute(t, "--db", db, "topics")
	require.NoError(t, err)
	assert.Contains(t, out, topic)
	assert.Contains(t, out, "0/5")

	out, err = execute(t, "--db", db, "path", "complete", topic, topic+"-n1", "--correct", "4", "--total", "5", "--session", "s-1")
	require.NoError(t, err)
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, topic+"-n2")
	assert.Contains(t, out, "Mastery 20%")

	out, err = execute(t, "--db", db, "path", "history", topic)
	require.NoError(t, err)
	assert.Contains(t, out, topic+"-n1")
	assert.Contains(t, out, "80%")

	out, err = execute(t, "--db", db, "path", "frames", topic, topic+"-n2")
	require.NoError(t, err)
	assert.Contains(t, out, topic+"-n2")

	export := filepath.Join(dir, "export.json")
	_, err = execute(t, "--db", db, "path", "export", topic, "-o", export)
	require.NoError(t, err)
	data, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(data), topic)

	out, err = execute(t, "--db", db, "reset", topic)
	require.NoError(t, err)
	assert.Contains(t, out, "Reset "+topic)

	out, err = execute(t, "--db", db, "path", "import", export)
	require.NoError(t, err)
	assert.Contains(t, out, "mastery 20%")
}

func TestResetNeedsTopicOrAll(t *testing.T) {
	t.Setenv("EDDGE_LOG", "off")
	_, err := execute(t, "--memory", "reset")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "eddge")
}

func TestUsageByModel(t *testing.T) {
	got := usageByModel(nil)
	assert.Empty(t, got)
}
