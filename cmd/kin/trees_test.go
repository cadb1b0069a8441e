package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/infrastructure/config"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	globalTree, globalLogLevel = "", "error"
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestPrintTreesEmpty(t *testing.T) {
	cmd := newTreesListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	printTrees(cmd, &config.TreesConfig{})
	assert.Contains(t, out.String(), "No trees configured.")
}

func TestTreesLifecycle(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	out, err := execute(t, "trees", "create", "Lee Family", "-d", "maternal side")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized kin")
	assert.Contains(t, out, `Created tree "Lee Family" with collection "kin_lee_family"`)
	assert.FileExists(t, config.SQLitePathForTree(dir, "Lee Family"))

	_, err = execute(t, "trees", "create", "Lee Family")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "trees", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lee Family")
	assert.Contains(t, out, "maternal side")

	_, err = execute(t, "members", "add", "--first", "Jerry", "--last", "Lee", "-t", "Lee Family")
	require.NoError(t, err)

	_, err = execute(t, "trees", "delete", "Lee Family")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains 1 members")

	out, err = execute(t, "trees", "delete", "Lee Family", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted tree")
	assert.NoDirExists(t, config.TreeDir(dir, "Lee Family"))

	trees, err := config.LoadTrees(dir)
	require.NoError(t, err)
	assert.False(t, trees.Exists("Lee Family"))
}
