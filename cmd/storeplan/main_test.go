package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/storeplan-api/pkg/tools"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPJPCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "routes.csv")
	require.NoError(t, os.WriteFile(in, []byte("Plan,Store 1\nNorth,A\nSouth,B\n"), 0o644))

	out, err := execute(t, "pjp", "--month", "2024-03", "--out", dir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "PJP_03_2024.xlsx")
	assert.Contains(t, out, "fairness score")
	assert.FileExists(t, filepath.Join(dir, "PJP_03_2024.xlsx"))
}

func TestLookupCommandMissingInput(t *testing.T) {
	_, err := execute(t, "lookup", "--catalogue", "catalogue.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrMissingInput)
}

func TestConcatCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("Item\nSoap\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("Item\nRice\n"), 0o644))

	out, err := execute(t, "concat", "-o", dir, a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows")
	assert.FileExists(t, filepath.Join(dir, "concatenated_output.xlsx"))
}

func TestKeygenCommand(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "master")
	t.Setenv("JWT_SECRET", "jwt")
	out, err := execute(t, "keygen", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated Key for ops:\nops.")
}

func TestKeygenRequiresSecret(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "")
	_, err := execute(t, "keygen", "ops")
	assert.Error(t, err)
}
