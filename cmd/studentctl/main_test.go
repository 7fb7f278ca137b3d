package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAnalyze(t *testing.T) {
	path := writeFile(t, "students.csv", "الاسم,الرقم القومي,ملاحظات\nA,1,x\n")

	out, err := runCLI(t, "analyze", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows (csv)")
	assert.Contains(t, out, "nationalId")
	assert.Contains(t, out, "الرقمالقومي")
}

func TestImportAndGroups(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "students.db"))

	path := writeFile(t, "students.csv", "name,national_id\nA,1\n,,\nB,1\n")

	out, err := runCLI(t, "import", "--file", path, "--group", "batch")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 2 rows into group 1 (csv)")
	assert.Contains(t, out, "0 skipped, 1 failed")

	out, err = runCLI(t, "groups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "batch")

	out, err = runCLI(t, "groups", "delete", "--id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted group 1")

	_, err = runCLI(t, "groups", "delete", "--id", "1")
	assert.EqualError(t, err, "group 1 not found")
}

func TestImportRequiresFlags(t *testing.T) {
	_, err := runCLI(t, "import", "--file", "x.csv")
	assert.Error(t, err)
}
