package procutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAliveSelf(t *testing.T) {
	assert.Equal(t, os.Getpid(), CheckAlive(os.Getpid()))
}

func TestCheckAliveDead(t *testing.T) {
	// A pid this large is vanishingly unlikely to be alive in any test
	// environment; the liveness probe must report 0 (ESRCH), not error out.
	assert.Equal(t, 0, CheckAlive(1<<30))
}

func TestCheckAliveZeroIsNotAlive(t *testing.T) {
	assert.Equal(t, 0, CheckAlive(0))
}

func TestGetPidFromFileMissing(t *testing.T) {
	dir := t.TempDir()
	pid, err := GetPidFromFile(filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, pid)
}

func TestWriteReadRemovePidfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pid")

	require.NoError(t, WritePidfile(4242, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4242\n", string(data))

	pid, err := GetPidFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	require.NoError(t, RemovePidfile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing an already-absent pidfile is not an error.
	require.NoError(t, RemovePidfile(path))
}

func TestGetPidFromFileGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))

	_, err := GetPidFromFile(path)
	assert.Error(t, err)
}

func TestGetPidFromFileToleratesWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pid")
	require.NoError(t, os.WriteFile(path, []byte("  123  \n"), 0o644))

	pid, err := GetPidFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 123, pid)
}
