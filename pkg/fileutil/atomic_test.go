package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, AtomicWriteFile(path, []byte("hello\n"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAtomicWriteFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, AtomicWriteFile(path, []byte("new"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestAtomicWriteFileMissingDir(t *testing.T) {
	dir := t.TempDir()
	err := AtomicWriteFile(filepath.Join(dir, "nope", "config.yaml"), []byte("x"), 0o644)
	require.Error(t, err)

	// No temp droppings anywhere.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestAtomicWriteYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, AtomicWriteYAML(path, map[string]string{"version": "1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: \"1\"\n", string(data))
}

func TestAtomicWriteYAMLUnmarshalable(t *testing.T) {
	dir := t.TempDir()
	err := AtomicWriteYAML(filepath.Join(dir, "config.yaml"), func() {})
	assert.Error(t, err)
}
