package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaverSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	s := Saver{Dir: dir}

	path, err := s.Save(DefaultArchiveName, []byte("zip-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "generated_code.zip"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no transient file may remain")
}

func TestSaverOverwrites(t *testing.T) {
	s := Saver{Dir: t.TempDir()}
	_, err := s.Save("App.js", []byte("one"))
	require.NoError(t, err)
	path, err := s.Save("App.js", []byte("two"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestSaverCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	// a directory in the way makes the final rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "App.js", "child"), 0o755))

	_, err := Saver{Dir: dir}.Save("App.js", []byte("x"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "App.js", entries[0].Name())
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"App.js":             "App.js",
		"src/App.js":         "App.js",
		"../../etc/passwd":   "passwd",
		`..\windows\win.ini`: "win.ini",
		"":                   "generated_file.txt",
		"/":                  "generated_file.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), "SafeName(%q)", in)
	}
}
