package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultArchiveName is the local name of a downloaded archive.
	DefaultArchiveName = "generated_code.zip"
	fallbackFileName   = "generated_file.txt"
)

// Saver is the save-as side of a download: it places a blob in Dir.
type Saver struct {
	Dir string
}

// Save writes data to Dir/name and returns the final path. The bytes go to a
// transient file first; that file is closed and then either renamed into
// place or removed, so nothing is left behind on failure.
func (s Saver) Save(name string, data []byte) (string, error) {
	name = SafeName(name)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".promptly-*.part")
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	dst := filepath.Join(s.Dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	committed = true
	return dst, nil
}

// SafeName reduces name to a single path element.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return fallbackFileName
	}
	return base
}
