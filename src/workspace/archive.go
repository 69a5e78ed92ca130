package workspace

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

// WriteArchive zips the current content of every file, edits included, in
// generation order.
func (s *Store) WriteArchive(w io.Writer) error {
	return WriteFiles(w, s.Files())
}

// WriteFiles zips files in the given order under their workspace paths.
func WriteFiles(w io.Writer, files []GeneratedFile) error {
	zw := zip.NewWriter(w)
	now := time.Now()
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive %s: %w", f.Path, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// ArchiveBytes is WriteArchive into memory.
func (s *Store) ArchiveBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteArchive(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
