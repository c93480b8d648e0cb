// Package zip builds in-memory archives for download endpoints.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one file inside the archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive writes the entries into a zip held entirely in memory. Entry order
// is preserved.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
