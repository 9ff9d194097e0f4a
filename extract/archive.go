package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// extractArchive expands a ZIP archive and extracts each entry recursively,
// concatenating results with a blank-line separator. An inner entry that
// fails to decode is skipped rather than failing the enclosing archive.
func (e *Extractor) extractArchive(data []byte, depth int) (string, error) {
	if depth >= e.maxArchiveDepth {
		return "", fmt.Errorf("archive nesting exceeds %d levels", e.maxArchiveDepth)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}

	var parts []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		inner, err := readArchiveEntry(f)
		if err != nil {
			e.logger.Warn("skipping unreadable archive entry", "entry", f.Name, "err", err)
			continue
		}
		text, err := e.extract(inner, f.Name, depth+1)
		if err != nil {
			e.logger.Warn("skipping undecodable archive entry", "entry", f.Name, "err", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

func readArchiveEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
