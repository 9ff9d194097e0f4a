package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/calyptra/dochub/core"
)

// manifestWire is the on-disk manifest shape. The key names are fixed for
// compatibility with existing hub data: files, map, count, created_at.
type manifestWire struct {
	Files     []fileWire        `json:"files"`
	Map       map[string]string `json:"map"`
	Count     int               `json:"count"`
	CreatedAt string            `json:"created_at"`
}

type fileWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ETag         string `json:"etag"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModifiedDateTime"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
}

// SaveManifest persists the manifest for a hub. The write goes to a temp
// file first and is renamed into place, so readers never observe a partial
// manifest and a failed write leaves the previous manifest untouched.
func (l *Layout) SaveManifest(manifest *core.Manifest) error {
	if manifest == nil {
		return fmt.Errorf("manifest required")
	}
	if err := l.EnsureHub(manifest.HubName); err != nil {
		return err
	}

	wire := manifestWire{
		Files:     make([]fileWire, 0, len(manifest.Files)),
		Map:       manifest.FileByID,
		Count:     manifest.FileCount,
		CreatedAt: manifest.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, f := range manifest.Files {
		wire.Files = append(wire.Files, fileWire{
			ID:           f.ID,
			Name:         f.Name,
			ETag:         f.Fingerprint,
			Size:         f.Size,
			LastModified: f.LastModified.UTC().Format(time.RFC3339),
			DownloadURL:  f.ContentRef,
		})
	}

	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	return writeFileAtomic(l.ManifestPath(manifest.HubName), data)
}

// LoadManifest reads a hub's persisted manifest. A missing manifest is not
// an error: it returns (nil, nil), meaning the hub has never been ingested.
func (l *Layout) LoadManifest(hubName string) (*core.Manifest, error) {
	data, err := os.ReadFile(l.ManifestPath(hubName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var wire manifestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	manifest := &core.Manifest{
		HubName:   hubName,
		FileByID:  wire.Map,
		FileCount: wire.Count,
	}
	if manifest.FileByID == nil {
		manifest.FileByID = make(map[string]string)
	}
	if wire.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, wire.CreatedAt); err == nil {
			manifest.CreatedAt = ts
		}
	}
	for _, f := range wire.Files {
		fd := core.FileDescriptor{
			ID:          f.ID,
			Name:        f.Name,
			Fingerprint: f.ETag,
			Size:        f.Size,
			ContentRef:  f.DownloadURL,
		}
		if f.LastModified != "" {
			if ts, err := time.Parse(time.RFC3339, f.LastModified); err == nil {
				fd.LastModified = ts
			}
		}
		manifest.Files = append(manifest.Files, fd)
	}

	return manifest, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
