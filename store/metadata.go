package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Metadata holds hub settings that are not part of the index itself.
type Metadata struct {
	SourceRef  string    `json:"source_ref"`
	AutoSync   bool      `json:"auto_sync"`
	CreatedAt  time.Time `json:"created_at"`
	LastSynced time.Time `json:"last_synced,omitempty"`
}

// SaveMetadata persists hub metadata using the same atomic replace as the
// manifest.
func (l *Layout) SaveMetadata(hubName string, meta *Metadata) error {
	if meta == nil {
		return fmt.Errorf("metadata required")
	}
	if err := l.EnsureHub(hubName); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return writeFileAtomic(l.MetadataPath(hubName), data)
}

// LoadMetadata reads hub metadata; a missing file returns (nil, nil).
func (l *Layout) LoadMetadata(hubName string) (*Metadata, error) {
	data, err := os.ReadFile(l.MetadataPath(hubName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}
