package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for index chunks.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the identical ID, which lets index rebuilds
// reuse stable chunk identities across runs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FileDescriptor describes a single file in a hub's remote source.
// Fingerprint is an opaque version token (an entity tag for Graph drives);
// equality of fingerprints means the file has not changed, nothing more.
type FileDescriptor struct {
	ID           string
	Name         string
	Fingerprint  string
	Size         int64
	LastModified time.Time
	ContentRef   string // opaque handle resolved to bytes by the remote store
}

// Manifest records which remote files are represented in a hub's persisted
// index. It is the sole durable record of "what was last indexed": FileByID
// keys are exactly the ids of files incorporated into the current index.
type Manifest struct {
	HubName   string
	Files     []FileDescriptor
	FileByID  map[string]string // file id -> fingerprint
	FileCount int
	CreatedAt time.Time
}

// NewManifest builds a manifest covering the given descriptors.
func NewManifest(hubName string, files []FileDescriptor) *Manifest {
	byID := make(map[string]string, len(files))
	for _, f := range files {
		byID[f.ID] = f.Fingerprint
	}
	return &Manifest{
		HubName:   hubName,
		Files:     files,
		FileByID:  byID,
		FileCount: len(files),
		CreatedAt: time.Now().UTC(),
	}
}

// DiffResult partitions a fresh remote listing against a manifest.
// Added, Updated and Unchanged together cover the fresh listing exactly;
// Removed holds manifest ids absent from the fresh listing.
type DiffResult struct {
	Added     []FileDescriptor
	Updated   []FileDescriptor
	Removed   []string
	Unchanged []FileDescriptor
}

// Changed returns the descriptors that require fetching and extraction,
// added files first, then updated ones.
func (d *DiffResult) Changed() []FileDescriptor {
	changed := make([]FileDescriptor, 0, len(d.Added)+len(d.Updated))
	changed = append(changed, d.Added...)
	changed = append(changed, d.Updated...)
	return changed
}

// HasChanges reports whether the diff requires an index rebuild.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Updated) > 0 || len(d.Removed) > 0
}

// ExtractionOutcome is the per-file result of a fetch-extract attempt.
// Failures carry a human-readable message instead of aborting the batch.
type ExtractionOutcome struct {
	FileID       string
	Name         string
	Text         string
	Succeeded    bool
	ErrorMessage string
}

// SyncOutcome summarizes a completed hub synchronization.
type SyncOutcome struct {
	HubName         string
	ChangesDetected bool
	FilesUpdated    int // added + updated files incorporated this run
	FilesRemoved    int
	FilesFailed     int // per-file fetch/extract failures, absorbed
}
