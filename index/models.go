package index

import (
	"fmt"

	"github.com/calyptra/dochub/core"
)

// ChunkRecord is one indexed slice of a document, stored next to its
// embedding so search hits can be resolved back to text and provenance.
type ChunkRecord struct {
	ID       core.ID
	FileID   string
	FileName string
	Text     string
}

// Document is the extracted text of one remote file, the unit the corpus
// store persists and the builder re-chunks on every rebuild.
type Document struct {
	FileID string
	Name   string
	Text   string
}

// SearchHit pairs a chunk with its distance from the query vector.
// Smaller distances are better matches.
type SearchHit struct {
	Chunk    ChunkRecord
	Distance float32
}

// chunkID derives a stable chunk identity from the chunk's position and
// content. Re-chunking unchanged text yields the same ids, and two files
// containing identical text never collide.
func chunkID(fileID string, ordinal int, text string) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s\x00%d\x00%s", fileID, ordinal, text))
}
