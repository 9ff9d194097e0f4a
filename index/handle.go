package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// chunkStoreName is the Badger directory inside an index directory.
const chunkStoreName = "store"

// Handle is an opened live index: the chunk/corpus store plus the vector
// graph, loaded fully into memory for search. Safe for concurrent use.
type Handle struct {
	backend *Backend
	vectors *VectorIndex
	logger  *slog.Logger
}

// OpenHandle opens the index at dir. Returns ErrIndexNotFound when the
// directory does not exist or holds no vector graph.
func OpenHandle(dir string) (*Handle, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
	}

	vectorPath := filepath.Join(dir, vectorsFileName)
	vectors, err := LoadVectorIndex(vectorPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
		}
		return nil, err
	}

	backend, err := OpenBackend(filepath.Join(dir, chunkStoreName), false)
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}

	return &Handle{
		backend: backend,
		vectors: vectors,
		logger:  slog.Default().With("component", "index-handle"),
	}, nil
}

// Search returns up to k chunks nearest to the query vector, closest first.
func (h *Handle) Search(query []float32, k int) ([]SearchHit, error) {
	ids, distances := h.vectors.Search(query, k)

	hits := make([]SearchHit, 0, len(ids))
	for i, id := range ids {
		chunk, err := h.backend.GetChunk(id)
		if err != nil {
			// A graph node without a stored chunk means a corrupt build.
			return nil, err
		}
		hits = append(hits, SearchHit{Chunk: *chunk, Distance: distances[i]})
	}
	return hits, nil
}

// Document returns the stored corpus text for a file id.
func (h *Handle) Document(fileID string) (*Document, error) {
	return h.backend.GetDocument(fileID)
}

// Documents returns every corpus document in the index.
func (h *Handle) Documents() ([]Document, error) {
	var docs []Document
	err := h.backend.IterateDocuments(func(doc *Document) error {
		docs = append(docs, *doc)
		return nil
	})
	return docs, err
}

// ChunkCount returns the number of indexed chunks.
func (h *Handle) ChunkCount() int {
	return h.vectors.Len()
}

// Close releases the underlying store.
func (h *Handle) Close() error {
	return h.backend.Close()
}
