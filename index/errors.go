package index

import "errors"

var (
	// ErrIndexNotFound indicates no persisted index exists at the given location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrChunkNotFound indicates a chunk id has no record in the store.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrDocumentNotFound indicates a file id has no corpus text in the store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNilEmbedder indicates a builder was constructed without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")
)
