package query

import "errors"

var (
	// ErrBlankQuestion indicates the question was empty or whitespace.
	ErrBlankQuestion = errors.New("question must not be blank")

	// ErrNilEmbedder indicates an engine was constructed without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")

	// ErrNilGenerator indicates an engine was constructed without a generator.
	ErrNilGenerator = errors.New("generator is required")

	// ErrNilSearcher indicates an engine was constructed without an index.
	ErrNilSearcher = errors.New("searcher is required")
)
