// Package query answers natural-language questions against a hub's index.
//
// An Engine embeds the question, retrieves the nearest chunks from the
// hub's vector index, and asks the generator for an answer grounded in
// that context. Retrieved chunks are reported back as sources.
package query

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/calyptra/dochub/ai"
	"github.com/calyptra/dochub/index"
)

// DefaultRetrieverK is how many chunks are retrieved per question.
const DefaultRetrieverK = 6

// Searcher is the slice of an index handle the engine needs.
type Searcher interface {
	Search(query []float32, k int) ([]index.SearchHit, error)
}

// Source identifies a file that contributed context to an answer.
type Source struct {
	FileID   string
	FileName string
	Snippet  string
	Distance float32
}

// Answer is the result of one question against a hub.
type Answer struct {
	HubName   string
	Question  string
	Text      string
	Sources   []Source
	CreatedAt time.Time
}

// Engine answers questions for a single hub.
type Engine struct {
	hubName   string
	embedder  ai.Embedder
	generator ai.Generator
	searcher  Searcher
	k         int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetrieverK sets how many chunks are retrieved per question.
func WithRetrieverK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.With("component", "query-engine")
		}
	}
}

// NewEngine creates a query engine over one hub's index.
func NewEngine(hubName string, embedder ai.Embedder, generator ai.Generator, searcher Searcher, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if searcher == nil {
		return nil, ErrNilSearcher
	}

	e := &Engine{
		hubName:   hubName,
		embedder:  embedder,
		generator: generator,
		searcher:  searcher,
		k:         DefaultRetrieverK,
		logger:    slog.Default().With("component", "query-engine", "hub", hubName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Answer retrieves context for the question and generates a grounded answer.
func (e *Engine) Answer(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrBlankQuestion
	}

	queryVec, err := e.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := e.searcher.Search(queryVec, e.k)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("retrieved context", "question_length", len(question), "hits", len(hits))

	text, err := e.generator.Generate(ctx, renderPrompt(hits, question))
	if err != nil {
		return nil, err
	}

	return &Answer{
		HubName:   e.hubName,
		Question:  question,
		Text:      text,
		Sources:   collectSources(hits),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// collectSources deduplicates hits by file, keeping the best-ranked chunk
// per file in retrieval order.
func collectSources(hits []index.SearchHit) []Source {
	seen := make(map[string]bool, len(hits))
	sources := make([]Source, 0, len(hits))
	for _, hit := range hits {
		if seen[hit.Chunk.FileID] {
			continue
		}
		seen[hit.Chunk.FileID] = true
		sources = append(sources, Source{
			FileID:   hit.Chunk.FileID,
			FileName: hit.Chunk.FileName,
			Snippet:  snippet(hit.Chunk.Text, 200),
			Distance: hit.Distance,
		})
	}
	return sources
}

func snippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
