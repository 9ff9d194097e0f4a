package index

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/calyptra/dochub/ai"
	"github.com/calyptra/dochub/store"
)

// DefaultEmbedBatchSize is how many chunks are embedded per request.
const DefaultEmbedBatchSize = 20

// Builder rebuilds a hub's index from its full corpus. Every build is
// complete and isolated: it writes into a staging directory and promotes it
// atomically, so readers of the live index never observe a partial build and
// a failed build changes nothing.
type Builder struct {
	layout       *store.Layout
	embedder     ai.Embedder
	chunkSize    int
	chunkOverlap int
	batchSize    int
	logger       *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) BuilderOption {
	return func(b *Builder) {
		b.chunkSize = size
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks in characters.
func WithChunkOverlap(overlap int) BuilderOption {
	return func(b *Builder) {
		b.chunkOverlap = overlap
	}
}

// WithEmbedBatchSize sets how many chunks are embedded per request.
func WithEmbedBatchSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.batchSize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger.With("component", "index-builder")
		}
	}
}

// NewBuilder creates a builder writing through the given layout.
func NewBuilder(layout *store.Layout, embedder ai.Embedder, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	b := &Builder{
		layout:       layout,
		embedder:     embedder,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		batchSize:    DefaultEmbedBatchSize,
		logger:       slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Rebuild builds a fresh index over docs and promotes it to the hub's live
// index. On any error the staged build is discarded and the live index is
// left untouched. An empty docs slice produces a valid empty index.
func (b *Builder) Rebuild(ctx context.Context, hubName string, docs []Document) error {
	staging, err := b.layout.PrepareStaging(hubName)
	if err != nil {
		return fmt.Errorf("prepare staging: %w", err)
	}

	backend, err := OpenBackend(filepath.Join(staging, chunkStoreName), false)
	if err != nil {
		b.layout.DiscardStaging(hubName)
		return fmt.Errorf("open staging store: %w", err)
	}

	abort := func(cause error) error {
		backend.Close()
		b.layout.DiscardStaging(hubName)
		return cause
	}

	splitter := NewSplitter(b.chunkSize, b.chunkOverlap)
	var chunks []ChunkRecord

	for i := range docs {
		doc := &docs[i]
		if err := backend.PutDocument(doc); err != nil {
			return abort(fmt.Errorf("store document %s: %w", doc.FileID, err))
		}
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		pieces, err := splitter.Split(doc.Text)
		if err != nil {
			return abort(fmt.Errorf("split %s: %w", doc.Name, err))
		}
		for ordinal, piece := range pieces {
			chunks = append(chunks, ChunkRecord{
				ID:       chunkID(doc.FileID, ordinal, piece),
				FileID:   doc.FileID,
				FileName: doc.Name,
				Text:     piece,
			})
		}
	}

	b.logger.Info("building index", "hub", hubName, "documents", len(docs), "chunks", len(chunks))

	vectors := NewVectorIndex()
	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		embeddings, err := b.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return abort(fmt.Errorf("embed batch at %d: %w", start, err))
		}
		if len(embeddings) != len(batch) {
			return abort(fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(batch)))
		}

		for i := range batch {
			vectors.Add(batch[i].ID, embeddings[i])
		}
	}

	if err := backend.PutChunks(chunks); err != nil {
		return abort(fmt.Errorf("store chunks: %w", err))
	}
	if err := vectors.Save(filepath.Join(staging, vectorsFileName)); err != nil {
		return abort(fmt.Errorf("save vectors: %w", err))
	}
	if err := backend.Close(); err != nil {
		b.layout.DiscardStaging(hubName)
		return fmt.Errorf("close staging store: %w", err)
	}

	if err := b.layout.SwapIndex(hubName); err != nil {
		b.layout.DiscardStaging(hubName)
		return fmt.Errorf("swap index: %w", err)
	}

	b.logger.Info("index rebuilt", "hub", hubName, "chunks", len(chunks))
	return nil
}
