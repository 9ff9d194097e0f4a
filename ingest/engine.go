package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/calyptra/dochub/core"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultBatchSize      = 20
	defaultWorkers        = 10
	defaultItemTimeout    = 2 * time.Minute
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// FetchFunc resolves an opaque content reference to raw bytes.
type FetchFunc func(ctx context.Context, contentRef string) ([]byte, error)

// ExtractFunc converts raw bytes into text; false means extraction failed.
type ExtractFunc func(data []byte, filename string) (string, bool)

// Result aggregates one Process run. Outcomes holds one entry per input file
// in submission order; Combined joins the successful texts with blank lines.
type Result struct {
	Outcomes  []core.ExtractionOutcome
	Combined  string
	Succeeded int
	Total     int
}

// Failed returns the number of files that contributed no text.
func (r *Result) Failed() int {
	return r.Total - r.Succeeded
}

// Engine downloads and extracts files under bounded concurrency.
type Engine struct {
	pool           *ants.Pool
	batchSize      int
	itemTimeout    time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithBatchSize sets how many files are dispatched per sequential batch.
// Default is 20.
func WithBatchSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithWorkers sets the worker pool width, bounding in-flight downloads
// within a batch. Default is 10.
func WithWorkers(workers int) Option {
	return func(e *Engine) error {
		if workers < 1 {
			workers = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(workers)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithItemTimeout bounds the fetch+extract time of a single file. A timed-out
// item is treated exactly like a failed item. Default is 2 minutes.
func WithItemTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout > 0 {
			e.itemTimeout = timeout
		}
		return nil
	}
}

// WithRetries configures per-item fetch retries with exponential backoff.
func WithRetries(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Engine) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		e.maxRetries = maxAttempts
		if baseDelay > 0 {
			e.retryBaseDelay = baseDelay
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a fetch-extract engine with its own worker pool.
func NewEngine(opts ...Option) (*Engine, error) {
	pool, err := ants.NewPool(defaultWorkers)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		pool:           pool,
		batchSize:      defaultBatchSize,
		itemTimeout:    defaultItemTimeout,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}

	return e, nil
}

// Release shuts down the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Process fetches and extracts every file, batch by batch. Individual
// failures are absorbed into their outcome; the returned error covers only
// misuse (nil callbacks).
func (e *Engine) Process(ctx context.Context, files []core.FileDescriptor, fetch FetchFunc, extract ExtractFunc) (*Result, error) {
	if fetch == nil {
		return nil, ErrNilFetchFunc
	}
	if extract == nil {
		return nil, ErrNilExtractFunc
	}

	result := &Result{
		Outcomes: make([]core.ExtractionOutcome, len(files)),
		Total:    len(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	totalBatches := (len(files) + e.batchSize - 1) / e.batchSize
	e.logger.Info("processing files", "files", len(files), "batches", totalBatches)

	for start := 0; start < len(files); start += e.batchSize {
		end := start + e.batchSize
		if end > len(files) {
			end = len(files)
		}
		e.logger.Info("processing batch", "batch", start/e.batchSize+1, "of", totalBatches, "size", end-start)
		e.processBatch(ctx, files[start:end], result.Outcomes[start:end], fetch, extract)
	}

	var texts []string
	for _, outcome := range result.Outcomes {
		if outcome.Succeeded && strings.TrimSpace(outcome.Text) != "" {
			result.Succeeded++
			texts = append(texts, outcome.Text)
		}
	}
	result.Combined = strings.Join(texts, "\n\n")

	e.logger.Info("extraction complete", "succeeded", result.Succeeded, "total", result.Total)
	return result, nil
}

// processBatch dispatches one batch to the worker pool and waits for it.
// Each outcome slot is written by exactly one worker, so no lock is needed.
func (e *Engine) processBatch(ctx context.Context, batch []core.FileDescriptor, outcomes []core.ExtractionOutcome, fetch FetchFunc, extract ExtractFunc) {
	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		file := batch[i]
		slot := &outcomes[i]
		if err := e.pool.Submit(func() {
			defer wg.Done()
			*slot = e.processFile(ctx, file, fetch, extract)
		}); err != nil {
			wg.Done()
			*slot = failedOutcome(file, fmt.Errorf("submit to pool: %w", err))
			e.logger.Error("failed to schedule file", "file", file.Name, "err", err)
		}
	}
	wg.Wait()
}

func (e *Engine) processFile(ctx context.Context, file core.FileDescriptor, fetch FetchFunc, extract ExtractFunc) core.ExtractionOutcome {
	itemCtx, cancel := context.WithTimeout(ctx, e.itemTimeout)
	defer cancel()

	if file.ContentRef == "" {
		e.logger.Warn("no content reference for file", "file", file.Name)
		return failedOutcome(file, fmt.Errorf("no content reference"))
	}

	var data []byte
	err := retryWithBackoff(itemCtx, func() error {
		var fetchErr error
		data, fetchErr = fetch(itemCtx, file.ContentRef)
		return fetchErr
	}, e.maxRetries, e.retryBaseDelay)
	if err != nil {
		e.logger.Warn("fetch failed", "file", file.Name, "err", err)
		return failedOutcome(file, fmt.Errorf("fetch: %w", err))
	}

	text, ok := extract(data, file.Name)
	if !ok {
		e.logger.Warn("extraction failed", "file", file.Name)
		return core.ExtractionOutcome{
			FileID:       file.ID,
			Name:         file.Name,
			Text:         text, // placeholder describing the failure
			Succeeded:    false,
			ErrorMessage: text,
		}
	}

	e.logger.Debug("processed file", "file", file.Name, "chars", len(text))
	return core.ExtractionOutcome{
		FileID:    file.ID,
		Name:      file.Name,
		Text:      text,
		Succeeded: true,
	}
}

func failedOutcome(file core.FileDescriptor, err error) core.ExtractionOutcome {
	return core.ExtractionOutcome{
		FileID:       file.ID,
		Name:         file.Name,
		Succeeded:    false,
		ErrorMessage: err.Error(),
	}
}
