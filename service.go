package dochub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calyptra/dochub/ai"
	"github.com/calyptra/dochub/ai/openai"
	"github.com/calyptra/dochub/core"
	"github.com/calyptra/dochub/extract"
	"github.com/calyptra/dochub/hub"
	"github.com/calyptra/dochub/index"
	"github.com/calyptra/dochub/ingest"
	"github.com/calyptra/dochub/query"
	"github.com/calyptra/dochub/remote"
	"github.com/calyptra/dochub/store"
)

// Service wires the whole synchronization pipeline together: remote listing,
// manifest diffing, bounded fetch-extract, index rebuilds, the loaded-hub
// registry and question answering. One Service manages many hubs under a
// single persistence root.
type Service struct {
	cfg       *Config
	layout    *store.Layout
	remote    remote.Store
	provider  ai.Provider
	embedder  ai.Embedder
	extractor *extract.Extractor
	engine    *ingest.Engine
	builder   *index.Builder
	registry  *hub.Registry
	logger    *slog.Logger

	mu       sync.Mutex
	hubLocks map[string]*sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithProvider replaces the default OpenAI-backed AI provider.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(s *Service) {
		s.provider = provider
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.With("component", "service")
		}
	}
}

// NewService creates a service persisting under cfg.PersistDir and reading
// documents from remoteStore. A nil cfg uses DefaultConfig.
func NewService(cfg *Config, remoteStore remote.Store, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if remoteStore == nil {
		return nil, ErrNilRemoteStore
	}

	layout, err := store.NewLayout(cfg.PersistDir)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		layout:   layout,
		remote:   remoteStore,
		registry: hub.NewRegistry(),
		logger:   slog.Default().With("component", "service"),
		hubLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.provider == nil {
		provider, err := openai.NewProvider(cfg.aiConfig())
		if err != nil {
			return nil, err
		}
		s.provider = provider
	}
	s.embedder = ai.NewCachedEmbedder(s.provider.Embedder(), cfg.EmbeddingCacheSize)
	s.extractor = extract.NewExtractor(extract.WithLogger(s.logger))

	s.engine, err = ingest.NewEngine(
		ingest.WithBatchSize(cfg.BatchSize),
		ingest.WithWorkers(cfg.Workers),
		ingest.WithLogger(s.logger),
	)
	if err != nil {
		s.provider.Close()
		return nil, err
	}

	s.builder, err = index.NewBuilder(layout, s.embedder,
		index.WithChunkSize(cfg.ChunkSize),
		index.WithChunkOverlap(cfg.ChunkOverlap),
		index.WithEmbedBatchSize(cfg.BatchSize),
		index.WithLogger(s.logger),
	)
	if err != nil {
		s.engine.Release()
		s.provider.Close()
		return nil, err
	}

	return s, nil
}

// hubLock returns the per-hub mutex, creating it on first use. Syncs of
// the same hub serialize; different hubs proceed independently.
func (s *Service) hubLock(hubName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.hubLocks[hubName]
	if !ok {
		lock = &sync.Mutex{}
		s.hubLocks[hubName] = lock
	}
	return lock
}

// RunSync reconciles a hub against a fresh remote listing. When the diff
// shows changes it fetches and extracts only the changed files, rebuilds
// the index over the full corpus, and replaces the manifest. Per-file
// failures are absorbed; failed files stay out of the manifest so the next
// sync retries them.
func (s *Service) RunSync(ctx context.Context, hubName string, fresh []core.FileDescriptor, force bool) (*core.SyncOutcome, error) {
	if err := core.ValidateHubName(hubName); err != nil {
		return nil, err
	}

	lock := s.hubLock(hubName)
	lock.Lock()
	defer lock.Unlock()

	manifest, err := s.layout.LoadManifest(hubName)
	if err != nil {
		return nil, err
	}

	diff, err := core.Diff(manifest, fresh, force)
	if err != nil {
		return nil, err
	}

	outcome := &core.SyncOutcome{HubName: hubName}
	if !diff.HasChanges() {
		s.logger.Info("no changes detected", "hub", hubName, "files", len(fresh))
		return outcome, nil
	}
	outcome.ChangesDetected = true
	outcome.FilesRemoved = len(diff.Removed)

	changed := diff.Changed()
	s.logger.Info("sync starting", "hub", hubName,
		"added", len(diff.Added), "updated", len(diff.Updated),
		"removed", len(diff.Removed), "unchanged", len(diff.Unchanged))

	result, err := s.engine.Process(ctx, changed, s.remote.Fetch, s.extractor.Extract)
	if err != nil {
		return nil, err
	}
	outcome.FilesUpdated = result.Succeeded
	outcome.FilesFailed = result.Failed()

	docs, manifestFiles, err := s.assembleCorpus(hubName, diff, changed, result)
	if err != nil {
		return nil, err
	}

	if err := s.builder.Rebuild(ctx, hubName, docs); err != nil {
		return nil, err
	}
	if err := s.layout.SaveManifest(core.NewManifest(hubName, manifestFiles)); err != nil {
		return nil, err
	}

	if s.registry.Get(hubName) != nil {
		if err := s.reloadHub(hubName); err != nil {
			s.logger.Error("failed to reload hub after sync", "hub", hubName, "err", err)
		}
	}

	s.logger.Info("sync complete", "hub", hubName,
		"updated", outcome.FilesUpdated, "removed", outcome.FilesRemoved,
		"failed", outcome.FilesFailed)
	return outcome, nil
}

// assembleCorpus builds the full document set for the next index: extracted
// text for files that changed this run, plus text carried over from the
// previous index for unchanged files. The returned descriptors are exactly
// the files the new manifest should cover.
func (s *Service) assembleCorpus(hubName string, diff *core.DiffResult, changed []core.FileDescriptor, result *ingest.Result) ([]index.Document, []core.FileDescriptor, error) {
	docs := make([]index.Document, 0, len(diff.Unchanged)+result.Succeeded)
	manifestFiles := make([]core.FileDescriptor, 0, len(diff.Unchanged)+result.Succeeded)

	changedByID := make(map[string]core.FileDescriptor, len(changed))
	for _, f := range changed {
		changedByID[f.ID] = f
	}
	for _, o := range result.Outcomes {
		if !o.Succeeded {
			continue
		}
		docs = append(docs, index.Document{FileID: o.FileID, Name: o.Name, Text: o.Text})
		manifestFiles = append(manifestFiles, changedByID[o.FileID])
	}

	if len(diff.Unchanged) == 0 {
		return docs, manifestFiles, nil
	}

	handle, closeHandle, err := s.corpusHandle(hubName)
	if err != nil {
		return nil, nil, fmt.Errorf("open previous index for corpus: %w", err)
	}
	defer closeHandle()

	for _, f := range diff.Unchanged {
		doc, err := handle.Document(f.ID)
		if err != nil {
			if errors.Is(err, index.ErrDocumentNotFound) {
				// No stored text, so drop it from the manifest and let the
				// next sync fetch it as an added file.
				s.logger.Warn("unchanged file missing from corpus", "hub", hubName, "file", f.Name)
				continue
			}
			return nil, nil, err
		}
		docs = append(docs, *doc)
		manifestFiles = append(manifestFiles, f)
	}
	return docs, manifestFiles, nil
}

// corpusHandle returns a handle on the hub's current index for corpus reads.
// A loaded hub's open handle is reused; otherwise a throwaway one is opened.
func (s *Service) corpusHandle(hubName string) (*index.Handle, func(), error) {
	if lh := s.registry.Get(hubName); lh != nil {
		if handle, ok := lh.Handle.(*index.Handle); ok {
			return handle, func() {}, nil
		}
	}
	handle, err := index.OpenHandle(s.layout.IndexDir(hubName))
	if err != nil {
		return nil, nil, err
	}
	return handle, func() { handle.Close() }, nil
}

// Sync lists the hub's recorded source and reconciles against it.
func (s *Service) Sync(ctx context.Context, hubName string, force bool) (*core.SyncOutcome, error) {
	if err := core.ValidateHubName(hubName); err != nil {
		return nil, err
	}

	meta, err := s.layout.LoadMetadata(hubName)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.SourceRef == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, hubName)
	}

	fresh, err := s.remote.List(ctx, meta.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("list source: %w", err)
	}

	outcome, err := s.RunSync(ctx, hubName, fresh, force)
	if err != nil {
		return nil, err
	}

	meta.LastSynced = time.Now().UTC()
	if err := s.layout.SaveMetadata(hubName, meta); err != nil {
		s.logger.Warn("failed to record sync time", "hub", hubName, "err", err)
	}
	return outcome, nil
}

// Ingest performs a hub's first ingestion: records the source, force-syncs
// everything the source lists, and loads the hub for querying.
func (s *Service) Ingest(ctx context.Context, hubName, sourceRef string) (*core.SyncOutcome, error) {
	if err := core.ValidateHubName(hubName); err != nil {
		return nil, err
	}

	fresh, err := s.remote.List(ctx, sourceRef)
	if err != nil {
		return nil, fmt.Errorf("list source: %w", err)
	}

	meta := &store.Metadata{
		SourceRef: sourceRef,
		AutoSync:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.layout.SaveMetadata(hubName, meta); err != nil {
		return nil, err
	}

	outcome, err := s.RunSync(ctx, hubName, fresh, true)
	if err != nil {
		return nil, err
	}

	meta.LastSynced = time.Now().UTC()
	if err := s.layout.SaveMetadata(hubName, meta); err != nil {
		s.logger.Warn("failed to record sync time", "hub", hubName, "err", err)
	}

	if err := s.LoadHub(ctx, hubName); err != nil {
		return nil, err
	}
	return outcome, nil
}

// LoadHub opens the hub's persisted index and makes it queryable. Loading
// an already-loaded hub is a no-op.
func (s *Service) LoadHub(ctx context.Context, hubName string) error {
	if err := core.ValidateHubName(hubName); err != nil {
		return err
	}
	if s.registry.Get(hubName) != nil {
		return nil
	}
	if !s.layout.HubExists(hubName) {
		return fmt.Errorf("%w: %s", store.ErrHubNotFound, hubName)
	}
	return s.openAndRegister(hubName)
}

// reloadHub swaps a loaded hub's registry entry onto the freshly built
// index. The old handle is closed before reopening because the index store
// allows a single live handle per directory.
func (s *Service) reloadHub(hubName string) error {
	s.registry.Remove(hubName)
	return s.openAndRegister(hubName)
}

func (s *Service) openAndRegister(hubName string) error {
	handle, err := index.OpenHandle(s.layout.IndexDir(hubName))
	if err != nil {
		return err
	}

	engine, err := query.NewEngine(hubName, s.embedder, s.provider.Generator(), handle,
		query.WithRetrieverK(s.cfg.RetrieverK))
	if err != nil {
		handle.Close()
		return err
	}

	s.registry.Set(hubName, engine, handle)
	s.logger.Info("hub loaded", "hub", hubName, "chunks", handle.ChunkCount())
	return nil
}

// UnloadHub evicts a hub from the registry, leaving persisted data intact.
func (s *Service) UnloadHub(hubName string) error {
	if s.registry.Get(hubName) == nil {
		return fmt.Errorf("%w: %s", ErrHubNotLoaded, hubName)
	}
	s.registry.Remove(hubName)
	return nil
}

// Query answers a question against a loaded hub.
func (s *Service) Query(ctx context.Context, hubName, question string) (*query.Answer, error) {
	lh := s.registry.Get(hubName)
	if lh == nil {
		return nil, fmt.Errorf("%w: %s", ErrHubNotLoaded, hubName)
	}
	engine, ok := lh.Engine.(*query.Engine)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no query engine", ErrHubNotLoaded, hubName)
	}
	return engine.Answer(ctx, question)
}

// ListHubs returns the names of all hubs with persisted state.
func (s *Service) ListHubs() ([]string, error) {
	return s.layout.ListHubs()
}

// LoadedHubs returns the names of hubs currently loaded for querying.
func (s *Service) LoadedHubs() []string {
	return s.registry.ListLoaded()
}

// DeleteHub evicts a hub and removes all of its persisted data.
func (s *Service) DeleteHub(hubName string) error {
	if err := core.ValidateHubName(hubName); err != nil {
		return err
	}
	s.registry.Remove(hubName)
	return s.layout.DeleteHub(hubName)
}

// Close releases every loaded hub, the worker pool and the AI provider.
func (s *Service) Close() error {
	s.registry.Clear()
	s.engine.Release()
	return s.provider.Close()
}
