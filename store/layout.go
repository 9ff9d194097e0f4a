package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

const (
	manifestFile = "manifest.json"
	metadataFile = "metadata.json"
	indexDirName = "index"
	stagingName  = "index.staging"
	retiredName  = "index.old"
)

// Layout resolves hub names to their on-disk locations under a single
// persistence root and provides hub-level listing and deletion.
type Layout struct {
	root   string
	logger *slog.Logger
}

// Option configures a Layout.
type Option func(*Layout)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Layout) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLayout creates the persistence root if needed and returns a layout
// rooted there.
func NewLayout(root string, opts ...Option) (*Layout, error) {
	if root == "" {
		return nil, fmt.Errorf("persistence root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create persistence root: %w", err)
	}
	l := &Layout{
		root:   root,
		logger: slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the persistence root directory.
func (l *Layout) Root() string { return l.root }

// HubDir returns the directory holding a hub's persisted state.
func (l *Layout) HubDir(hubName string) string {
	return filepath.Join(l.root, hubName)
}

// ManifestPath returns the hub's manifest file location.
func (l *Layout) ManifestPath(hubName string) string {
	return filepath.Join(l.HubDir(hubName), manifestFile)
}

// MetadataPath returns the hub's metadata file location.
func (l *Layout) MetadataPath(hubName string) string {
	return filepath.Join(l.HubDir(hubName), metadataFile)
}

// IndexDir returns the hub's live index directory.
func (l *Layout) IndexDir(hubName string) string {
	return filepath.Join(l.HubDir(hubName), indexDirName)
}

// StagingIndexDir returns the location index builds write to before the swap.
func (l *Layout) StagingIndexDir(hubName string) string {
	return filepath.Join(l.HubDir(hubName), stagingName)
}

// EnsureHub creates the hub directory if it does not exist.
func (l *Layout) EnsureHub(hubName string) error {
	if err := os.MkdirAll(l.HubDir(hubName), 0o755); err != nil {
		return fmt.Errorf("create hub directory: %w", err)
	}
	return nil
}

// HubExists reports whether the hub has a persisted index.
func (l *Layout) HubExists(hubName string) bool {
	info, err := os.Stat(l.IndexDir(hubName))
	return err == nil && info.IsDir()
}

// ListHubs returns the names of all hubs with persisted state, sorted.
func (l *Layout) ListHubs() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read persistence root: %w", err)
	}
	var hubs []string
	for _, entry := range entries {
		if entry.IsDir() {
			hubs = append(hubs, entry.Name())
		}
	}
	sort.Strings(hubs)
	return hubs, nil
}

// DeleteHub removes a hub and all of its persisted data.
func (l *Layout) DeleteHub(hubName string) error {
	dir := l.HubDir(hubName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrHubNotFound, hubName)
	}
	l.logger.Info("deleting hub data", "hub", hubName, "dir", dir)
	return os.RemoveAll(dir)
}

// PrepareStaging clears any leftover staging directory from an aborted build
// and returns a fresh staging path for the hub.
func (l *Layout) PrepareStaging(hubName string) (string, error) {
	if err := l.EnsureHub(hubName); err != nil {
		return "", err
	}
	staging := l.StagingIndexDir(hubName)
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clear stale staging: %w", err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging: %w", err)
	}
	return staging, nil
}

// DiscardStaging removes a staged index directory after a failed build.
func (l *Layout) DiscardStaging(hubName string) {
	if err := os.RemoveAll(l.StagingIndexDir(hubName)); err != nil {
		l.logger.Warn("failed to discard staging directory", "hub", hubName, "err", err)
	}
}

// SwapIndex promotes the staged index directory to the live location.
// The previous index is moved aside first and only removed after the staged
// directory is in place, so a crash at any point leaves a usable index.
func (l *Layout) SwapIndex(hubName string) error {
	staging := l.StagingIndexDir(hubName)
	if _, err := os.Stat(staging); err != nil {
		return fmt.Errorf("%w: %s", ErrNoStagedIndex, hubName)
	}

	live := l.IndexDir(hubName)
	retired := filepath.Join(l.HubDir(hubName), retiredName)

	// Drop any retired copy from a previous crash.
	if err := os.RemoveAll(retired); err != nil {
		return fmt.Errorf("clear retired index: %w", err)
	}

	hadLive := false
	if _, err := os.Stat(live); err == nil {
		hadLive = true
		if err := os.Rename(live, retired); err != nil {
			return fmt.Errorf("retire live index: %w", err)
		}
	}

	if err := os.Rename(staging, live); err != nil {
		// Put the old index back so the hub keeps its last-good state.
		if hadLive {
			if restoreErr := os.Rename(retired, live); restoreErr != nil {
				l.logger.Error("failed to restore retired index", "hub", hubName, "err", restoreErr)
			}
		}
		return fmt.Errorf("promote staged index: %w", err)
	}

	if hadLive {
		if err := os.RemoveAll(retired); err != nil {
			l.logger.Warn("failed to remove retired index", "hub", hubName, "err", err)
		}
	}

	l.logger.Info("index swapped", "hub", hubName)
	return nil
}
