// Package mock provides a test double for remote.Store.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/calyptra/dochub/core"
)

// MockStore is a test double for remote.Store.
// It allows custom behavior injection via function fields.
type MockStore struct {
	// ListFunc is called by List if set. If nil, returns Files.
	ListFunc func(ctx context.Context, sourceRef string) ([]core.FileDescriptor, error)

	// FetchFunc is called by Fetch if set. If nil, returns Contents[contentRef].
	FetchFunc func(ctx context.Context, contentRef string) ([]byte, error)

	// Files is the default listing returned when ListFunc is nil.
	Files []core.FileDescriptor

	// Contents maps content references to raw bytes for the default Fetch.
	Contents map[string][]byte

	listCalls  atomic.Int64
	fetchCalls atomic.Int64
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{Contents: make(map[string][]byte)}
}

// List returns the injected function's result, or the Files field.
func (m *MockStore) List(ctx context.Context, sourceRef string) ([]core.FileDescriptor, error) {
	m.listCalls.Add(1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, sourceRef)
	}
	return m.Files, nil
}

// Fetch returns the injected function's result, or looks up Contents.
func (m *MockStore) Fetch(ctx context.Context, contentRef string) ([]byte, error) {
	m.fetchCalls.Add(1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, contentRef)
	}
	data, ok := m.Contents[contentRef]
	if !ok {
		return nil, fmt.Errorf("no content registered for %q", contentRef)
	}
	return data, nil
}

// ListCalls returns the number of List invocations.
func (m *MockStore) ListCalls() int { return int(m.listCalls.Load()) }

// FetchCalls returns the number of Fetch invocations.
func (m *MockStore) FetchCalls() int { return int(m.fetchCalls.Load()) }
