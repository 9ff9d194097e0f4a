// Copyright 2025 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"sort"
	"sync"
	"time"
)

// Handle is the read-only view of a built index that a loaded hub keeps
// alive. The registry closes a handle when its entry is evicted or replaced.
type Handle interface {
	Close() error
}

// QueryEngine answers questions against a loaded hub's index. The registry
// treats it as opaque; it only guarantees that an engine is never observed
// paired with a mismatched index handle.
type QueryEngine interface{}

// LoadedHub is a registry entry: a hub's query engine and index handle as of
// the moment it was loaded. Entries are replaced whole, never patched.
type LoadedHub struct {
	HubName  string
	Engine   QueryEngine
	Handle   Handle
	LoadedAt time.Time
}

// Registry is the process-wide cache of loaded hubs. All access is
// serialized behind a single lock; entries are small and operations are
// O(1), so the coarse lock is never contended for long. Construct instances
// explicitly and pass them by reference so tests can run isolated registries.
type Registry struct {
	mu     sync.RWMutex
	loaded map[string]*LoadedHub
}

// NewRegistry creates an empty hub registry.
func NewRegistry() *Registry {
	return &Registry{loaded: make(map[string]*LoadedHub)}
}

// Set installs or replaces the entry for a hub with a fresh load timestamp.
// A replaced entry's handle is closed; the replacement is whole-entry, so
// readers never see a query engine from one load paired with an index handle
// from another.
func (r *Registry) Set(hubName string, engine QueryEngine, handle Handle) {
	r.mu.Lock()
	previous := r.loaded[hubName]
	r.loaded[hubName] = &LoadedHub{
		HubName:  hubName,
		Engine:   engine,
		Handle:   handle,
		LoadedAt: time.Now().UTC(),
	}
	r.mu.Unlock()

	if previous != nil && previous.Handle != nil && previous.Handle != handle {
		_ = previous.Handle.Close()
	}
}

// Get returns the loaded hub, or nil when the hub is not loaded.
// The lookup never blocks on I/O.
func (r *Registry) Get(hubName string) *LoadedHub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded[hubName]
}

// Remove evicts a hub and closes its handle. Removing an unloaded hub is a
// no-op.
func (r *Registry) Remove(hubName string) {
	r.mu.Lock()
	entry := r.loaded[hubName]
	delete(r.loaded, hubName)
	r.mu.Unlock()

	if entry != nil && entry.Handle != nil {
		_ = entry.Handle.Close()
	}
}

// ListLoaded returns a sorted snapshot of currently loaded hub names.
func (r *Registry) ListLoaded() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.loaded))
	for name := range r.loaded {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Clear evicts every hub, closing all handles. Used for full process reset.
func (r *Registry) Clear() {
	r.mu.Lock()
	entries := r.loaded
	r.loaded = make(map[string]*LoadedHub)
	r.mu.Unlock()

	for _, entry := range entries {
		if entry.Handle != nil {
			_ = entry.Handle.Close()
		}
	}
}
