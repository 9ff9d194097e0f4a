// Package remote abstracts the document source a hub synchronizes from.
//
// A Store lists the files currently present at a source reference and
// fetches raw file bytes by content reference. The graph subpackage
// implements Store against the Microsoft Graph drive API; tests use
// function-field mocks.
package remote

import (
	"context"

	"github.com/calyptra/dochub/core"
)

// Store enumerates and retrieves documents from a remote source.
// Implementations must be safe for concurrent Fetch calls.
type Store interface {
	// List returns descriptors for every file reachable from sourceRef,
	// folders expanded. The listing is a snapshot, not a subscription.
	List(ctx context.Context, sourceRef string) ([]core.FileDescriptor, error)

	// Fetch downloads the raw bytes behind a descriptor's ContentRef.
	Fetch(ctx context.Context, contentRef string) ([]byte, error)
}
