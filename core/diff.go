package core

import (
	"fmt"
	"slices"
)

// Diff partitions a fresh remote listing against the previously persisted
// manifest. Comparison is a pure equality check on opaque fingerprints; no
// content is fetched, keeping the diff O(n) and network-free.
//
// A nil manifest means first ingestion: every descriptor is added. When force
// is true the manifest is bypassed and every freshly listed file is treated
// as updated, which callers use for a manual full resync.
//
// Duplicate ids within the fresh listing are a caller contract violation and
// are rejected with an error wrapping ErrInvalidListing.
func Diff(manifest *Manifest, fresh []FileDescriptor, force bool) (*DiffResult, error) {
	if err := ValidateListing(fresh); err != nil {
		return nil, err
	}

	result := &DiffResult{}

	if force {
		result.Updated = append(result.Updated, fresh...)
		return result, nil
	}

	if manifest == nil {
		result.Added = append(result.Added, fresh...)
		return result, nil
	}

	seen := make(map[string]bool, len(fresh))
	for _, f := range fresh {
		seen[f.ID] = true
		previous, ok := manifest.FileByID[f.ID]
		switch {
		case !ok:
			result.Added = append(result.Added, f)
		case previous != f.Fingerprint:
			result.Updated = append(result.Updated, f)
		default:
			result.Unchanged = append(result.Unchanged, f)
		}
	}

	for id := range manifest.FileByID {
		if !seen[id] {
			result.Removed = append(result.Removed, id)
		}
	}
	// FileByID is a map; sort so removals come out deterministic.
	slices.Sort(result.Removed)

	return result, nil
}

// ValidateListing checks a fresh remote listing for malformed descriptors
// and duplicate ids before any fetch or build work begins.
func ValidateListing(fresh []FileDescriptor) error {
	seen := make(map[string]bool, len(fresh))
	for i, f := range fresh {
		if f.ID == "" {
			return fmt.Errorf("%w: descriptor %d (%q): %w", ErrInvalidListing, i, f.Name, ErrEmptyFileID)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidListing, ErrDuplicateFileID, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}
