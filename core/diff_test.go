package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptorIDs(files []FileDescriptor) map[string]bool {
	ids := make(map[string]bool, len(files))
	for _, f := range files {
		ids[f.ID] = true
	}
	return ids
}

func TestDiff_FirstIngestion(t *testing.T) {
	fresh := []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
		{ID: "f2", Fingerprint: "etagB"},
	}

	result, err := Diff(nil, fresh, false)
	require.NoError(t, err)

	assert.Len(t, result.Added, 2)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Unchanged)
}

func TestDiff_Partition(t *testing.T) {
	manifest := NewManifest("h", []FileDescriptor{
		{ID: "keep", Fingerprint: "v1"},
		{ID: "change", Fingerprint: "v1"},
		{ID: "gone", Fingerprint: "v1"},
	})
	fresh := []FileDescriptor{
		{ID: "keep", Fingerprint: "v1"},
		{ID: "change", Fingerprint: "v2"},
		{ID: "new", Fingerprint: "v1"},
	}

	result, err := Diff(manifest, fresh, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"new": true}, descriptorIDs(result.Added))
	assert.Equal(t, map[string]bool{"change": true}, descriptorIDs(result.Updated))
	assert.Equal(t, map[string]bool{"keep": true}, descriptorIDs(result.Unchanged))
	assert.Equal(t, []string{"gone"}, result.Removed)

	// added + updated + unchanged as id sets must equal the fresh listing ids
	union := descriptorIDs(result.Added)
	for id := range descriptorIDs(result.Updated) {
		union[id] = true
	}
	for id := range descriptorIDs(result.Unchanged) {
		union[id] = true
	}
	assert.Equal(t, descriptorIDs(fresh), union)
}

func TestDiff_Idempotent(t *testing.T) {
	manifest := NewManifest("h", []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
		{ID: "f2", Fingerprint: "etagB"},
	})
	fresh := []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
		{ID: "f3", Fingerprint: "etagC"},
	}

	first, err := Diff(manifest, fresh, false)
	require.NoError(t, err)
	second, err := Diff(manifest, fresh, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDiff_Force(t *testing.T) {
	manifest := NewManifest("h", []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
	})
	fresh := []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"}, // fingerprint unchanged
		{ID: "f2", Fingerprint: "etagB"},
	}

	result, err := Diff(manifest, fresh, true)
	require.NoError(t, err)

	assert.Len(t, result.Updated, 2, "force must refetch every listed file")
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Unchanged)
}

func TestDiff_EndToEndScenario(t *testing.T) {
	manifest := NewManifest("h", []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
	})
	fresh := []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
		{ID: "f2", Fingerprint: "etagB"},
	}

	result, err := Diff(manifest, fresh, false)
	require.NoError(t, err)

	require.Len(t, result.Added, 1)
	assert.Equal(t, "f2", result.Added[0].ID)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Removed)
	require.Len(t, result.Unchanged, 1)
	assert.Equal(t, "f1", result.Unchanged[0].ID)
}

func TestDiff_DuplicateIDsRejected(t *testing.T) {
	fresh := []FileDescriptor{
		{ID: "f1", Fingerprint: "etagA"},
		{ID: "f1", Fingerprint: "etagB"},
	}

	_, err := Diff(nil, fresh, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidListing)
	assert.ErrorIs(t, err, ErrDuplicateFileID)
}

func TestDiff_EmptyIDRejected(t *testing.T) {
	fresh := []FileDescriptor{{ID: "", Name: "orphan.pdf"}}

	_, err := Diff(nil, fresh, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidListing)
	assert.ErrorIs(t, err, ErrEmptyFileID)
}

func TestDiff_RemovedSorted(t *testing.T) {
	manifest := NewManifest("h", []FileDescriptor{
		{ID: "z", Fingerprint: "1"},
		{ID: "a", Fingerprint: "1"},
		{ID: "m", Fingerprint: "1"},
	})

	result, err := Diff(manifest, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, result.Removed)
}
