package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calyptra/dochub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestManifest_RoundTrip(t *testing.T) {
	l := newTestLayout(t)

	manifest := core.NewManifest("sales", []core.FileDescriptor{
		{ID: "f1", Name: "a.pdf", Fingerprint: "etagA", Size: 120, LastModified: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "f2", Name: "b.docx", Fingerprint: "etagB"},
	})
	require.NoError(t, l.SaveManifest(manifest))

	loaded, err := l.LoadManifest("sales")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "sales", loaded.HubName)
	assert.Equal(t, 2, loaded.FileCount)
	assert.Equal(t, map[string]string{"f1": "etagA", "f2": "etagB"}, loaded.FileByID)
	require.Len(t, loaded.Files, 2)
	assert.Equal(t, "a.pdf", loaded.Files[0].Name)
	assert.Equal(t, int64(120), loaded.Files[0].Size)
}

func TestManifest_WireShape(t *testing.T) {
	l := newTestLayout(t)

	require.NoError(t, l.SaveManifest(core.NewManifest("h", []core.FileDescriptor{
		{ID: "f1", Name: "a.pdf", Fingerprint: "etagA"},
	})))

	raw, err := os.ReadFile(l.ManifestPath("h"))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	// compatibility keys: files, map, count, created_at
	assert.Contains(t, wire, "files")
	assert.Contains(t, wire, "map")
	assert.EqualValues(t, 1, wire["count"])
	created, ok := wire["created_at"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, created)
	assert.NoError(t, err, "created_at must be ISO-8601")
}

func TestLoadManifest_AbsentIsNil(t *testing.T) {
	l := newTestLayout(t)

	manifest, err := l.LoadManifest("never-ingested")
	require.NoError(t, err)
	assert.Nil(t, manifest)
}

func TestMetadata_RoundTrip(t *testing.T) {
	l := newTestLayout(t)

	meta := &Metadata{SourceRef: "https://example.test/share/abc", AutoSync: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, l.SaveMetadata("h", meta))

	loaded, err := l.LoadMetadata("h")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, meta.SourceRef, loaded.SourceRef)
	assert.True(t, loaded.AutoSync)

	absent, err := l.LoadMetadata("other")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestListHubs(t *testing.T) {
	l := newTestLayout(t)

	require.NoError(t, l.EnsureHub("beta"))
	require.NoError(t, l.EnsureHub("alpha"))

	hubs, err := l.ListHubs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, hubs)
}

func TestDeleteHub(t *testing.T) {
	l := newTestLayout(t)

	require.NoError(t, l.EnsureHub("doomed"))
	require.NoError(t, l.DeleteHub("doomed"))

	_, err := os.Stat(l.HubDir("doomed"))
	assert.True(t, os.IsNotExist(err))

	err = l.DeleteHub("doomed")
	assert.ErrorIs(t, err, ErrHubNotFound)
}

func TestSwapIndex_PromotesStaging(t *testing.T) {
	l := newTestLayout(t)

	staging, err := l.PrepareStaging("h")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "graph.hnsw"), []byte("v2"), 0o644))

	require.NoError(t, l.SwapIndex("h"))

	data, err := os.ReadFile(filepath.Join(l.IndexDir("h"), "graph.hnsw"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	assert.True(t, l.HubExists("h"))

	_, err = os.Stat(l.StagingIndexDir("h"))
	assert.True(t, os.IsNotExist(err))
}

func TestSwapIndex_ReplacesPrevious(t *testing.T) {
	l := newTestLayout(t)

	// first build
	staging, err := l.PrepareStaging("h")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "graph.hnsw"), []byte("v1"), 0o644))
	require.NoError(t, l.SwapIndex("h"))

	// second build replaces it wholesale
	staging, err = l.PrepareStaging("h")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "graph.hnsw"), []byte("v2"), 0o644))
	require.NoError(t, l.SwapIndex("h"))

	data, err := os.ReadFile(filepath.Join(l.IndexDir("h"), "graph.hnsw"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestSwapIndex_WithoutStaging(t *testing.T) {
	l := newTestLayout(t)
	require.NoError(t, l.EnsureHub("h"))

	err := l.SwapIndex("h")
	assert.ErrorIs(t, err, ErrNoStagedIndex)
}

func TestPrepareStaging_ClearsLeftovers(t *testing.T) {
	l := newTestLayout(t)

	staging, err := l.PrepareStaging("h")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "stale"), []byte("x"), 0o644))

	staging, err = l.PrepareStaging("h")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(staging, "stale"))
	assert.True(t, os.IsNotExist(err), "stale staging content must be cleared")
}
