package index

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/calyptra/dochub/core"
)

// vectorsFileName is the HNSW graph file inside an index directory.
const vectorsFileName = "vectors.hnsw"

// VectorIndex is an HNSW approximate-nearest-neighbor graph keyed by chunk id.
// It is safe for concurrent use.
type VectorIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
}

// NewVectorIndex creates an empty cosine-distance vector index.
func NewVectorIndex() *VectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	return &VectorIndex{graph: graph}
}

// Add inserts or replaces the vector for a chunk id.
func (v *VectorIndex) Add(id core.ID, vec []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.graph.Add(hnsw.MakeNode(uint64(id), vec))
}

// Search returns up to k chunk ids nearest to the query vector, paired with
// their distances, closest first. An empty index yields no hits.
func (v *VectorIndex) Search(query []float32, k int) ([]core.ID, []float32) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.graph.Len() == 0 {
		return nil, nil
	}

	nodes := v.graph.Search(query, k)
	ids := make([]core.ID, 0, len(nodes))
	distances := make([]float32, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, core.ID(node.Key))
		distances = append(distances, v.graph.Distance(query, node.Value))
	}
	return ids, distances
}

// Len returns the number of indexed vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.graph.Len()
}

// Save writes the graph to path via a temp file and rename, so a crash
// mid-write never leaves a truncated index behind.
func (v *VectorIndex) Save(path string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create vector index file: %w", err)
	}

	if err := v.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("export vector index: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close vector index file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename vector index file: %w", err)
	}
	return nil
}

// LoadVectorIndex reads a graph previously written by Save.
func LoadVectorIndex(path string) (*VectorIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vector index file: %w", err)
	}
	defer file.Close()

	v := NewVectorIndex()
	// Import requires an io.ByteReader.
	if err := v.graph.Import(bufio.NewReader(file)); err != nil {
		return nil, fmt.Errorf("import vector index: %w", err)
	}
	return v, nil
}
