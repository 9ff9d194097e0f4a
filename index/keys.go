package index

import (
	"encoding/binary"

	"github.com/calyptra/dochub/core"
)

// Key prefixes for the two record families sharing one Badger store.
const (
	chunkPrefix  = "chk"
	corpusPrefix = "doc"
)

// makeChunkKey generates a key for a chunk record by id.
// Format: prefix:id, id in BigEndian so keys sort numerically.
func makeChunkKey(id core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCorpusKey generates a key for a corpus document by file id.
func makeCorpusKey(fileID string) []byte {
	return []byte(corpusPrefix + ":" + fileID)
}

// corpusKeyRange returns the prefix covering every corpus document.
func corpusKeyRange() []byte {
	return []byte(corpusPrefix + ":")
}
