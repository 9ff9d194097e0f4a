package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/calyptra/dochub/core"
)

// Backend wraps the BadgerDB instance holding a hub's chunk records and
// corpus text.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. inMemory is for tests.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0o755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default().With("component", "index-backend"),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// PutChunks writes chunk records in bulk. A write batch sidesteps the
// single-transaction size limit on large corpora.
func (b *Backend) PutChunks(chunks []ChunkRecord) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range chunks {
		if err := wb.Set(makeChunkKey(chunks[i].ID), MarshalChunkRecord(&chunks[i])); err != nil {
			return fmt.Errorf("batch chunk %d: %w", chunks[i].ID, err)
		}
	}
	return wb.Flush()
}

// GetChunk retrieves a chunk record by id.
func (b *Backend) GetChunk(id core.ID) (*ChunkRecord, error) {
	var record *ChunkRecord
	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %d", ErrChunkNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = UnmarshalChunkRecord(val)
			return err
		})
	})
	return record, err
}

// PutDocument writes a corpus document keyed by file id.
func (b *Backend) PutDocument(doc *Document) error {
	return b.db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeCorpusKey(doc.FileID), MarshalDocument(doc))
	})
}

// GetDocument retrieves a corpus document by file id.
func (b *Backend) GetDocument(fileID string) (*Document, error) {
	var doc *Document
	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCorpusKey(fileID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrDocumentNotFound, fileID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = UnmarshalDocument(val)
			return err
		})
	})
	return doc, err
}

// IterateDocuments calls fn for every corpus document in the store.
// Iteration stops at the first error fn returns.
func (b *Backend) IterateDocuments(fn func(doc *Document) error) error {
	return b.db.View(func(tx *badger.Txn) error {
		prefix := corpusKeyRange()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				doc, err := UnmarshalDocument(val)
				if err != nil {
					return err
				}
				return fn(doc)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
