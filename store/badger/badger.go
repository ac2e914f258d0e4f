// Package badger provides a persistent CacheableKVStore backed by
// dgraph-io/badger, used by the daemon so ledger state survives
// restarts. Tests and ad-hoc runs use the in-memory mode.
package badger

import (
	stderrors "errors"
	"io/fs"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/store"
)

// Store implements govledger.CacheableKVStore on top of a badger
// database. Individual Set/Delete calls commit immediately; compound
// operations stage their writes through CacheWrap as everywhere else.
type Store struct {
	db *badgerdb.DB
}

var _ govledger.CacheableKVStore = (*Store)(nil)

// Open opens (creating if needed) a badger database under dataDir.
// An empty dataDir opens a throwaway in-memory database.
func Open(dataDir string, opts ...Option) (*Store, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var badgerOpts badgerdb.Options
	if dataDir == "" {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrap(errors.ErrDatabase, err.Error())
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, errors.Wrapf(errors.ErrDatabase, "create data dir: %v", err)
			}
		}
		badgerOpts = badgerdb.DefaultOptions(dataDir)
	}
	// The default INFO logging is a bit verbose
	badgerOpts = badgerOpts.WithLoggingLevel(badgerdb.WARNING)
	if cfg.logger != nil {
		badgerOpts = badgerOpts.WithLogger(newBadgerLogger(cfg.logger))
	}

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open badger: %v", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns nil iff the key doesn't exist.
func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %v", err)
	}
	return value, nil
}

// Has checks if a key exists.
func (s *Store) Has(key []byte) (bool, error) {
	var has bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		switch _, err := txn.Get(key); err {
		case nil:
			has = true
			return nil
		case badgerdb.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "has: %v", err)
	}
	return has, nil
}

// Set commits a single write.
func (s *Store) Set(key, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
	return errors.Wrap(wrapDB(err), "set")
}

// Delete commits a single delete. Deleting a missing key is a no-op.
func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
	return errors.Wrap(wrapDB(err), "delete")
}

// CacheWrap stages writes in memory; its Write commits them through
// NewBatch in one database transaction.
func (s *Store) CacheWrap() govledger.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, s.NewBatch())
}

// NewBatch returns a batch the database commits atomically: a failed
// or interrupted Write applies none of the staged operations.
func (s *Store) NewBatch() govledger.Batch {
	return &writeBatch{db: s.db}
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

type writeBatch struct {
	db  *badgerdb.DB
	ops []batchOp
}

var _ govledger.Batch = (*writeBatch)(nil)

func (b *writeBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: key, value: value})
	return nil
}

func (b *writeBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: key, delete: true})
	return nil
}

// Write commits every staged operation in a single transaction.
func (b *writeBatch) Write() error {
	err := b.db.Update(func(txn *badgerdb.Txn) error {
		for _, op := range b.ops {
			if op.delete {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
			} else if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(wrapDB(err), "write batch")
	}
	b.ops = nil
	return nil
}

func wrapDB(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrDatabase, err.Error())
}
