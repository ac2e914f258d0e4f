// Package store implements the key-value stores the ledger persists
// through: an in-memory btree-backed cache-wrap for staging writes,
// and helpers for tests. Persistent backends live in subpackages.
package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
)

// Shorter names for the shared store contracts, used all over this
// package and its backends.
type (
	KVStore          = govledger.KVStore
	ReadOnlyKVStore  = govledger.ReadOnlyKVStore
	CacheableKVStore = govledger.CacheableKVStore
	KVCacheWrap      = govledger.KVCacheWrap
	Batch            = govledger.Batch
)

// BTreeCacheable adds a simple btree-based CacheWrap strategy to any
// KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a BTreeCacheWrap that can be later written to
// this store, or rolled back.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, NewBatch(b.KVStore))
}

// batcher is implemented by backends that commit a whole batch in one
// transaction.
type batcher interface {
	NewBatch() Batch
}

// NewBatch returns the backend's own atomic batch when it provides
// one, else a non-atomic batch that applies the operations one at a
// time.
func NewBatch(out KVStore) Batch {
	if b, ok := out.(batcher); ok {
		return b.NewBatch()
	}
	return NewNonAtomicBatch(out)
}

// MemStore returns a simple implementation useful for tests. There is
// no persistence here.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, NewNonAtomicBatch(e))
}

///////////////////////////////////////////////
// Actual CacheWrap implementation

// BTreeCacheWrap places a btree overlay over a KVStore. Reads consult
// the overlay first, writes go into the overlay and the batch. Write
// hands the whole batch to the backing store; Discard drops all of
// it.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap initializes a btree overlay around this kv store.
// All writes flow through the batch, which the backend commits as one
// unit on Write.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch) BTreeCacheWrap {
	return BTreeCacheWrap{
		bt:    btree.New(2),
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another btree overlay on top of this one.
//
// Uses a non-atomic batch as it is only backed by this in-memory
// overlay.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, NewNonAtomicBatch(b))
}

// Write commits the staged batch into the underlying store, then
// invalidates this wrap.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard invalidates this CacheWrap and releases all staged data.
func (b BTreeCacheWrap) Discard() {
	for stop := false; !stop; {
		rem := b.bt.DeleteMin()
		stop = (rem == nil)
	}
}

// Set stages a write in the btree and the batch.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

// Delete stages a delete in the btree and the batch.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return b.batch.Delete(key)
}

// Get reads from the btree if staged there, else the backing store.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has reads from the btree if staged there, else the backing store.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

/////////////////////////////////////////////////////////
// Items to write to btree

// we enforce all data in our btree implements keyer so we can compare
// nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item and may be used for queries or
// embedded in data to store.
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first.
//
// panics if the item to compare doesn't implement keyer.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}
