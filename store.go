package govledger

// Defines the public interfaces for interacting with stores.
//
// Every id space in this system is a dense monotonic sequence and
// every read is by exact key, so the store contract is deliberately
// small: no range iteration, just point access plus cache-wrapping
// for atomic multi-write operations.

// ReadOnlyKVStore is the subset of store access handed to read-only
// queries and cross-extension capability interfaces.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) (bool, error)
}

// KVStore is a simple interface to get/set data.
//
// For simplicity, we require all backing stores to implement this
// interface. They *may* implement other methods as well, but at
// least these are required.
type KVStore interface {
	ReadOnlyKVStore

	// Set overwrites the key. Panics on nil key.
	Set(key, value []byte) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(key []byte) error
}

// CacheableKVStore is a KVStore that supports grouping temporary
// writes which may be committed or discarded together, like a
// database SAVEPOINT / ROLLBACK TO SAVEPOINT.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap maintains a scratch-pad of uncommitted writes visible
// to all reads through it. At the end, call Write to flush them into
// the backing store, or Discard to drop every one of them.
//
// Every mutating ledger operation runs inside exactly one cache wrap:
// any failure anywhere in the call chain discards all tentative
// writes, which is what gives compound operations their all-or-nothing
// contract.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this cache recursively.
	CacheableKVStore

	// Write flushes the cached writes into the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}

// Batch collects Set and Delete operations for one later Write. A
// persistent backend must commit the whole batch in a single
// transaction, so a failed or interrupted Write leaves none of the
// staged operations behind.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Write() error
}

// Persistent is implemented by anything that can be serialized into
// the store. Models implement this pair on top of their codec.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
