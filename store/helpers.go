package store

import (
	"github.com/petrodao/govledger/errors"
)

// EmptyKVStore never holds any data, used as a base layer under a
// cache-wrap in tests.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false.
func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop.
func (e EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop.
func (e EmptyKVStore) Delete(key []byte) error { return nil }

////////////////////////////////////////////////////
// Non-atomic batch (dummy implementation)

type opKind int32

const (
	setKind opKind = iota + 1
	delKind
)

// op is either a set or a delete, to replay on a store later.
type op struct {
	kind  opKind
	key   []byte
	value []byte // only for set
}

func (o op) apply(out KVStore) error {
	switch o.kind {
	case setKind:
		return out.Set(o.key, o.value)
	case delKind:
		return out.Delete(o.key)
	default:
		return errors.Wrapf(errors.ErrDatabase, "unknown op kind: %d", o.kind)
	}
}

// NonAtomicBatch just piles up ops and applies them one at a time on
// the underlying store. Only for in-memory stores, where a partial
// application cannot outlive the process; persistent backends must
// provide their own transactional batch instead.
type NonAtomicBatch struct {
	out KVStore
	ops []op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch to be later written to the
// KVStore.
func NewNonAtomicBatch(out KVStore) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set adds a set operation to the batch.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, op{kind: setKind, key: key, value: value})
	return nil
}

// Delete adds a delete operation to the batch.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, op{kind: delKind, key: key})
	return nil
}

// Write applies all the ops to the underlying store and resets.
func (b *NonAtomicBatch) Write() error {
	for _, o := range b.ops {
		if err := o.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}
