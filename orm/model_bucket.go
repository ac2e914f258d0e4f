package orm

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
)

// ModelBucket is implemented by buckets that operate on Models keyed
// by a raw byte key within the bucket's own prefix.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup is
	// done by the primary key. Result is loaded into given destination
	// model. This method returns ErrNotFound if the entity does not
	// exist in the database.
	One(db govledger.ReadOnlyKVStore, key []byte, dest Model) error

	// Put saves given model in the database under the given key.
	Put(db govledger.KVStore, key []byte, m Model) error

	// Has returns whether an entity with given primary key exists.
	Has(db govledger.ReadOnlyKVStore, key []byte) (bool, error)

	// Delete removes an entity with given primary key from the
	// database. It returns ErrNotFound if an entity with given key
	// does not exist.
	Delete(db govledger.KVStore, key []byte) error
}

// NewModelBucket returns a ModelBucket that stores all models under
// the "<name>:" key prefix.
func NewModelBucket(name string) ModelBucket {
	return &modelBucket{
		prefix: []byte(name + ":"),
	}
}

type modelBucket struct {
	prefix []byte
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db govledger.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "bucket get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot unmarshal into %T: %v", dest, err)
	}
	return nil
}

func (mb *modelBucket) Put(db govledger.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot marshal %T: %v", m, err)
	}
	return errors.Wrap(db.Set(mb.dbKey(key), raw), "bucket set")
}

func (mb *modelBucket) Has(db govledger.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(mb.dbKey(key))
}

func (mb *modelBucket) Delete(db govledger.KVStore, key []byte) error {
	dbKey := mb.dbKey(key)
	has, err := db.Has(dbKey)
	if err != nil {
		return errors.Wrap(err, "bucket has")
	}
	if !has {
		return errors.Wrap(errors.ErrNotFound, "bucket delete")
	}
	return errors.Wrap(db.Delete(dbKey), "bucket delete")
}
