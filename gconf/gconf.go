// Package gconf stores per-extension singleton state: configuration
// objects and single-slot records that are not collections. Each
// extension owns exactly one key in the "_c:" namespace.
package gconf

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
)

// Configuration is implemented by any singleton that can be stored by
// this package. Marshal is the persistence codec, Validate guards
// what may be written.
type Configuration interface {
	govledger.Persistent
	Validate() error
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the object and writes it into the singleton slot of
// the given package name, overwriting any previous value.
func Save(db govledger.KVStore, pkg string, src Configuration) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: package %q", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "marshal: package %q: %v", pkg, err)
	}
	return db.Set(key(pkg), raw)
}

// Load reads the singleton slot of the given package name into dst.
// It returns ErrNotFound if nothing was saved yet.
func Load(db govledger.ReadOnlyKVStore, pkg string, dst govledger.Persistent) error {
	raw, err := db.Get(key(pkg))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "package %q", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "unmarshal: package %q: %v", pkg, err)
	}
	return nil
}

// Has returns whether the singleton slot of the given package name
// holds a value.
func Has(db govledger.ReadOnlyKVStore, pkg string) (bool, error) {
	return db.Has(key(pkg))
}
