// Package attestor implements the identity registry: a single slot
// holding the one principal trusted to submit revenue records. The
// slot is set at most once by initialization and afterwards rotated
// only by its current holder.
package attestor

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/gconf"
)

const pkgName = "attestor"

// slot is the stored singleton record.
type slot struct {
	Current govledger.Identity `cbor:"1,keyasint"`
}

func (s *slot) Marshal() ([]byte, error)   { return cbor.Marshal(s) }
func (s *slot) Unmarshal(raw []byte) error { return cbor.Unmarshal(raw, s) }

func (s *slot) Validate() error {
	return errors.Wrap(s.Current.Validate(), "current attestor")
}

// Registry is the capability other extensions hold to read the
// current attestor.
type Registry interface {
	Current(db govledger.ReadOnlyKVStore) (govledger.Identity, error)
}

// Controller owns the attestor slot.
type Controller struct{}

var _ Registry = Controller{}

func NewController() Controller {
	return Controller{}
}

// Initialize sets the attestor slot for the first time. The initial
// attestor must not be the caller performing the initialization, so
// whoever bootstraps the system cannot grant the role to themselves.
func (Controller) Initialize(db govledger.KVStore, initial, caller govledger.Identity) error {
	if has, err := gconf.Has(db, pkgName); err != nil {
		return err
	} else if has {
		return errors.Wrap(errors.ErrAlreadyInitialized, "attestor")
	}
	if initial.Equals(caller) {
		return errors.Wrap(errors.ErrInvalidIdentity, "initial attestor equals caller")
	}
	return gconf.Save(db, pkgName, &slot{Current: initial})
}

// Rotate replaces the attestor. Only the current attestor may rotate,
// and unlike initialization there is no self-equality restriction.
func (Controller) Rotate(db govledger.KVStore, next, caller govledger.Identity) error {
	var s slot
	if err := gconf.Load(db, pkgName, &s); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrap(errors.ErrNotInitialized, "attestor")
		}
		return err
	}
	if !s.Current.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the current attestor may rotate")
	}
	return gconf.Save(db, pkgName, &slot{Current: next})
}

// Current returns the attestor identity, or ErrNotInitialized if the
// slot was never set.
func (Controller) Current(db govledger.ReadOnlyKVStore) (govledger.Identity, error) {
	var s slot
	if err := gconf.Load(db, pkgName, &s); err != nil {
		if errors.ErrNotFound.Is(err) {
			return "", errors.Wrap(errors.ErrNotInitialized, "attestor")
		}
		return "", err
	}
	return s.Current, nil
}
