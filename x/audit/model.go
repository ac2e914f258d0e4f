package audit

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

const maxLabelSize = 100

// Entry is a single immutable audit row.
type Entry struct {
	ID     int64              `cbor:"1,keyasint" json:"id"`
	Label  string             `cbor:"2,keyasint" json:"label"`
	Amount int64              `cbor:"3,keyasint" json:"amount"`
	Actor  govledger.Identity `cbor:"4,keyasint" json:"actor"`
	Tick   govledger.Tick     `cbor:"5,keyasint" json:"tick"`
}

var _ orm.Model = (*Entry)(nil)

func (e *Entry) Marshal() ([]byte, error) {
	return cbor.Marshal(e)
}

func (e *Entry) Unmarshal(raw []byte) error {
	return cbor.Unmarshal(raw, e)
}

// Validate ensures the entry can be persisted.
func (e *Entry) Validate() error {
	if e.ID < 0 {
		return errors.Wrap(errors.ErrState, "negative id")
	}
	if e.Label == "" {
		return errors.Wrap(errors.ErrEmpty, "label")
	}
	if len(e.Label) > maxLabelSize {
		return errors.Wrapf(errors.ErrInput, "label longer than %d", maxLabelSize)
	}
	if err := e.Actor.Validate(); err != nil {
		return errors.Wrap(err, "actor")
	}
	return nil
}
