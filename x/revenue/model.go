package revenue

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

// Entry is a recorded revenue event. Entries are created by Record,
// never mutated, and deleted by a successful Release.
type Entry struct {
	ID          int64              `cbor:"1,keyasint" json:"id"`
	Amount      int64              `cbor:"2,keyasint" json:"amount"`
	Currency    string             `cbor:"3,keyasint" json:"currency"`
	RecordedAt  govledger.Tick     `cbor:"4,keyasint" json:"recorded_at"`
	SourceID    int64              `cbor:"5,keyasint" json:"source_id"`
	RecordedBy  govledger.Identity `cbor:"6,keyasint" json:"recorded_by"`
	LockedUntil govledger.Tick     `cbor:"7,keyasint" json:"locked_until"`
}

var _ orm.Model = (*Entry)(nil)

func (e *Entry) Marshal() ([]byte, error) {
	return cbor.Marshal(e)
}

func (e *Entry) Unmarshal(raw []byte) error {
	return cbor.Unmarshal(raw, e)
}

func (e *Entry) Validate() error {
	if e.ID < 0 {
		return errors.Wrap(errors.ErrState, "negative id")
	}
	if e.Amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if e.Currency == "" {
		return errors.Wrap(errors.ErrEmpty, "currency")
	}
	if err := e.RecordedBy.Validate(); err != nil {
		return errors.Wrap(err, "recorded by")
	}
	if e.LockedUntil < e.RecordedAt {
		return errors.Wrap(errors.ErrState, "unlock before recording")
	}
	return nil
}
