// Package proposal implements the proposal store: disbursement
// proposals are created once, and only their free-form status label
// may be rewritten afterwards, by the original proposer.
package proposal

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

// StatusPending is the status every proposal starts with. Statuses
// are free-form labels, not a state machine.
const StatusPending = "Pending"

const (
	maxDescriptionSize = 500
	maxStatusSize      = 50
)

// Proposal asks for a disbursement of the given amount. Amount and
// description are immutable after creation.
type Proposal struct {
	ID          int64              `cbor:"1,keyasint" json:"id"`
	Proposer    govledger.Identity `cbor:"2,keyasint" json:"proposer"`
	Amount      int64              `cbor:"3,keyasint" json:"amount"`
	Description string             `cbor:"4,keyasint" json:"description"`
	Status      string             `cbor:"5,keyasint" json:"status"`
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) {
	return cbor.Marshal(p)
}

func (p *Proposal) Unmarshal(raw []byte) error {
	return cbor.Unmarshal(raw, p)
}

func (p *Proposal) Validate() error {
	if p.ID < 0 {
		return errors.Wrap(errors.ErrState, "negative id")
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if p.Amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if len(p.Description) > maxDescriptionSize {
		return errors.Wrapf(errors.ErrInput, "description longer than %d", maxDescriptionSize)
	}
	if p.Status == "" {
		return errors.Wrap(errors.ErrEmpty, "status")
	}
	if len(p.Status) > maxStatusSize {
		return errors.Wrapf(errors.ErrInput, "status longer than %d", maxStatusSize)
	}
	return nil
}
