package cash

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

// Treasury is the contract-held pooled account: credited by revenue
// recording, debited by release and disbursement.
const Treasury = govledger.Identity("_treasury")

// Wallet holds the balance of a single account.
type Wallet struct {
	Balance int64 `cbor:"1,keyasint"`
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return cbor.Marshal(w)
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return cbor.Unmarshal(raw, w)
}

// Validate ensures a wallet never persists a negative balance.
func (w *Wallet) Validate() error {
	if w.Balance < 0 {
		return errors.Wrap(errors.ErrState, "negative balance")
	}
	return nil
}
