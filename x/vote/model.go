// Package vote implements one-vote-per-principal tallying and the
// integer-threshold approval rule for proposals.
package vote

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/gconf"
	"github.com/petrodao/govledger/orm"
)

const pkgName = "vote"

// Record is a single cast vote. It is written at most once per
// (proposal, voter) pair and never deleted.
type Record struct {
	ProposalID int64              `cbor:"1,keyasint"`
	Voter      govledger.Identity `cbor:"2,keyasint"`
	Choice     bool               `cbor:"3,keyasint"`
}

var _ orm.Model = (*Record)(nil)

func (r *Record) Marshal() ([]byte, error)   { return cbor.Marshal(r) }
func (r *Record) Unmarshal(raw []byte) error { return cbor.Unmarshal(raw, r) }

func (r *Record) Validate() error {
	if r.ProposalID < 0 {
		return errors.Wrap(errors.ErrState, "negative proposal id")
	}
	return errors.Wrap(r.Voter.Validate(), "voter")
}

// Tally is the incrementally maintained vote count of one proposal.
type Tally struct {
	Yes int64 `cbor:"1,keyasint" json:"yes"`
	No  int64 `cbor:"2,keyasint" json:"no"`
}

var _ orm.Model = (*Tally)(nil)

func (t *Tally) Marshal() ([]byte, error)   { return cbor.Marshal(t) }
func (t *Tally) Unmarshal(raw []byte) error { return cbor.Unmarshal(raw, t) }

func (t *Tally) Validate() error {
	if t.Yes < 0 || t.No < 0 {
		return errors.Wrap(errors.ErrState, "negative count")
	}
	return nil
}

// Total returns how many votes were cast.
func (t *Tally) Total() int64 {
	return t.Yes + t.No
}

// Configuration holds the fixed approval threshold.
type Configuration struct {
	// ThresholdPercent is compared with exact integer arithmetic:
	// approval requires yes*100 > total*threshold, strictly. With the
	// default of 50, a tie is not approved and zero votes are never
	// approved.
	ThresholdPercent int64 `cbor:"1,keyasint"`
}

// DefaultConfiguration returns the fixed production threshold.
func DefaultConfiguration() Configuration {
	return Configuration{ThresholdPercent: 50}
}

func (c *Configuration) Marshal() ([]byte, error)   { return cbor.Marshal(c) }
func (c *Configuration) Unmarshal(raw []byte) error { return cbor.Unmarshal(raw, c) }

func (c *Configuration) Validate() error {
	if c.ThresholdPercent < 0 || c.ThresholdPercent > 100 {
		return errors.Wrap(errors.ErrInput, "threshold must be within [0, 100]")
	}
	return nil
}

func loadConf(db govledger.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkgName, &conf); err != nil {
		return nil, errors.Wrap(err, "vote configuration")
	}
	return &conf, nil
}
