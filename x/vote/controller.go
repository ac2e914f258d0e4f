package vote

import (
	"fmt"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/gconf"
	"github.com/petrodao/govledger/orm"
	"github.com/petrodao/govledger/x/audit"
	"github.com/petrodao/govledger/x/proposal"
)

// Controller owns vote records and tallies.
type Controller struct {
	proposals proposal.Reader
	auditlog  audit.Sink
	records   orm.ModelBucket
	tallies   orm.ModelBucket
}

func NewController(proposals proposal.Reader, auditlog audit.Sink) *Controller {
	return &Controller{
		proposals: proposals,
		auditlog:  auditlog,
		records:   orm.NewModelBucket("vote"),
		tallies:   orm.NewModelBucket("tally"),
	}
}

// InitConfiguration persists the approval threshold if none is stored
// yet. Call once when setting up the store.
func (c *Controller) InitConfiguration(db govledger.KVStore, conf Configuration) error {
	if has, err := gconf.Has(db, pkgName); err != nil {
		return err
	} else if has {
		return nil
	}
	return gconf.Save(db, pkgName, &conf)
}

// Vote records the caller's choice on a proposal and bumps the tally.
// A proposal must exist, and each principal votes at most once: a
// second vote is rejected without touching the tally.
func (c *Controller) Vote(db govledger.KVStore, tick govledger.Tick, caller govledger.Identity, proposalID int64, choice bool) error {
	if _, err := c.proposals.Get(db, proposalID); err != nil {
		return err
	}
	key := recordKey(proposalID, caller)
	if voted, err := c.records.Has(db, key); err != nil {
		return err
	} else if voted {
		return errors.Wrapf(errors.ErrAlreadyVoted, "%q on proposal %d", caller, proposalID)
	}
	if _, err := c.auditlog.LogEvent(db, tick, "Vote Cast", proposalID, caller); err != nil {
		return errors.Wrap(err, "audit")
	}

	rec := Record{ProposalID: proposalID, Voter: caller, Choice: choice}
	if err := c.records.Put(db, key, &rec); err != nil {
		return err
	}

	tally, err := c.Tally(db, proposalID)
	if err != nil {
		return err
	}
	if choice {
		tally.Yes++
	} else {
		tally.No++
	}
	return c.tallies.Put(db, orm.EncodeSequence(proposalID), tally)
}

// IsApproved evaluates the threshold rule on the current tally. It
// never errors on missing data: a proposal without votes, or an
// unknown proposal id, simply is not approved.
func (c *Controller) IsApproved(db govledger.ReadOnlyKVStore, proposalID int64) (bool, error) {
	tally, err := c.Tally(db, proposalID)
	if err != nil {
		return false, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return false, err
	}
	// Exact integer arithmetic, strictly greater: a 50% tie loses.
	return tally.Yes*100 > tally.Total()*conf.ThresholdPercent, nil
}

// Tally returns the current counts for a proposal, zero/zero when
// nobody voted yet.
func (c *Controller) Tally(db govledger.ReadOnlyKVStore, proposalID int64) (*Tally, error) {
	var tally Tally
	switch err := c.tallies.One(db, orm.EncodeSequence(proposalID), &tally); {
	case err == nil:
		return &tally, nil
	case errors.ErrNotFound.Is(err):
		return &Tally{}, nil
	default:
		return nil, err
	}
}

// HasVoted reports whether the principal already voted on the
// proposal.
func (c *Controller) HasVoted(db govledger.ReadOnlyKVStore, proposalID int64, voter govledger.Identity) (bool, error) {
	return c.records.Has(db, recordKey(proposalID, voter))
}

func recordKey(proposalID int64, voter govledger.Identity) []byte {
	return []byte(fmt.Sprintf("%d/%s", proposalID, voter))
}
