package proposal

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
	"github.com/petrodao/govledger/x/audit"
)

// Reader is the capability the voting and disbursement extensions
// hold to check that a proposal exists and read its amount. It never
// allows mutation.
type Reader interface {
	Get(db govledger.ReadOnlyKVStore, id int64) (*Proposal, error)
}

// Controller owns the proposal storage.
type Controller struct {
	auditlog audit.Sink
	bucket   orm.ModelBucket
	seq      orm.Sequence
}

var _ Reader = (*Controller)(nil)

func NewController(auditlog audit.Sink) *Controller {
	return &Controller{
		auditlog: auditlog,
		bucket:   orm.NewModelBucket("proposal"),
		seq:      orm.NewSequence("proposal", "id"),
	}
}

// Submit creates a proposal with status "Pending" and returns the new
// id. Anyone may propose; only the amount is validated.
func (c *Controller) Submit(db govledger.KVStore, tick govledger.Tick, caller govledger.Identity, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if _, err := c.auditlog.LogEvent(db, tick, "Proposal Submitted", amount, caller); err != nil {
		return 0, errors.Wrap(err, "audit")
	}
	id, err := c.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "proposal id")
	}
	prop := Proposal{
		ID:          id,
		Proposer:    caller,
		Amount:      amount,
		Description: description,
		Status:      StatusPending,
	}
	if err := c.bucket.Put(db, orm.EncodeSequence(id), &prop); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateStatus rewrites the status label of an existing proposal.
// Only the original proposer may do this; amount and description stay
// untouched.
func (c *Controller) UpdateStatus(db govledger.KVStore, tick govledger.Tick, caller govledger.Identity, id int64, status string) error {
	prop, err := c.Get(db, id)
	if err != nil {
		return err
	}
	if !prop.Proposer.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the proposer may update the status")
	}
	if _, err := c.auditlog.LogEvent(db, tick, "Proposal Status Updated", 0, caller); err != nil {
		return errors.Wrap(err, "audit")
	}
	prop.Status = status
	return c.bucket.Put(db, orm.EncodeSequence(id), prop)
}

// Get returns a proposal by id.
func (c *Controller) Get(db govledger.ReadOnlyKVStore, id int64) (*Proposal, error) {
	var prop Proposal
	if err := c.bucket.One(db, orm.EncodeSequence(id), &prop); err != nil {
		return nil, errors.Wrapf(err, "proposal %d", id)
	}
	return &prop, nil
}

// Count returns how many proposals were submitted so far.
func (c *Controller) Count(db govledger.ReadOnlyKVStore) (int64, error) {
	return c.seq.Latest(db)
}
