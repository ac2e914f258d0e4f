package audit

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

// Sink is the capability other extensions hold to append audit rows.
// Implementations must assign strictly increasing ids and must never
// mutate or remove rows that were appended before.
type Sink interface {
	LogEvent(db govledger.KVStore, tick govledger.Tick, label string, amount int64, actor govledger.Identity) (int64, error)
}

// Controller owns the audit trail storage.
type Controller struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

var _ Sink = (*Controller)(nil)

func NewController() *Controller {
	return &Controller{
		bucket: orm.NewModelBucket("audit"),
		seq:    orm.NewSequence("audit", "id"),
	}
}

// LogEvent appends an immutable row with the current logical time and
// returns the assigned id. There is no authorization check: the
// trail records what callers did, the callers gate who may act.
func (c *Controller) LogEvent(db govledger.KVStore, tick govledger.Tick, label string, amount int64, actor govledger.Identity) (int64, error) {
	id, err := c.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "audit id")
	}
	entry := Entry{
		ID:     id,
		Label:  label,
		Amount: amount,
		Actor:  actor,
		Tick:   tick,
	}
	if err := c.bucket.Put(db, orm.EncodeSequence(id), &entry); err != nil {
		return 0, errors.Wrap(err, "audit append")
	}
	return id, nil
}

// GetEntry returns the audit row with the given id.
func (c *Controller) GetEntry(db govledger.ReadOnlyKVStore, id int64) (*Entry, error) {
	var entry Entry
	if err := c.bucket.One(db, orm.EncodeSequence(id), &entry); err != nil {
		return nil, errors.Wrapf(err, "audit entry %d", id)
	}
	return &entry, nil
}

// Count returns the number of rows appended so far.
func (c *Controller) Count(db govledger.ReadOnlyKVStore) (int64, error) {
	return c.seq.Latest(db)
}

// List returns entries with ids in [from, to). Missing ids inside the
// range are a storage corruption and surface as an error. The id
// space is dense, so callers can page with plain arithmetic.
func (c *Controller) List(db govledger.ReadOnlyKVStore, from, to int64) ([]Entry, error) {
	count, err := c.Count(db)
	if err != nil {
		return nil, err
	}
	if from < 0 {
		from = 0
	}
	if to > count {
		to = count
	}
	if from >= to {
		return nil, nil
	}
	entries := make([]Entry, 0, to-from)
	for id := from; id < to; id++ {
		entry, err := c.GetEntry(db, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}
