package revenue

import (
	"fmt"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/gconf"
	"github.com/petrodao/govledger/orm"
	"github.com/petrodao/govledger/x/attestor"
	"github.com/petrodao/govledger/x/audit"
	"github.com/petrodao/govledger/x/cash"
)

// totalKey stores the running sum of all recorded amounts, including
// entries that were released since.
var totalKey = []byte("revenue.total")

// Controller owns the revenue entry storage and the submission-key
// dedup space. Collaborators are injected as capabilities so tests
// can replace any of them.
type Controller struct {
	attestors attestor.Registry
	auditlog  audit.Sink
	cash      cash.Controller
	bucket    orm.ModelBucket
	seq       orm.Sequence
}

func NewController(attestors attestor.Registry, auditlog audit.Sink, cashCtrl cash.Controller) *Controller {
	return &Controller{
		attestors: attestors,
		auditlog:  auditlog,
		cash:      cashCtrl,
		bucket:    orm.NewModelBucket("revenue"),
		seq:       orm.NewSequence("revenue", "id"),
	}
}

// InitConfiguration persists the ledger parameters if none are stored
// yet. Call once when setting up the store.
func (c *Controller) InitConfiguration(db govledger.KVStore, conf Configuration) error {
	if has, err := gconf.Has(db, pkgName); err != nil {
		return err
	} else if has {
		return nil
	}
	return gconf.Save(db, pkgName, &conf)
}

// Record validates and records an attested revenue event, mints the
// amount into the treasury and returns the assigned entry id. The
// caller must run this inside a cache-wrap: any failure must discard
// the audit row, the mint, and every other tentative write.
func (c *Controller) Record(db govledger.KVStore, tick govledger.Tick, caller govledger.Identity, sourceID, amount int64, currency string) (int64, error) {
	current, err := c.attestors.Current(db)
	if err != nil {
		return 0, err
	}
	if !current.Equals(caller) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "only the attestor may record revenue")
	}
	if amount <= 0 {
		return 0, errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	if !conf.allowsCurrency(currency) {
		return 0, errors.Wrapf(errors.ErrInvalidCurrency, "%q", currency)
	}
	used, err := c.IsSourceUsed(db, caller, sourceID)
	if err != nil {
		return 0, err
	}
	if used {
		return 0, errors.Wrapf(errors.ErrAlreadyRecorded, "source %d by %q", sourceID, caller)
	}
	total, err := c.TotalRecorded(db)
	if err != nil {
		return 0, err
	}
	newTotal := total + amount
	if newTotal < total || newTotal > conf.MaxSupply {
		return 0, errors.Wrapf(errors.ErrSupplyExceeded, "recorded %d of %d", total, conf.MaxSupply)
	}

	if _, err := c.auditlog.LogEvent(db, tick, "Revenue Recorded", amount, caller); err != nil {
		return 0, errors.Wrap(err, "audit")
	}
	if err := c.cash.IssueCoins(db, cash.Treasury, amount); err != nil {
		return 0, errors.Wrap(err, "mint")
	}

	id, err := c.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "entry id")
	}
	entry := Entry{
		ID:          id,
		Amount:      amount,
		Currency:    currency,
		RecordedAt:  tick,
		SourceID:    sourceID,
		RecordedBy:  caller,
		LockedUntil: tick.Add(conf.LockPeriod),
	}
	if err := c.bucket.Put(db, orm.EncodeSequence(id), &entry); err != nil {
		return 0, err
	}
	if err := db.Set(submissionKey(caller, sourceID), []byte{1}); err != nil {
		return 0, err
	}
	if err := db.Set(totalKey, orm.EncodeSequence(newTotal)); err != nil {
		return 0, err
	}
	return id, nil
}

// Release moves a recorded entry's funds from the treasury to the
// recipient and deletes the entry. Only the recorder may release, and
// only once the lock period has passed: at lockedUntil exactly the
// release is allowed, one tick before it is not.
func (c *Controller) Release(db govledger.KVStore, tick govledger.Tick, caller govledger.Identity, entryID int64, recipient govledger.Identity) error {
	entry, err := c.GetEntry(db, entryID)
	if err != nil {
		return err
	}
	if tick < entry.LockedUntil {
		return errors.Wrapf(errors.ErrLocked, "until tick %d", entry.LockedUntil)
	}
	if !entry.RecordedBy.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the recorder may release")
	}
	// The treasury must still hold the minted amount.
	balance, err := c.cash.Balance(db, cash.Treasury)
	if err != nil {
		return err
	}
	if balance < entry.Amount {
		return errors.Wrapf(errors.ErrInsufficientBalance, "treasury holds %d, needs %d", balance, entry.Amount)
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if conf.AuditRelease {
		if _, err := c.auditlog.LogEvent(db, tick, "Revenue Released", entry.Amount, caller); err != nil {
			return errors.Wrap(err, "audit")
		}
	}
	if err := c.cash.MoveCoins(db, cash.Treasury, recipient, entry.Amount); err != nil {
		return err
	}
	return c.bucket.Delete(db, orm.EncodeSequence(entryID))
}

// GetEntry returns a live entry by id. Released entries are gone.
func (c *Controller) GetEntry(db govledger.ReadOnlyKVStore, entryID int64) (*Entry, error) {
	var entry Entry
	if err := c.bucket.One(db, orm.EncodeSequence(entryID), &entry); err != nil {
		return nil, errors.Wrapf(err, "entry %d", entryID)
	}
	return &entry, nil
}

// TotalRecorded returns the exact sum of all recorded amounts, live
// and released.
func (c *Controller) TotalRecorded(db govledger.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(totalKey)
	if err != nil {
		return 0, err
	}
	return orm.DecodeSequence(raw), nil
}

// IsSourceUsed reports whether the (attestor, source id) submission
// key was consumed before. Submission keys are never removed, not
// even when the entry they guarded is released.
func (c *Controller) IsSourceUsed(db govledger.ReadOnlyKVStore, by govledger.Identity, sourceID int64) (bool, error) {
	return db.Has(submissionKey(by, sourceID))
}

func submissionKey(by govledger.Identity, sourceID int64) []byte {
	return []byte(fmt.Sprintf("revenue.used:%s/%d", by, sourceID))
}
