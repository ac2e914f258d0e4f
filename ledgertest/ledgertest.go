// Package ledgertest provides test doubles and helpers shared by the
// extension tests: deterministic identities, a failing audit sink to
// prove all-or-nothing behavior, and a denying cash controller.
package ledgertest

import (
	"fmt"
	"sync/atomic"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/store"
)

var identSerial int64

// NewIdentity returns a unique valid identity. Each call returns a
// different principal, also across parallel tests.
func NewIdentity() govledger.Identity {
	n := atomic.AddInt64(&identSerial, 1)
	return govledger.Identity(fmt.Sprintf("principal-%d", n))
}

// Store returns a fresh in-memory cacheable store.
func Store() govledger.CacheableKVStore {
	return store.MemStore()
}

// FailingSink is an audit.Sink that always fails with the configured
// error. Use it to prove that a failed audit append aborts the whole
// calling operation.
type FailingSink struct {
	Err error
}

func (s *FailingSink) LogEvent(db govledger.KVStore, tick govledger.Tick, label string, amount int64, actor govledger.Identity) (int64, error) {
	return 0, s.Err
}

// CountingSink is an audit.Sink that accepts everything and only
// counts the appends.
type CountingSink struct {
	Events int
}

func (s *CountingSink) LogEvent(db govledger.KVStore, tick govledger.Tick, label string, amount int64, actor govledger.Identity) (int64, error) {
	s.Events++
	return int64(s.Events - 1), nil
}

// DenyingCash is a cash.Controller that refuses every transfer with
// the configured error. Balance queries succeed and report Bal, so
// callers pass their balance checks and fail on the move itself.
type DenyingCash struct {
	Err error
	Bal int64
}

func (c *DenyingCash) IssueCoins(db govledger.KVStore, dest govledger.Identity, amount int64) error {
	return c.Err
}

func (c *DenyingCash) MoveCoins(db govledger.KVStore, src, dest govledger.Identity, amount int64) error {
	return c.Err
}

func (c *DenyingCash) Balance(db govledger.ReadOnlyKVStore, account govledger.Identity) (int64, error) {
	return c.Bal, nil
}
