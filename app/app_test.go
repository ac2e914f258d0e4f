package app

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/ledgertest"
	"github.com/petrodao/govledger/ledgertest/assert"
	"github.com/petrodao/govledger/x/cash"
	"github.com/petrodao/govledger/x/proposal"
	"github.com/petrodao/govledger/x/revenue"
)

func newTestLedger(t testing.TB, opts Options) (*Ledger, *ManualClock) {
	t.Helper()
	clock := &ManualClock{}
	opts.Store = ledgertest.Store()
	opts.Clock = clock
	opts.Logger = slog.New(slog.DiscardHandler)
	ledger, err := NewLedger(opts)
	assert.Nil(t, err)
	return ledger, clock
}

func TestRevenueLifecycle(t *testing.T) {
	ledger, clock := newTestLedger(t, Options{})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	recipient := ledgertest.NewIdentity()

	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))
	current, err := ledger.CurrentAttestor()
	assert.Nil(t, err)
	assert.Equal(t, alice, current)

	clock.Current = 100
	id, err := ledger.RecordRevenue(alice, 7, 500000, "USD")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id)

	entry, err := ledger.GetRevenueEntry(id)
	assert.Nil(t, err)
	assert.Equal(t, govledger.Tick(1540), entry.LockedUntil)
	assert.Equal(t, alice, entry.RecordedBy)

	total, err := ledger.TotalRecorded()
	assert.Nil(t, err)
	assert.Equal(t, int64(500000), total)

	bal, err := ledger.Balance(cash.Treasury)
	assert.Nil(t, err)
	assert.Equal(t, int64(500000), bal)

	clock.Current = 200
	assert.IsErr(t, errors.ErrLocked, ledger.ReleaseRevenue(alice, id, recipient))

	clock.Current = 1540
	assert.Nil(t, ledger.ReleaseRevenue(alice, id, recipient))

	bal, err = ledger.Balance(recipient)
	assert.Nil(t, err)
	assert.Equal(t, int64(500000), bal)

	// Releasing the funds does not forget the recording.
	total, err = ledger.TotalRecorded()
	assert.Nil(t, err)
	assert.Equal(t, int64(500000), total)
	if _, err := ledger.RecordRevenue(alice, 7, 100, "USD"); !errors.ErrAlreadyRecorded.Is(err) {
		t.Fatalf("want already recorded, got %+v", err)
	}
}

func TestRecordRequiresAttestor(t *testing.T) {
	ledger, _ := newTestLedger(t, Options{})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	bob := ledgertest.NewIdentity()

	if _, err := ledger.RecordRevenue(alice, 1, 100, "USD"); !errors.ErrNotInitialized.Is(err) {
		t.Fatalf("want not initialized, got %+v", err)
	}

	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))
	if _, err := ledger.RecordRevenue(bob, 1, 100, "USD"); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}

	assert.IsErr(t, errors.ErrUnauthorized, ledger.RotateAttestor(bob, bob))
	assert.Nil(t, ledger.RotateAttestor(bob, alice))

	if _, err := ledger.RecordRevenue(alice, 1, 100, "USD"); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized after rotation, got %+v", err)
	}
	if _, err := ledger.RecordRevenue(bob, 1, 100, "USD"); err != nil {
		t.Fatalf("rotated attestor cannot record: %+v", err)
	}
}

func TestSupplyCeiling(t *testing.T) {
	conf := revenue.DefaultConfiguration()
	conf.MaxSupply = 1000
	ledger, _ := newTestLedger(t, Options{RevenueConf: &conf})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))

	_, err := ledger.RecordRevenue(alice, 1, 600, "USD")
	assert.Nil(t, err)
	if _, err := ledger.RecordRevenue(alice, 2, 600, "USD"); !errors.ErrSupplyExceeded.Is(err) {
		t.Fatalf("want supply exceeded, got %+v", err)
	}
	_, err = ledger.RecordRevenue(alice, 3, 400, "USD")
	assert.Nil(t, err)

	total, err := ledger.TotalRecorded()
	assert.Nil(t, err)
	assert.Equal(t, int64(1000), total)
}

func TestGovernanceFlow(t *testing.T) {
	ledger, _ := newTestLedger(t, Options{})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	recipient := ledgertest.NewIdentity()
	voters := []govledger.Identity{
		ledgertest.NewIdentity(),
		ledgertest.NewIdentity(),
		ledgertest.NewIdentity(),
	}

	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))
	_, err := ledger.RecordRevenue(alice, 1, 1000000, "OIL")
	assert.Nil(t, err)

	pid, err := ledger.SubmitProposal(voters[0], 300000, "pipeline maintenance")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), pid)

	prop, err := ledger.GetProposal(pid)
	assert.Nil(t, err)
	assert.Equal(t, proposal.StatusPending, prop.Status)

	assert.IsErr(t, errors.ErrNotApproved, ledger.Disburse(voters[0], pid, recipient))

	assert.Nil(t, ledger.CastVote(voters[0], pid, true))
	assert.Nil(t, ledger.CastVote(voters[1], pid, true))
	assert.Nil(t, ledger.CastVote(voters[2], pid, false))
	assert.IsErr(t, errors.ErrAlreadyVoted, ledger.CastVote(voters[0], pid, false))

	tally, err := ledger.GetTally(pid)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), tally.Yes)
	assert.Equal(t, int64(1), tally.No)

	approved, err := ledger.IsApproved(pid)
	assert.Nil(t, err)
	assert.Equal(t, true, approved)

	assert.Nil(t, ledger.Disburse(voters[0], pid, recipient))
	bal, err := ledger.Balance(recipient)
	assert.Nil(t, err)
	assert.Equal(t, int64(300000), bal)

	assert.Nil(t, ledger.UpdateProposalStatus(voters[0], pid, "Executed"))
	prop, err = ledger.GetProposal(pid)
	assert.Nil(t, err)
	assert.Equal(t, "Executed", prop.Status)
}

func TestEveryOperationAppendsOneAuditEntry(t *testing.T) {
	ledger, _ := newTestLedger(t, Options{})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	voter := ledgertest.NewIdentity()
	recipient := ledgertest.NewIdentity()

	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))

	audited := []func() error{
		func() error { _, err := ledger.RecordRevenue(alice, 1, 5000, "STX"); return err },
		func() error { _, err := ledger.SubmitProposal(voter, 1000, "supplies"); return err },
		func() error { return ledger.CastVote(voter, 0, true) },
		func() error { return ledger.Disburse(voter, 0, recipient) },
		func() error { return ledger.UpdateProposalStatus(voter, 0, "Executed") },
	}
	for i, op := range audited {
		before, err := ledger.AuditCount()
		assert.Nil(t, err)
		assert.Nil(t, op())
		after, err := ledger.AuditCount()
		assert.Nil(t, err)
		if after != before+1 {
			t.Fatalf("operation %d: audit count %d -> %d, want exactly one append", i, before, after)
		}
	}

	entries, err := ledger.ListAudit(0, 5)
	assert.Nil(t, err)
	assert.Equal(t, 5, len(entries))
	assert.Equal(t, "Revenue Recorded", entries[0].Label)
	assert.Equal(t, "Funds Disbursed", entries[3].Label)
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	ledger, _ := newTestLedger(t, Options{})
	voter := ledgertest.NewIdentity()

	_, err := ledger.SubmitProposal(voter, 1000, "first")
	assert.Nil(t, err)
	before, err := ledger.AuditCount()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), before)

	// The audit row is appended before the proposal is stored, so an
	// oversized description fails the operation after the append. The
	// staged row must not survive.
	if _, err := ledger.SubmitProposal(voter, 1000, strings.Repeat("x", 501)); err == nil {
		t.Fatal("want an error for an oversized description")
	}
	after, err := ledger.AuditCount()
	assert.Nil(t, err)
	assert.Equal(t, before, after)

	// Ids keep counting densely from where the last success left off.
	pid, err := ledger.SubmitProposal(voter, 1000, "second")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), pid)
}

func TestConfigurationFromOptions(t *testing.T) {
	conf := revenue.DefaultConfiguration()
	conf.LockPeriod = 10
	conf.Currencies = []string{"EUR"}
	ledger, clock := newTestLedger(t, Options{RevenueConf: &conf})
	consortium := ledgertest.NewIdentity()
	alice := ledgertest.NewIdentity()
	recipient := ledgertest.NewIdentity()

	assert.Nil(t, ledger.InitializeAttestor(alice, consortium))
	if _, err := ledger.RecordRevenue(alice, 1, 100, "USD"); !errors.ErrInvalidCurrency.Is(err) {
		t.Fatalf("want invalid currency, got %+v", err)
	}
	clock.Current = 5
	id, err := ledger.RecordRevenue(alice, 1, 100, "EUR")
	assert.Nil(t, err)

	clock.Current = 14
	assert.IsErr(t, errors.ErrLocked, ledger.ReleaseRevenue(alice, id, recipient))
	clock.Current = 15
	assert.Nil(t, ledger.ReleaseRevenue(alice, id, recipient))
}

func TestWallClockTicks(t *testing.T) {
	var c Clock = WallClock{}
	if c.Tick() <= 0 {
		t.Fatal("wall clock must be past the epoch")
	}
}
