package vote

import (
	"testing"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/ledgertest"
	"github.com/petrodao/govledger/ledgertest/assert"
	"github.com/petrodao/govledger/x/audit"
	"github.com/petrodao/govledger/x/proposal"
)

func newFixture(t *testing.T) (govledger.CacheableKVStore, *Controller, int64) {
	t.Helper()
	db := ledgertest.Store()
	auditlog := audit.NewController()
	proposals := proposal.NewController(auditlog)
	ctrl := NewController(proposals, auditlog)
	if err := ctrl.InitConfiguration(db, DefaultConfiguration()); err != nil {
		t.Fatal(err)
	}
	id, err := proposals.Submit(db, 1, ledgertest.NewIdentity(), 1000, "well upkeep")
	if err != nil {
		t.Fatal(err)
	}
	return db, ctrl, id
}

func TestVote(t *testing.T) {
	db, ctrl, pid := newFixture(t)
	voter := ledgertest.NewIdentity()

	assert.Nil(t, ctrl.Vote(db, 5, voter, pid, true))

	voted, err := ctrl.HasVoted(db, pid, voter)
	assert.Nil(t, err)
	assert.Equal(t, true, voted)

	tally, err := ctrl.Tally(db, pid)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), tally.Yes)
	assert.Equal(t, int64(0), tally.No)
}

func TestVoteUnknownProposal(t *testing.T) {
	db, ctrl, _ := newFixture(t)
	err := ctrl.Vote(db, 5, ledgertest.NewIdentity(), 99, true)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestVoteOncePerPrincipal(t *testing.T) {
	db, ctrl, pid := newFixture(t)
	voter := ledgertest.NewIdentity()

	assert.Nil(t, ctrl.Vote(db, 5, voter, pid, true))
	err := ctrl.Vote(db, 6, voter, pid, false)
	assert.IsErr(t, errors.ErrAlreadyVoted, err)

	// Tally unchanged by the rejected second vote.
	tally, _ := ctrl.Tally(db, pid)
	assert.Equal(t, int64(1), tally.Yes)
	assert.Equal(t, int64(0), tally.No)

	// A different principal still may vote.
	assert.Nil(t, ctrl.Vote(db, 7, ledgertest.NewIdentity(), pid, false))
	tally, _ = ctrl.Tally(db, pid)
	assert.Equal(t, int64(1), tally.No)
}

func TestIsApproved(t *testing.T) {
	cases := map[string]struct {
		yes, no      int
		wantApproved bool
	}{
		"no votes at all":     {0, 0, false},
		"single yes":          {1, 0, true},
		"single no":           {0, 1, false},
		"tie at exactly 50%":  {1, 1, false},
		"two thirds in favor": {2, 1, true},
		"minority in favor":   {1, 2, false},
		"larger tie":          {3, 3, false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db, ctrl, pid := newFixture(t)
			for i := 0; i < tc.yes; i++ {
				assert.Nil(t, ctrl.Vote(db, 5, ledgertest.NewIdentity(), pid, true))
			}
			for i := 0; i < tc.no; i++ {
				assert.Nil(t, ctrl.Vote(db, 5, ledgertest.NewIdentity(), pid, false))
			}
			approved, err := ctrl.IsApproved(db, pid)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantApproved, approved)
		})
	}
}

func TestIsApprovedUnknownProposal(t *testing.T) {
	db, ctrl, _ := newFixture(t)
	approved, err := ctrl.IsApproved(db, 99)
	assert.Nil(t, err)
	assert.Equal(t, false, approved)
}

func TestVoteAbortsWhenAuditFails(t *testing.T) {
	db := ledgertest.Store()
	okAudit := audit.NewController()
	proposals := proposal.NewController(okAudit)
	sink := &ledgertest.FailingSink{Err: errors.ErrDatabase.New("down")}
	ctrl := NewController(proposals, sink)
	if err := ctrl.InitConfiguration(db, DefaultConfiguration()); err != nil {
		t.Fatal(err)
	}
	pid, err := proposals.Submit(db, 1, ledgertest.NewIdentity(), 100, "x")
	if err != nil {
		t.Fatal(err)
	}
	voter := ledgertest.NewIdentity()

	cache := db.CacheWrap()
	err = ctrl.Vote(cache, 5, voter, pid, true)
	assert.IsErr(t, errors.ErrDatabase, err)
	cache.Discard()

	voted, _ := ctrl.HasVoted(db, pid, voter)
	assert.Equal(t, false, voted)
	tally, _ := ctrl.Tally(db, pid)
	assert.Equal(t, int64(0), tally.Total())
}
