package app

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/x/attestor"
	"github.com/petrodao/govledger/x/audit"
	"github.com/petrodao/govledger/x/cash"
	"github.com/petrodao/govledger/x/distribution"
	"github.com/petrodao/govledger/x/proposal"
	"github.com/petrodao/govledger/x/revenue"
	"github.com/petrodao/govledger/x/vote"
)

// Options configure a Ledger. Store is required, everything else has
// a sensible default.
type Options struct {
	Store    govledger.CacheableKVStore
	Clock    Clock
	Logger   *slog.Logger
	Registry prometheus.Registerer

	// RevenueConf and VoteConf are persisted on first start only:
	// once a store holds a configuration, it wins.
	RevenueConf *revenue.Configuration
	VoteConf    *vote.Configuration
}

// Ledger is the public face of the system. Every mutating operation
// appends to the audit trail before it reports success, runs
// all-or-nothing, and is serialized against all others.
type Ledger struct {
	mu      sync.Mutex
	store   govledger.CacheableKVStore
	clock   Clock
	logger  *slog.Logger
	metrics *metrics

	attestors    attestor.Controller
	auditlog     *audit.Controller
	cash         cash.CashController
	revenues     *revenue.Controller
	proposals    *proposal.Controller
	votes        *vote.Controller
	distribution *distribution.Controller
}

// NewLedger wires the extensions over the given store and persists
// the initial configurations if the store holds none yet.
func NewLedger(opts Options) (*Ledger, error) {
	if opts.Store == nil {
		return nil, errors.Wrap(errors.ErrHuman, "store is required")
	}
	if opts.Clock == nil {
		opts.Clock = WallClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	attestors := attestor.NewController()
	auditlog := audit.NewController()
	cashCtrl := cash.NewController()
	proposals := proposal.NewController(auditlog)
	votes := vote.NewController(proposals, auditlog)
	revenues := revenue.NewController(attestors, auditlog, cashCtrl)
	dist := distribution.NewController(proposals, votes, auditlog, cashCtrl)

	l := &Ledger{
		store:        opts.Store,
		clock:        opts.Clock,
		logger:       opts.Logger.With("component", "ledger"),
		metrics:      newMetrics(opts.Registry),
		attestors:    attestors,
		auditlog:     auditlog,
		cash:         cashCtrl,
		revenues:     revenues,
		proposals:    proposals,
		votes:        votes,
		distribution: dist,
	}

	revenueConf := revenue.DefaultConfiguration()
	if opts.RevenueConf != nil {
		revenueConf = *opts.RevenueConf
	}
	voteConf := vote.DefaultConfiguration()
	if opts.VoteConf != nil {
		voteConf = *opts.VoteConf
	}
	err := l.exec("init", func(db govledger.KVStore, tick govledger.Tick) error {
		if err := revenues.InitConfiguration(db, revenueConf); err != nil {
			return err
		}
		return votes.InitConfiguration(db, voteConf)
	})
	if err != nil {
		return nil, errors.Wrap(err, "init configuration")
	}
	return l, nil
}

// exec runs one mutating operation inside a fresh cache-wrap. On any
// failure, including a panic below, every staged write is discarded.
func (l *Ledger) exec(op string, fn func(db govledger.KVStore, tick govledger.Tick) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tick := l.clock.Tick()
	cache := l.store.CacheWrap()

	err := func() (err error) {
		defer errors.Recover(&err)
		return fn(cache, tick)
	}()

	if err != nil {
		cache.Discard()
	} else if werr := cache.Write(); werr != nil {
		err = errors.Wrapf(werr, "commit %s", op)
	}

	l.metrics.observe(op, err)
	if err != nil {
		l.logger.Warn("operation rejected", "op", op, "tick", int64(tick), "err", err)
	} else {
		l.logger.Info("operation applied", "op", op, "tick", int64(tick))
	}
	return err
}

// InitializeAttestor sets the attestor slot for the first time.
func (l *Ledger) InitializeAttestor(initial, caller govledger.Identity) error {
	return l.exec("attestor_init", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.attestors.Initialize(db, initial, caller)
	})
}

// RotateAttestor replaces the attestor; only the current one may.
func (l *Ledger) RotateAttestor(next, caller govledger.Identity) error {
	return l.exec("attestor_rotate", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.attestors.Rotate(db, next, caller)
	})
}

// RecordRevenue records an attested revenue event and returns the
// assigned entry id.
func (l *Ledger) RecordRevenue(caller govledger.Identity, sourceID, amount int64, currency string) (int64, error) {
	var id int64
	err := l.exec("revenue_record", func(db govledger.KVStore, tick govledger.Tick) error {
		var err error
		id, err = l.revenues.Record(db, tick, caller, sourceID, amount, currency)
		return err
	})
	return id, err
}

// ReleaseRevenue releases an unlocked entry's funds to the recipient.
func (l *Ledger) ReleaseRevenue(caller govledger.Identity, entryID int64, recipient govledger.Identity) error {
	return l.exec("revenue_release", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.revenues.Release(db, tick, caller, entryID, recipient)
	})
}

// SubmitProposal creates a disbursement proposal and returns its id.
func (l *Ledger) SubmitProposal(caller govledger.Identity, amount int64, description string) (int64, error) {
	var id int64
	err := l.exec("proposal_submit", func(db govledger.KVStore, tick govledger.Tick) error {
		var err error
		id, err = l.proposals.Submit(db, tick, caller, amount, description)
		return err
	})
	return id, err
}

// UpdateProposalStatus rewrites a proposal's status label.
func (l *Ledger) UpdateProposalStatus(caller govledger.Identity, proposalID int64, status string) error {
	return l.exec("proposal_status", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.proposals.UpdateStatus(db, tick, caller, proposalID, status)
	})
}

// CastVote records the caller's vote on a proposal.
func (l *Ledger) CastVote(caller govledger.Identity, proposalID int64, choice bool) error {
	return l.exec("vote_cast", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.votes.Vote(db, tick, caller, proposalID, choice)
	})
}

// Disburse pays out an approved proposal to the recipient.
func (l *Ledger) Disburse(caller govledger.Identity, proposalID int64, recipient govledger.Identity) error {
	return l.exec("disburse", func(db govledger.KVStore, tick govledger.Tick) error {
		return l.distribution.Disburse(db, tick, proposalID, recipient)
	})
}

// Read-only queries run against the committed store directly.

func (l *Ledger) CurrentAttestor() (govledger.Identity, error) {
	return l.attestors.Current(l.store)
}

func (l *Ledger) GetRevenueEntry(entryID int64) (*revenue.Entry, error) {
	return l.revenues.GetEntry(l.store, entryID)
}

func (l *Ledger) TotalRecorded() (int64, error) {
	return l.revenues.TotalRecorded(l.store)
}

func (l *Ledger) IsSourceUsed(by govledger.Identity, sourceID int64) (bool, error) {
	return l.revenues.IsSourceUsed(l.store, by, sourceID)
}

func (l *Ledger) GetProposal(proposalID int64) (*proposal.Proposal, error) {
	return l.proposals.Get(l.store, proposalID)
}

func (l *Ledger) GetTally(proposalID int64) (*vote.Tally, error) {
	return l.votes.Tally(l.store, proposalID)
}

func (l *Ledger) IsApproved(proposalID int64) (bool, error) {
	return l.votes.IsApproved(l.store, proposalID)
}

func (l *Ledger) GetAuditEntry(id int64) (*audit.Entry, error) {
	return l.auditlog.GetEntry(l.store, id)
}

func (l *Ledger) AuditCount() (int64, error) {
	return l.auditlog.Count(l.store)
}

func (l *Ledger) ListAudit(from, to int64) ([]audit.Entry, error) {
	return l.auditlog.List(l.store, from, to)
}

func (l *Ledger) Balance(account govledger.Identity) (int64, error) {
	return l.cash.Balance(l.store, account)
}
