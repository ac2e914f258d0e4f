// Package distribution implements the disbursement orchestrator: it
// cross-checks that a proposal exists and currently holds threshold
// approval, then moves the proposal's amount from the treasury to the
// recipient. It never writes proposal or vote state.
package distribution

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/x/audit"
	"github.com/petrodao/govledger/x/cash"
	"github.com/petrodao/govledger/x/proposal"
)

// ApprovalChecker is the read-only view of the voting tally this
// package needs. Implemented by the x/vote controller.
type ApprovalChecker interface {
	IsApproved(db govledger.ReadOnlyKVStore, proposalID int64) (bool, error)
}

// Controller orchestrates disbursements.
type Controller struct {
	proposals proposal.Reader
	approvals ApprovalChecker
	auditlog  audit.Sink
	cash      cash.Controller
}

func NewController(proposals proposal.Reader, approvals ApprovalChecker, auditlog audit.Sink, cashCtrl cash.Controller) *Controller {
	return &Controller{
		proposals: proposals,
		approvals: approvals,
		auditlog:  auditlog,
		cash:      cashCtrl,
	}
}

// Disburse transfers the proposal's amount from the treasury to the
// recipient. A missing proposal and a proposal without approval fail
// the same way: the action is simply not approved. Whether a matching
// revenue entry ever backed the amount is deliberately not checked;
// the treasury balance is the only funding guard.
func (c *Controller) Disburse(db govledger.KVStore, tick govledger.Tick, proposalID int64, recipient govledger.Identity) error {
	prop, err := c.proposals.Get(db, proposalID)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrNotApproved, "no proposal %d", proposalID)
		}
		return err
	}
	approved, err := c.approvals.IsApproved(db, proposalID)
	if err != nil {
		return err
	}
	if !approved {
		return errors.Wrapf(errors.ErrNotApproved, "proposal %d", proposalID)
	}
	if err := c.cash.MoveCoins(db, cash.Treasury, recipient, prop.Amount); err != nil {
		return err
	}
	if _, err := c.auditlog.LogEvent(db, tick, "Funds Disbursed", prop.Amount, recipient); err != nil {
		return errors.Wrap(err, "audit")
	}
	return nil
}
