package cash

import (
	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/orm"
)

// Controller is the capability other extensions hold to manage
// balances without direct access to the wallet bucket.
type Controller interface {
	IssueCoins(db govledger.KVStore, dest govledger.Identity, amount int64) error
	MoveCoins(db govledger.KVStore, src, dest govledger.Identity, amount int64) error
	Balance(db govledger.ReadOnlyKVStore, account govledger.Identity) (int64, error)
}

// CashController implements Controller over a wallet bucket.
type CashController struct {
	bucket orm.ModelBucket
}

var _ Controller = CashController{}

func NewController() CashController {
	return CashController{
		bucket: orm.NewModelBucket("cash"),
	}
}

// IssueCoins mints the given amount into the destination account,
// creating the wallet if needed.
func (c CashController) IssueCoins(db govledger.KVStore, dest govledger.Identity, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "mint amount must be positive")
	}
	wallet, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if wallet.Balance+amount < wallet.Balance {
		return errors.Wrapf(errors.ErrState, "balance overflow for %q", dest)
	}
	wallet.Balance += amount
	return c.bucket.Put(db, []byte(dest), wallet)
}

// MoveCoins debits src and credits dest by the given amount, as one
// unit. It fails with ErrInsufficientBalance when src cannot cover
// the amount, leaving both wallets untouched.
func (c CashController) MoveCoins(db govledger.KVStore, src, dest govledger.Identity, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "transfer amount must be positive")
	}
	sender, err := c.wallet(db, src)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientBalance, "%q holds %d, needs %d", src, sender.Balance, amount)
	}
	if src.Equals(dest) {
		return nil
	}
	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance+amount < recipient.Balance {
		return errors.Wrapf(errors.ErrState, "balance overflow for %q", dest)
	}
	sender.Balance -= amount
	recipient.Balance += amount
	if err := c.bucket.Put(db, []byte(src), sender); err != nil {
		return err
	}
	return c.bucket.Put(db, []byte(dest), recipient)
}

// Balance returns the balance of any account. Accounts that never
// received funds report zero.
func (c CashController) Balance(db govledger.ReadOnlyKVStore, account govledger.Identity) (int64, error) {
	var wallet Wallet
	switch err := c.bucket.One(db, []byte(account), &wallet); {
	case err == nil:
		return wallet.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c CashController) wallet(db govledger.ReadOnlyKVStore, account govledger.Identity) (*Wallet, error) {
	var wallet Wallet
	err := c.bucket.One(db, []byte(account), &wallet)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return nil, err
	}
	return &wallet, nil
}
