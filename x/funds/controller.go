package funds

import (
	"math"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

// Controller is the functionality needed by handlers that settle token
// movements. This can be accessed over this interface so other extensions
// depend on the behavior, not the storage layout.
type Controller interface {
	// MoveFunds transfers amount from the source to the destination
	// wallet. It fails on zero amounts, on insufficient balance of the
	// source and on overflow of the destination.
	MoveFunds(db treasury.KVStore, src, dest treasury.Address, amount uint64) error

	// IssueFunds credits amount to the destination wallet out of thin
	// air. Used by the genesis initialization.
	IssueFunds(db treasury.KVStore, dest treasury.Address, amount uint64) error

	// Balance returns the current balance of the given address.
	Balance(db treasury.ReadOnlyKVStore, addr treasury.Address) (uint64, error)
}

// BaseController is a simple implementation of Controller
// backed by a WalletBucket.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation
func NewController(bucket WalletBucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveFunds moves the given amount from src to dest.
// If an error occurs, no state is committed by this call.
func (c BaseController) MoveFunds(db treasury.KVStore, src, dest treasury.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer not allowed")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(ErrInsufficientFunds, "no wallet for %s", src)
	}
	srcWallet := AsWallet(sender)
	if srcWallet.Balance < amount {
		return errors.Wrapf(ErrInsufficientFunds, "balance %d, requested %d", srcWallet.Balance, amount)
	}

	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	destWallet := AsWallet(recipient)
	if destWallet.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}

	srcWallet.Balance -= amount
	destWallet.Balance += amount

	if err := c.bucket.Save(db, sender); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// IssueFunds credits the destination wallet with the given amount.
func (c BaseController) IssueFunds(db treasury.KVStore, dest treasury.Address, amount uint64) error {
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	wallet := AsWallet(recipient)
	if wallet.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	wallet.Balance += amount

	return c.bucket.Save(db, recipient)
}

// Balance returns the balance of the given address.
func (c BaseController) Balance(db treasury.ReadOnlyKVStore, addr treasury.Address) (uint64, error) {
	return c.bucket.Balance(db, addr)
}
