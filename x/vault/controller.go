package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x/cash"

	"github.com/trivault/trivault/seal"
)

// Controller is the functionality needed by other extensions to operate on
// vaults. This is a subset of the functionality the vault messages expose.
type Controller interface {
	// IsRegistered returns true if the owner holds a vault account.
	IsRegistered(db weave.KVStore, owner weave.Address) (bool, error)

	// Signer returns the sealed identity of the co-signer with the given
	// index. Index is zero based.
	Signer(db weave.ReadOnlyKVStore, owner weave.Address, index int) (seal.Handle, error)

	// Signers returns the sealed identities of all co-signers of the
	// vault, in registration order.
	Signers(db weave.ReadOnlyKVStore, owner weave.Address) ([]seal.Handle, error)

	// CustodyAddress returns the address holding the funds deposited for
	// the owner.
	CustodyAddress(owner weave.Address) weave.Address

	// SealedBalance returns the handle of the owner's sealed balance. It
	// returns ErrNotFound if nothing was deposited yet.
	SealedBalance(db weave.ReadOnlyKVStore, owner weave.Address) (seal.Handle, error)

	// Covers returns true if the sealed balance of the owner is at least
	// the given amount.
	Covers(db weave.KVStore, owner weave.Address, amount coin.Coin) (bool, error)

	// Deposit moves the amount from the source wallet into the vault
	// custody and increases the owner's sealed balance.
	Deposit(db weave.KVStore, src weave.Address, owner weave.Address, amount coin.Coin) error

	// Withdraw decreases the owner's sealed balance and moves the amount
	// from the vault custody to the destination wallet.
	Withdraw(db weave.KVStore, owner weave.Address, dest weave.Address, amount coin.Coin) error
}

// BaseController implements the vault Controller interface on top of a seal
// service and the cash extension.
type BaseController struct {
	sealer   seal.Service
	bank     cash.CoinMover
	accounts orm.ModelBucket
	balances orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a Controller using the given seal service for
// balance arithmetic and the given bank for moving the actual coins.
func NewController(sealer seal.Service, bank cash.CoinMover) BaseController {
	return BaseController{
		sealer:   sealer,
		bank:     bank,
		accounts: NewAccountBucket(),
		balances: NewBalanceBucket(),
	}
}

func (c BaseController) IsRegistered(db weave.KVStore, owner weave.Address) (bool, error) {
	switch err := c.accounts.Has(db, owner); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (c BaseController) Signer(db weave.ReadOnlyKVStore, owner weave.Address, index int) (seal.Handle, error) {
	signers, err := c.Signers(db, owner)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(signers) {
		return nil, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	return signers[index], nil
}

func (c BaseController) Signers(db weave.ReadOnlyKVStore, owner weave.Address) ([]seal.Handle, error) {
	var account Account
	if err := c.accounts.One(db, owner, &account); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(ErrNotRegistered, owner.String())
		}
		return nil, err
	}
	return account.Signers, nil
}

func (c BaseController) CustodyAddress(owner weave.Address) weave.Address {
	return Condition(owner).Address()
}

func (c BaseController) SealedBalance(db weave.ReadOnlyKVStore, owner weave.Address) (seal.Handle, error) {
	var balance Balance
	if err := c.balances.One(db, owner, &balance); err != nil {
		return nil, err
	}
	return balance.Sealed, nil
}

func (c BaseController) Covers(db weave.KVStore, owner weave.Address, amount coin.Coin) (bool, error) {
	var balance Balance
	if err := c.balances.One(db, owner, &balance); err != nil {
		if errors.ErrNotFound.Is(err) {
			// Nothing deposited yet, only a zero amount is covered.
			return !amount.IsPositive(), nil
		}
		return false, err
	}
	return c.sealer.Covers(db, balance.Sealed, amount)
}

func (c BaseController) Deposit(db weave.KVStore, src weave.Address, owner weave.Address, amount coin.Coin) error {
	registered, err := c.IsRegistered(db, owner)
	if err != nil {
		return err
	}
	if !registered {
		return errors.Wrap(ErrNotRegistered, owner.String())
	}
	conf := mustLoadConf(db)
	if amount.Ticker != conf.Ticker {
		return errors.Wrapf(errors.ErrCurrency, "only %s deposits accepted", conf.Ticker)
	}

	if err := cash.MoveCoins(db, c.bank, src, c.CustodyAddress(owner), []*coin.Coin{&amount}); err != nil {
		return errors.Wrap(err, "cannot move coins to custody")
	}

	var balance Balance
	switch err := c.balances.One(db, owner, &balance); {
	case err == nil:
		// Balance exists, increase below.
	case errors.ErrNotFound.Is(err):
		sealed, err := c.sealer.SealCoin(db, coin.Coin{})
		if err != nil {
			return errors.Wrap(err, "cannot seal zero balance")
		}
		balance = Balance{
			Metadata: &weave.Metadata{Schema: 1},
			Sealed:   sealed,
		}
	default:
		return errors.Wrap(err, "cannot load balance")
	}

	sealed, err := c.sealer.Add(db, balance.Sealed, amount)
	if err != nil {
		return errors.Wrap(err, "cannot increase sealed balance")
	}
	balance.Sealed = sealed
	if _, err := c.balances.Put(db, owner, &balance); err != nil {
		return errors.Wrap(err, "cannot store balance")
	}
	return nil
}

func (c BaseController) Withdraw(db weave.KVStore, owner weave.Address, dest weave.Address, amount coin.Coin) error {
	var balance Balance
	if err := c.balances.One(db, owner, &balance); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrap(ErrInsufficientBalance, "nothing deposited")
		}
		return errors.Wrap(err, "cannot load balance")
	}

	ok, err := c.sealer.Covers(db, balance.Sealed, amount)
	if err != nil {
		return errors.Wrap(err, "cannot compare sealed balance")
	}
	if !ok {
		return ErrInsufficientBalance
	}

	sealed, err := c.sealer.Subtract(db, balance.Sealed, amount)
	if err != nil {
		return errors.Wrap(err, "cannot decrease sealed balance")
	}
	balance.Sealed = sealed
	if _, err := c.balances.Put(db, owner, &balance); err != nil {
		return errors.Wrap(err, "cannot store balance")
	}

	if err := cash.MoveCoins(db, c.bank, c.CustodyAddress(owner), dest, []*coin.Coin{&amount}); err != nil {
		return errors.Wrap(err, "cannot move coins from custody")
	}
	return nil
}
