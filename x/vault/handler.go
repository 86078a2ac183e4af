package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/trivault/trivault/seal"
)

const (
	registerCost int64 = 300
	depositCost  int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, sealer seal.Service, bank cash.CoinMover) {
	r = migration.SchemaMigratingRegistry("vault", r)

	r.Handle(&RegisterMsg{}, RegisterHandler{
		auth:     auth,
		sealer:   sealer,
		accounts: NewAccountBucket(),
	})
	r.Handle(&DepositMsg{}, DepositHandler{
		auth: auth,
		ctrl: NewController(sealer, bank),
	})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// RegisterHandler creates a vault account for the main signer.
type RegisterHandler struct {
	auth     x.Authenticator
	sealer   seal.Service
	accounts orm.ModelBucket
}

var _ weave.Handler = RegisterHandler{}

func (h RegisterHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: registerCost}, nil
}

func (h RegisterHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Metadata: &weave.Metadata{Schema: 1},
		Signers:  msg.Signers,
	}
	if _, err := h.accounts.Put(db, owner, account); err != nil {
		return nil, errors.Wrap(err, "cannot store account")
	}

	// The owner and the custody must be able to request a reveal of the
	// co-signer identities during withdrawal authorization.
	custody := Condition(owner).Address()
	for i, s := range msg.Signers {
		if err := h.sealer.Grant(db, s, owner); err != nil {
			return nil, errors.Wrapf(err, "cannot grant signer %d to owner", i)
		}
		if err := h.sealer.Grant(db, s, custody); err != nil {
			return nil, errors.Wrapf(err, "cannot grant signer %d to custody", i)
		}
	}

	res := &weave.DeliverResult{
		Data: owner,
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("account-registered")},
			{Key: []byte("owner"), Value: []byte(owner.String())},
		},
	}
	return res, nil
}

func (h RegisterHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RegisterMsg, weave.Address, error) {
	var msg RegisterMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	owner := x.AnySigner(ctx, h.auth).Address()
	if owner == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}

	switch err := h.accounts.Has(db, owner); {
	case err == nil:
		return nil, nil, errors.Wrap(ErrAlreadyRegistered, owner.String())
	case errors.ErrNotFound.Is(err):
		// Owner is free.
	default:
		return nil, nil, errors.Wrap(err, "cannot check account")
	}

	return &msg, owner, nil
}

// DepositHandler moves funds from the transaction signer into a vault.
type DepositHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ weave.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: depositCost}, nil
}

func (h DepositHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, src, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if err := h.ctrl.Deposit(db, src, msg.Owner, *msg.Amount); err != nil {
		return nil, err
	}

	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("funds-deposited")},
			{Key: []byte("owner"), Value: []byte(msg.Owner.String())},
			{Key: []byte("amount"), Value: []byte(msg.Amount.String())},
		},
	}
	return res, nil
}

func (h DepositHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*DepositMsg, weave.Address, error) {
	var msg DepositMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	src := x.AnySigner(ctx, h.auth).Address()
	if src == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}

	return &msg, src, nil
}

// NewConfigHandler returns a handler for the configuration update message.
func NewConfigHandler(auth x.Authenticator) weave.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler("vault", &conf, auth, migration.CurrentAdmin)
}
