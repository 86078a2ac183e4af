package withdraw

import (
	"bytes"
	"encoding/hex"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/trivault/trivault/seal"
	"github.com/trivault/trivault/x/vault"
)

const (
	setLimitCost int64 = 50
	createCost   int64 = 300
	revealCost   int64 = 200
	executeCost  int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, sealer seal.Service, vaults vault.Controller) {
	r = migration.SchemaMigratingRegistry("withdraw", r)

	r.Handle(&SetLimitMsg{}, SetLimitHandler{
		auth:   auth,
		limits: NewLimitBucket(),
	})
	r.Handle(&CreateMsg{}, CreateHandler{
		auth:         auth,
		sealer:       sealer,
		vaults:       vaults,
		requests:     NewRequestBucket(),
		correlations: NewCorrelationBucket(),
	})
	r.Handle(&SubmitRevealMsg{}, SubmitRevealHandler{
		auth:         auth,
		limits:       NewLimitBucket(),
		requests:     NewRequestBucket(),
		correlations: NewCorrelationBucket(),
	})
	r.Handle(&ExecuteMsg{}, ExecuteHandler{
		auth:         auth,
		vaults:       vaults,
		requests:     NewRequestBucket(),
		correlations: NewCorrelationBucket(),
	})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// SetLimitHandler stores the withdrawal allowance of a co-signer.
type SetLimitHandler struct {
	auth   x.Authenticator
	limits orm.ModelBucket
}

var _ weave.Handler = SetLimitHandler{}

func (h SetLimitHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: setLimitCost}, nil
}

func (h SetLimitHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	limit := &Limit{
		Metadata: &weave.Metadata{Schema: 1},
		Signer:   msg.Signer,
		Cap:      msg.Cap,
		Deadline: msg.Deadline,
	}
	// Setting a limit twice overwrites the previous allowance.
	if _, err := h.limits.Put(db, msg.Signer, limit); err != nil {
		return nil, errors.Wrap(err, "cannot store limit")
	}

	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("limit-set")},
			{Key: []byte("signer"), Value: []byte(msg.Signer.String())},
		},
	}
	return res, nil
}

func (h SetLimitHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetLimitMsg, error) {
	var msg SetLimitMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Signer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the signer can declare a limit")
	}
	if weave.IsExpired(ctx, msg.Deadline) {
		return nil, errors.Wrap(errors.ErrInput, "deadline in the past")
	}
	return &msg, nil
}

// CreateHandler opens a withdrawal request and schedules the identity
// reveal.
type CreateHandler struct {
	auth         x.Authenticator
	sealer       seal.Service
	vaults       vault.Controller
	requests     orm.ModelBucket
	correlations orm.ModelBucket
}

var _ weave.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// A denied request is replaced. Its correlation id must not resolve
	// to the new request.
	var old Request
	switch err := h.requests.One(db, owner, &old); {
	case err == nil:
		if err := h.correlations.Delete(db, old.CorrelationId); err != nil && !errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(err, "cannot drop old correlation")
		}
	case errors.ErrNotFound.Is(err):
		// First request of this owner.
	default:
		return nil, errors.Wrap(err, "cannot load request")
	}

	handles, err := h.vaults.Signers(db, owner)
	if err != nil {
		return nil, err
	}
	correlationID, err := h.sealer.RequestReveal(db, owner, handles)
	if err != nil {
		return nil, errors.Wrap(err, "cannot request reveal")
	}

	request := &Request{
		Metadata:      &weave.Metadata{Schema: 1},
		Owner:         owner,
		Amount:        msg.Amount,
		CorrelationId: correlationID,
		State:         RequestStatePending,
	}
	if _, err := h.requests.Put(db, owner, request); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}
	correlation := &Correlation{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    owner,
	}
	if _, err := h.correlations.Put(db, correlationID, correlation); err != nil {
		return nil, errors.Wrap(err, "cannot store correlation")
	}

	res := &weave.DeliverResult{
		Data: correlationID,
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("reveal-requested")},
			{Key: []byte("owner"), Value: []byte(owner.String())},
			{Key: []byte("correlation"), Value: []byte(hex.EncodeToString(correlationID))},
		},
	}
	return res, nil
}

func (h CreateHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateMsg, weave.Address, error) {
	var msg CreateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	owner := x.AnySigner(ctx, h.auth).Address()
	if owner == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}

	registered, err := h.vaults.IsRegistered(db, owner)
	if err != nil {
		return nil, nil, err
	}
	if !registered {
		return nil, nil, errors.Wrap(vault.ErrNotRegistered, owner.String())
	}

	var existing Request
	switch err := h.requests.One(db, owner, &existing); {
	case err == nil:
		switch existing.State {
		case RequestStatePending:
			return nil, nil, errors.Wrap(ErrPendingRequest, "reveal not processed yet")
		case RequestStateAuthorized:
			return nil, nil, errors.Wrap(ErrPendingRequest, "authorized request not executed yet")
		}
		// A denied request is replaced.
	case errors.ErrNotFound.Is(err):
		// First request of this owner.
	default:
		return nil, nil, errors.Wrap(err, "cannot load request")
	}

	// Fail early when the sealed balance cannot cover the withdrawal.
	ok, err := h.vaults.Covers(db, owner, *msg.Amount)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, vault.ErrInsufficientBalance
	}

	return &msg, owner, nil
}

// SubmitRevealHandler processes the oracle callback carrying the revealed
// co-signer identities.
type SubmitRevealHandler struct {
	auth         x.Authenticator
	limits       orm.ModelBucket
	requests     orm.ModelBucket
	correlations orm.ModelBucket
}

var _ weave.Handler = SubmitRevealHandler{}

func (h SubmitRevealHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: revealCost}, nil
}

func (h SubmitRevealHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var correlation Correlation
	if err := h.correlations.One(db, msg.CorrelationId, &correlation); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(ErrUnknownRequest, hex.EncodeToString(msg.CorrelationId))
		}
		return nil, errors.Wrap(err, "cannot load correlation")
	}
	var request Request
	if err := h.requests.One(db, correlation.Owner, &request); err != nil {
		return nil, errors.Wrap(err, "cannot load request")
	}
	if !bytes.Equal(request.CorrelationId, msg.CorrelationId) {
		return nil, errors.Wrap(ErrUnknownRequest, "correlation id does not match the request")
	}

	if request.State != RequestStatePending {
		// A duplicate callback must not change any state. Limits stay
		// untouched and the recorded outcome stands.
		return nil, errors.Wrap(ErrInvalidRequestState, "callback already processed")
	}

	// The request is authorized only if every revealed co-signer declared
	// a live limit covering the amount. All limits involved are consumed
	// by this decision, authorized or not.
	authorized := true
	for _, signer := range msg.Signers {
		var limit Limit
		switch err := h.limits.One(db, signer, &limit); {
		case err == nil:
			if weave.IsExpired(ctx, limit.Deadline) {
				authorized = false
			} else if limit.Cap == nil || !limit.Cap.IsGTE(*request.Amount) {
				authorized = false
			}
			if err := h.limits.Delete(db, signer); err != nil {
				return nil, errors.Wrap(err, "cannot consume limit")
			}
		case errors.ErrNotFound.Is(err):
			authorized = false
		default:
			return nil, errors.Wrap(err, "cannot load limit")
		}
	}

	if authorized {
		request.State = RequestStateAuthorized
	} else {
		request.State = RequestStateDenied
	}
	if _, err := h.requests.Put(db, correlation.Owner, &request); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}

	outcome := "denied"
	if authorized {
		outcome = "authorized"
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("reveal-processed")},
			{Key: []byte("correlation"), Value: []byte(hex.EncodeToString(msg.CorrelationId))},
			{Key: []byte("outcome"), Value: []byte(outcome)},
		},
	}
	return res, nil
}

func (h SubmitRevealHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SubmitRevealMsg, error) {
	var msg SubmitRevealMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	// Any account may relay the callback, the proof is what counts.
	if !verifyProof(conf.OraclePubkey, &msg) {
		return nil, ErrInvalidProof
	}
	return &msg, nil
}

// ExecuteHandler moves the funds of an authorized request.
type ExecuteHandler struct {
	auth         x.Authenticator
	vaults       vault.Controller
	requests     orm.ModelBucket
	correlations orm.ModelBucket
}

var _ weave.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: executeCost}, nil
}

func (h ExecuteHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	_, request, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// Drop the request before moving funds so that a reentrant execution
	// cannot pass the validation above. The correlation record dies with
	// it, a late callback must not resolve anymore.
	if err := h.correlations.Delete(db, request.CorrelationId); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, errors.Wrap(err, "cannot drop correlation")
	}
	if err := h.requests.Delete(db, request.Owner); err != nil {
		return nil, errors.Wrap(err, "cannot drop request")
	}

	if err := h.vaults.Withdraw(db, request.Owner, request.Owner, *request.Amount); err != nil {
		return nil, err
	}

	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("trivault"), Value: []byte("withdrawal-executed")},
			{Key: []byte("owner"), Value: []byte(request.Owner.String())},
			{Key: []byte("amount"), Value: []byte(request.Amount.String())},
		},
	}
	return res, nil
}

func (h ExecuteHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ExecuteMsg, *Request, error) {
	var msg ExecuteMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the owner can execute")
	}

	var request Request
	if err := h.requests.One(db, msg.Owner, &request); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, nil, errors.Wrap(ErrNoRequest, msg.Owner.String())
		}
		return nil, nil, errors.Wrap(err, "cannot load request")
	}
	switch request.State {
	case RequestStateAuthorized:
		// Good to go.
	case RequestStatePending:
		return nil, nil, errors.Wrap(ErrRevealPending, "callback not processed yet")
	case RequestStateDenied:
		return nil, nil, ErrNotAuthorized
	default:
		return nil, nil, errors.Wrapf(ErrInvalidRequestState, "state %v", request.State)
	}

	return &msg, &request, nil
}

// NewConfigHandler returns a handler for the configuration update message.
func NewConfigHandler(auth x.Authenticator) weave.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler("withdraw", &conf, auth, migration.CurrentAdmin)
}
