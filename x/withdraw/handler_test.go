package withdraw_test

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trivault/trivault/seal"
	"github.com/trivault/trivault/seal/sealtest"
	"github.com/trivault/trivault/x/vault"
	"github.com/trivault/trivault/x/withdraw"
)

var blockNow = time.Now().UTC()

// fixture wires the vault and withdraw routers together with an in memory
// database, a mock seal service and a funded cash controller.
type fixture struct {
	db      weave.CacheableKVStore
	router  *app.Router
	authKey *weavetest.CtxAuth
	sealer  *sealtest.Service
	cash    cash.BaseController
	oracle  *crypto.PrivateKey

	owner   weave.Condition
	signers []weave.Condition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := store.MemStore()
	migration.MustInitPkg(db, "vault", "withdraw", "cash")

	oracle := crypto.PrivKeyEd25519FromSeed([]byte("oracle-seed-0000000000000000000z"))

	vaultConf := vault.Configuration{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    weavetest.NewCondition().Address(),
		Ticker:   "IOV",
	}
	require.NoError(t, gconf.Save(db, "vault", &vaultConf))
	withdrawConf := withdraw.Configuration{
		Metadata:     &weave.Metadata{Schema: 1},
		Owner:        weavetest.NewCondition().Address(),
		OraclePubkey: oracle.PublicKey().GetEd25519(),
	}
	require.NoError(t, gconf.Save(db, "withdraw", &withdrawConf))

	sealer := sealtest.NewService()
	bank := cash.NewBucket()
	ctrl := cash.NewController(bank)
	vaults := vault.NewController(sealer, ctrl)

	r := app.NewRouter()
	authKey := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authKey)
	vault.RegisterRoutes(r, auth, sealer, ctrl)
	withdraw.RegisterRoutes(r, auth, sealer, vaults)

	return &fixture{
		db:      db,
		router:  r,
		authKey: authKey,
		sealer:  sealer,
		cash:    ctrl,
		oracle:  oracle,
		owner:   weavetest.NewCondition(),
		signers: []weave.Condition{
			weavetest.NewCondition(),
			weavetest.NewCondition(),
			weavetest.NewCondition(),
		},
	}
}

func (f *fixture) ctx(conditions ...weave.Condition) weave.Context {
	ctx := weave.WithHeight(context.Background(), 100)
	ctx = weave.WithBlockTime(ctx, blockNow)
	return f.authKey.SetConditions(ctx, conditions...)
}

// registerVault creates the owner's vault. Every co-signer identity is
// sealed the way the off chain client does it before registration.
func (f *fixture) registerVault(t *testing.T) {
	t.Helper()
	handles := make([]seal.Handle, len(f.signers))
	for i, s := range f.signers {
		h, err := f.sealer.SealBytes(f.db, s.Address())
		require.NoError(t, err)
		handles[i] = h
	}
	msg := vault.RegisterMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signers:  handles,
	}
	_, err := f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &msg})
	require.NoError(t, err)
}

func (f *fixture) deposit(t *testing.T, amount coin.Coin) {
	t.Helper()
	require.NoError(t, f.cash.CoinMint(f.db, f.owner.Address(), amount))
	msg := vault.DepositMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    f.owner.Address(),
		Amount:   &amount,
	}
	_, err := f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &msg})
	require.NoError(t, err)
}

func (f *fixture) setLimit(t *testing.T, signer weave.Condition, cap coin.Coin, deadline weave.UnixTime) {
	t.Helper()
	msg := withdraw.SetLimitMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signer:   signer.Address(),
		Cap:      &cap,
		Deadline: deadline,
	}
	_, err := f.router.Deliver(f.ctx(signer), f.db, &weavetest.Tx{Msg: &msg})
	require.NoError(t, err)
}

func (f *fixture) setAllLimits(t *testing.T, cap coin.Coin) {
	t.Helper()
	deadline := weave.AsUnixTime(blockNow.Add(time.Hour))
	for _, s := range f.signers {
		f.setLimit(t, s, cap, deadline)
	}
}

// create opens a withdrawal request and returns its correlation id.
func (f *fixture) create(t *testing.T, amount coin.Coin) []byte {
	t.Helper()
	msg := withdraw.CreateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Amount:   &amount,
	}
	res, err := f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &msg})
	require.NoError(t, err)
	require.NotEmpty(t, res.Data)
	return res.Data
}

func (f *fixture) revealMsg(t *testing.T, correlationID []byte) *withdraw.SubmitRevealMsg {
	t.Helper()
	identities := make([]weave.Address, len(f.signers))
	for i, s := range f.signers {
		identities[i] = s.Address()
	}
	proof, err := withdraw.SignReveal(f.oracle, correlationID, identities)
	require.NoError(t, err)
	return &withdraw.SubmitRevealMsg{
		Metadata:      &weave.Metadata{Schema: 1},
		CorrelationId: correlationID,
		Signers:       identities,
		Proof:         proof,
	}
}

func (f *fixture) requestState(t *testing.T) withdraw.RequestState {
	t.Helper()
	var request withdraw.Request
	require.NoError(t, withdraw.NewRequestBucket().One(f.db, f.owner.Address(), &request))
	return request.State
}

func (f *fixture) hasRequest(t *testing.T) bool {
	t.Helper()
	switch err := withdraw.NewRequestBucket().Has(f.db, f.owner.Address()); {
	case err == nil:
		return true
	case errors.ErrNotFound.Is(err):
		return false
	default:
		t.Fatalf("cannot check request: %+v", err)
		return false
	}
}

func (f *fixture) hasLimit(t *testing.T, signer weave.Condition) bool {
	t.Helper()
	switch err := withdraw.NewLimitBucket().Has(f.db, signer.Address()); {
	case err == nil:
		return true
	case errors.ErrNotFound.Is(err):
		return false
	default:
		t.Fatalf("cannot check limit: %+v", err)
		return false
	}
}

func TestWithdrawalHappyPath(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))

	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))
	assert.Equal(t, withdraw.RequestStatePending, f.requestState(t))

	// The reveal was scheduled for the owner with all three handles.
	require.Len(t, f.sealer.Reveals, 1)
	assert.Equal(t, f.owner.Address(), f.sealer.Reveals[0].Requester)
	assert.Len(t, f.sealer.Reveals[0].Handles, vault.SignerCount)

	// Before the callback the funds must stay locked.
	exec := withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    f.owner.Address(),
	}
	_, err := f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	assert.True(t, withdraw.ErrRevealPending.Is(err))

	reveal := f.revealMsg(t, correlationID)
	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)
	assert.Equal(t, withdraw.RequestStateAuthorized, f.requestState(t))

	// Authorization consumed every limit.
	for _, s := range f.signers {
		assert.False(t, f.hasLimit(t, s))
	}

	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	require.NoError(t, err)
	assert.False(t, f.hasRequest(t))

	wallet, err := f.cash.Balance(f.db, f.owner.Address())
	require.NoError(t, err)
	assert.True(t, wallet.Contains(coin.NewCoin(50, 0, "IOV")))

	ctrl := vault.NewController(f.sealer, f.cash)
	ok, err := ctrl.Covers(f.db, f.owner.Address(), coin.NewCoin(50, 0, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ctrl.Covers(f.db, f.owner.Address(), coin.NewCoin(50, 1, "IOV"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Funds move exactly once.
	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	assert.True(t, withdraw.ErrNoRequest.Is(err))
}

func TestRevealAuthorization(t *testing.T) {
	amount := coin.NewCoin(50, 0, "IOV")
	future := weave.AsUnixTime(blockNow.Add(time.Hour))
	past := weave.AsUnixTime(blockNow.Add(-time.Minute))

	cases := map[string]struct {
		limits    func(t *testing.T, f *fixture)
		wantState withdraw.RequestState
	}{
		"all limits cover the amount": {
			limits: func(t *testing.T, f *fixture) {
				f.setAllLimits(t, coin.NewCoin(50, 0, "IOV"))
			},
			wantState: withdraw.RequestStateAuthorized,
		},
		"one limit missing": {
			limits: func(t *testing.T, f *fixture) {
				f.setLimit(t, f.signers[0], coin.NewCoin(60, 0, "IOV"), future)
				f.setLimit(t, f.signers[1], coin.NewCoin(60, 0, "IOV"), future)
			},
			wantState: withdraw.RequestStateDenied,
		},
		"one limit too low": {
			limits: func(t *testing.T, f *fixture) {
				f.setLimit(t, f.signers[0], coin.NewCoin(60, 0, "IOV"), future)
				f.setLimit(t, f.signers[1], coin.NewCoin(49, 999999999, "IOV"), future)
				f.setLimit(t, f.signers[2], coin.NewCoin(60, 0, "IOV"), future)
			},
			wantState: withdraw.RequestStateDenied,
		},
		"one limit expired": {
			limits: func(t *testing.T, f *fixture) {
				f.setLimit(t, f.signers[0], coin.NewCoin(60, 0, "IOV"), future)
				f.setLimit(t, f.signers[1], coin.NewCoin(60, 0, "IOV"), future)
				// The deadline was valid when declared but passed before
				// the callback arrived.
				limit := withdraw.Limit{
					Metadata: &weave.Metadata{Schema: 1},
					Signer:   f.signers[2].Address(),
					Cap:      coin.NewCoinp(60, 0, "IOV"),
					Deadline: past,
				}
				_, err := withdraw.NewLimitBucket().Put(f.db, f.signers[2].Address(), &limit)
				require.NoError(t, err)
			},
			wantState: withdraw.RequestStateDenied,
		},
		"wrong limit currency": {
			limits: func(t *testing.T, f *fixture) {
				f.setLimit(t, f.signers[0], coin.NewCoin(60, 0, "IOV"), future)
				f.setLimit(t, f.signers[1], coin.NewCoin(60, 0, "BTC"), future)
				f.setLimit(t, f.signers[2], coin.NewCoin(60, 0, "IOV"), future)
			},
			wantState: withdraw.RequestStateDenied,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.registerVault(t)
			f.deposit(t, coin.NewCoin(100, 0, "IOV"))
			tc.limits(t, f)

			correlationID := f.create(t, amount)
			reveal := f.revealMsg(t, correlationID)
			_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
			require.NoError(t, err)
			assert.Equal(t, tc.wantState, f.requestState(t))

			// Processing the callback consumes every limit involved,
			// authorized or not.
			for _, s := range f.signers {
				assert.False(t, f.hasLimit(t, s))
			}

			exec := withdraw.ExecuteMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    f.owner.Address(),
			}
			_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
			if tc.wantState == withdraw.RequestStateAuthorized {
				assert.NoError(t, err)
			} else {
				assert.True(t, withdraw.ErrNotAuthorized.Is(err))
			}
		})
	}
}

func TestRevealCallbackProcessedOnce(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))

	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))
	reveal := f.revealMsg(t, correlationID)
	_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)
	assert.Equal(t, withdraw.RequestStateAuthorized, f.requestState(t))

	// Fresh limits declared after processing must survive a replayed
	// callback untouched.
	f.setAllLimits(t, coin.NewCoin(10, 0, "IOV"))

	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	assert.True(t, withdraw.ErrInvalidRequestState.Is(err))
	assert.Equal(t, withdraw.RequestStateAuthorized, f.requestState(t))
	for _, s := range f.signers {
		assert.True(t, f.hasLimit(t, s))
	}
}

func TestRevealRejectsBadCallback(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))
	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))

	t.Run("forged proof", func(t *testing.T) {
		reveal := f.revealMsg(t, correlationID)
		intruder := crypto.GenPrivKeyEd25519()
		proof, err := withdraw.SignReveal(intruder, correlationID, reveal.Signers)
		require.NoError(t, err)
		reveal.Proof = proof

		_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
		assert.True(t, withdraw.ErrInvalidProof.Is(err))
	})

	t.Run("proof over different identities", func(t *testing.T) {
		reveal := f.revealMsg(t, correlationID)
		reveal.Signers[2] = weavetest.NewCondition().Address()

		_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
		assert.True(t, withdraw.ErrInvalidProof.Is(err))
	})

	t.Run("unknown correlation id", func(t *testing.T) {
		reveal := f.revealMsg(t, []byte("no-such-correlation"))
		_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
		assert.True(t, withdraw.ErrUnknownRequest.Is(err))
	})

	// The request is untouched by any of the rejected callbacks.
	assert.Equal(t, withdraw.RequestStatePending, f.requestState(t))
	for _, s := range f.signers {
		assert.True(t, f.hasLimit(t, s))
	}
}

func TestCreateBlockedByUnresolvedRequest(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))

	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))

	amount := coin.NewCoin(10, 0, "IOV")
	again := withdraw.CreateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Amount:   &amount,
	}
	// Pending request blocks.
	_, err := f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &again})
	assert.True(t, withdraw.ErrPendingRequest.Is(err))

	reveal := f.revealMsg(t, correlationID)
	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)

	// An authorized but not executed request blocks as well.
	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &again})
	assert.True(t, withdraw.ErrPendingRequest.Is(err))

	exec := withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    f.owner.Address(),
	}
	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	require.NoError(t, err)

	// Execution removes the request, a new one can be opened.
	f.create(t, coin.NewCoin(10, 0, "IOV"))
	assert.Equal(t, withdraw.RequestStatePending, f.requestState(t))
}

func TestExecutedRequestIsRemoved(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))

	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))
	reveal := f.revealMsg(t, correlationID)
	_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)

	exec := withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    f.owner.Address(),
	}
	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	require.NoError(t, err)
	assert.False(t, f.hasRequest(t))

	// A second execution finds no request.
	_, err = f.router.Deliver(f.ctx(f.owner), f.db, &weavetest.Tx{Msg: &exec})
	assert.True(t, withdraw.ErrNoRequest.Is(err))

	// A callback arriving after the execution must not resolve.
	stale := f.revealMsg(t, correlationID)
	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: stale})
	assert.True(t, withdraw.ErrUnknownRequest.Is(err))
}

func TestDeniedRequestIsReplaced(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))

	// No limits declared, the callback denies the request.
	oldCorrelation := f.create(t, coin.NewCoin(50, 0, "IOV"))
	reveal := f.revealMsg(t, oldCorrelation)
	_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)
	assert.Equal(t, withdraw.RequestStateDenied, f.requestState(t))

	f.create(t, coin.NewCoin(20, 0, "IOV"))
	assert.Equal(t, withdraw.RequestStatePending, f.requestState(t))

	// The replaced correlation id must not resolve anymore.
	stale := f.revealMsg(t, oldCorrelation)
	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: stale})
	assert.True(t, withdraw.ErrUnknownRequest.Is(err))
}

func TestCreateHandlerValidation(t *testing.T) {
	cases := map[string]struct {
		prepare func(t *testing.T, f *fixture)
		amount  coin.Coin
		signer  func(f *fixture) weave.Condition
		wantErr *errors.Error
	}{
		"not registered": {
			prepare: func(t *testing.T, f *fixture) {},
			amount:  coin.NewCoin(10, 0, "IOV"),
			signer:  func(f *fixture) weave.Condition { return f.owner },
			wantErr: vault.ErrNotRegistered,
		},
		"insufficient balance": {
			prepare: func(t *testing.T, f *fixture) {
				f.registerVault(t)
				f.deposit(t, coin.NewCoin(5, 0, "IOV"))
			},
			amount:  coin.NewCoin(10, 0, "IOV"),
			signer:  func(f *fixture) weave.Condition { return f.owner },
			wantErr: vault.ErrInsufficientBalance,
		},
		"nothing deposited": {
			prepare: func(t *testing.T, f *fixture) {
				f.registerVault(t)
			},
			amount:  coin.NewCoin(10, 0, "IOV"),
			signer:  func(f *fixture) weave.Condition { return f.owner },
			wantErr: vault.ErrInsufficientBalance,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			tc.prepare(t, f)

			msg := withdraw.CreateMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Amount:   &tc.amount,
			}
			tx := &weavetest.Tx{Msg: &msg}
			ctx := f.ctx(tc.signer(f))

			cache := f.db.CacheWrap()
			_, err := f.router.Check(ctx, cache, tx)
			assert.True(t, tc.wantErr.Is(err), "unexpected check error: %+v", err)
			cache.Discard()

			_, err = f.router.Deliver(ctx, f.db, tx)
			assert.True(t, tc.wantErr.Is(err), "unexpected deliver error: %+v", err)
		})
	}
}

func TestSetLimitHandler(t *testing.T) {
	f := newFixture(t)
	signer := f.signers[0]
	future := weave.AsUnixTime(blockNow.Add(time.Hour))

	// Only the signer can declare their own limit.
	msg := withdraw.SetLimitMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signer:   signer.Address(),
		Cap:      coin.NewCoinp(10, 0, "IOV"),
		Deadline: future,
	}
	_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: &msg})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// A deadline in the past is rejected.
	expired := withdraw.SetLimitMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signer:   signer.Address(),
		Cap:      coin.NewCoinp(10, 0, "IOV"),
		Deadline: weave.AsUnixTime(blockNow.Add(-time.Minute)),
	}
	_, err = f.router.Deliver(f.ctx(signer), f.db, &weavetest.Tx{Msg: &expired})
	assert.True(t, errors.ErrInput.Is(err))

	// Declaring again overwrites the allowance.
	f.setLimit(t, signer, coin.NewCoin(10, 0, "IOV"), future)
	f.setLimit(t, signer, coin.NewCoin(25, 0, "IOV"), future)

	var limit withdraw.Limit
	require.NoError(t, withdraw.NewLimitBucket().One(f.db, signer.Address(), &limit))
	assert.True(t, limit.Cap.Equals(coin.NewCoin(25, 0, "IOV")))
}

func TestExecuteRequiresOwner(t *testing.T) {
	f := newFixture(t)
	f.registerVault(t)
	f.deposit(t, coin.NewCoin(100, 0, "IOV"))
	f.setAllLimits(t, coin.NewCoin(60, 0, "IOV"))
	correlationID := f.create(t, coin.NewCoin(50, 0, "IOV"))
	reveal := f.revealMsg(t, correlationID)
	_, err := f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: reveal})
	require.NoError(t, err)

	exec := withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    f.owner.Address(),
	}
	_, err = f.router.Deliver(f.ctx(weavetest.NewCondition()), f.db, &weavetest.Tx{Msg: &exec})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// An owner without any request cannot execute.
	stranger := weavetest.NewCondition()
	other := withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    stranger.Address(),
	}
	_, err = f.router.Deliver(f.ctx(stranger), f.db, &weavetest.Tx{Msg: &other})
	assert.True(t, withdraw.ErrNoRequest.Is(err))
}
