package vault_test

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
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
)

// fixture wires a vault router together with an in memory database, a mock
// seal service and a funded cash controller.
type fixture struct {
	db      weave.CacheableKVStore
	router  *app.Router
	authKey *weavetest.CtxAuth
	sealer  *sealtest.Service
	bank    cash.WalletBucket
	cash    cash.BaseController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := store.MemStore()
	migration.MustInitPkg(db, "vault", "cash")

	conf := vault.Configuration{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    weavetest.NewCondition().Address(),
		Ticker:   "IOV",
	}
	require.NoError(t, gconf.Save(db, "vault", &conf))

	sealer := sealtest.NewService()
	bank := cash.NewBucket()
	ctrl := cash.NewController(bank)

	r := app.NewRouter()
	authKey := &weavetest.CtxAuth{Key: "auth"}
	vault.RegisterRoutes(r, x.ChainAuth(authKey), sealer, ctrl)

	return &fixture{
		db:      db,
		router:  r,
		authKey: authKey,
		sealer:  sealer,
		bank:    bank,
		cash:    ctrl,
	}
}

func (f *fixture) ctx(conditions ...weave.Condition) weave.Context {
	ctx := weave.WithHeight(context.Background(), 100)
	return f.authKey.SetConditions(ctx, conditions...)
}

func (f *fixture) sealHandles(t *testing.T, n int) []seal.Handle {
	t.Helper()
	handles := make([]seal.Handle, n)
	for i := range handles {
		h, err := f.sealer.SealBytes(f.db, []byte{byte(i + 1)})
		require.NoError(t, err)
		handles[i] = h
	}
	return handles
}

func (f *fixture) fund(t *testing.T, addr weave.Address, amount coin.Coin) {
	t.Helper()
	require.NoError(t, f.cash.CoinMint(f.db, addr, amount))
}

func TestRegisterHandler(t *testing.T) {
	alice := weavetest.NewCondition()

	cases := map[string]struct {
		signerCount    int
		conditions     []weave.Condition
		preRegister    bool
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			signerCount: 3,
			conditions:  []weave.Condition{alice},
		},
		"wrong signer count": {
			signerCount:    2,
			conditions:     []weave.Condition{alice},
			wantCheckErr:   errors.ErrInput,
			wantDeliverErr: errors.ErrInput,
		},
		"missing signature": {
			signerCount:    3,
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"second registration rejected": {
			signerCount:    3,
			conditions:     []weave.Condition{alice},
			preRegister:    true,
			wantCheckErr:   vault.ErrAlreadyRegistered,
			wantDeliverErr: vault.ErrAlreadyRegistered,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			ctx := f.ctx(tc.conditions...)

			msg := vault.RegisterMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Signers:  f.sealHandles(t, tc.signerCount),
			}
			tx := &weavetest.Tx{Msg: &msg}

			if tc.preRegister {
				pre := vault.RegisterMsg{
					Metadata: &weave.Metadata{Schema: 1},
					Signers:  f.sealHandles(t, 3),
				}
				_, err := f.router.Deliver(ctx, f.db, &weavetest.Tx{Msg: &pre})
				require.NoError(t, err)
			}

			cache := f.db.CacheWrap()
			_, err := f.router.Check(ctx, cache, tx)
			if tc.wantCheckErr != nil {
				assert.True(t, tc.wantCheckErr.Is(err), "unexpected check error: %+v", err)
			} else {
				assert.NoError(t, err)
			}
			cache.Discard()

			_, err = f.router.Deliver(ctx, f.db, tx)
			if tc.wantDeliverErr != nil {
				assert.True(t, tc.wantDeliverErr.Is(err), "unexpected deliver error: %+v", err)
				return
			}
			require.NoError(t, err)

			var account vault.Account
			require.NoError(t, vault.NewAccountBucket().One(f.db, alice.Address(), &account))
			assert.Len(t, account.Signers, vault.SignerCount)

			// Both the owner and the custody can request a reveal of
			// every co-signer identity.
			custody := vault.Condition(alice.Address()).Address()
			for _, h := range account.Signers {
				granted := f.sealer.Granted(h)
				assert.Contains(t, granted, alice.Address())
				assert.Contains(t, granted, custody)
			}
		})
	}
}

func TestDepositHandler(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	cases := map[string]struct {
		amount         coin.Coin
		owner          func() weave.Address
		registered     bool
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			amount:     coin.NewCoin(50, 0, "IOV"),
			owner:      func() weave.Address { return bob.Address() },
			registered: true,
		},
		"owner not registered": {
			amount:         coin.NewCoin(50, 0, "IOV"),
			owner:          func() weave.Address { return bob.Address() },
			wantDeliverErr: vault.ErrNotRegistered,
		},
		"wrong currency": {
			amount:         coin.NewCoin(50, 0, "BTC"),
			owner:          func() weave.Address { return bob.Address() },
			registered:     true,
			wantDeliverErr: errors.ErrCurrency,
		},
		"non positive amount": {
			amount:         coin.NewCoin(0, 0, "IOV"),
			owner:          func() weave.Address { return bob.Address() },
			registered:     true,
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.fund(t, alice.Address(), coin.NewCoin(100, 0, "IOV"))

			owner := tc.owner()
			if tc.registered {
				reg := vault.RegisterMsg{
					Metadata: &weave.Metadata{Schema: 1},
					Signers:  f.sealHandles(t, 3),
				}
				_, err := f.router.Deliver(f.ctx(bob), f.db, &weavetest.Tx{Msg: &reg})
				require.NoError(t, err)
			}

			msg := vault.DepositMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				Amount:   &tc.amount,
			}
			tx := &weavetest.Tx{Msg: &msg}
			ctx := f.ctx(alice)

			cache := f.db.CacheWrap()
			_, err := f.router.Check(ctx, cache, tx)
			if tc.wantCheckErr != nil {
				assert.True(t, tc.wantCheckErr.Is(err), "unexpected check error: %+v", err)
			} else {
				assert.NoError(t, err)
			}
			cache.Discard()

			_, err = f.router.Deliver(ctx, f.db, tx)
			if tc.wantDeliverErr != nil {
				assert.True(t, tc.wantDeliverErr.Is(err), "unexpected deliver error: %+v", err)
				return
			}
			require.NoError(t, err)

			// The coins are held by the custody, not the owner.
			custody, err := f.cash.Balance(f.db, vault.Condition(owner).Address())
			require.NoError(t, err)
			assert.True(t, custody.Contains(tc.amount))

			// The sealed balance reflects the deposit.
			ctrl := vault.NewController(f.sealer, f.cash)
			ok, err := ctrl.Covers(f.db, owner, tc.amount)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = ctrl.Covers(f.db, owner, coin.NewCoin(50, 1, "IOV"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDepositAccumulates(t *testing.T) {
	alice := weavetest.NewCondition()

	f := newFixture(t)
	f.fund(t, alice.Address(), coin.NewCoin(100, 0, "IOV"))

	reg := vault.RegisterMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signers:  f.sealHandles(t, 3),
	}
	ctx := f.ctx(alice)
	_, err := f.router.Deliver(ctx, f.db, &weavetest.Tx{Msg: &reg})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		amount := coin.NewCoin(30, 0, "IOV")
		dep := vault.DepositMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    alice.Address(),
			Amount:   &amount,
		}
		_, err := f.router.Deliver(ctx, f.db, &weavetest.Tx{Msg: &dep})
		require.NoError(t, err)
	}

	ctrl := vault.NewController(f.sealer, f.cash)
	ok, err := ctrl.Covers(f.db, alice.Address(), coin.NewCoin(60, 0, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ctrl.Covers(f.db, alice.Address(), coin.NewCoin(60, 1, "IOV"))
	require.NoError(t, err)
	assert.False(t, ok)
}
