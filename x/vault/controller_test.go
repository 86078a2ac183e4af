package vault_test

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trivault/trivault/x/vault"
)

func TestControllerWithdraw(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	f := newFixture(t)
	f.fund(t, alice.Address(), coin.NewCoin(100, 0, "IOV"))

	reg := vault.RegisterMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signers:  f.sealHandles(t, 3),
	}
	ctx := f.ctx(alice)
	_, err := f.router.Deliver(ctx, f.db, &weavetest.Tx{Msg: &reg})
	require.NoError(t, err)

	amount := coin.NewCoin(80, 0, "IOV")
	dep := vault.DepositMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    alice.Address(),
		Amount:   &amount,
	}
	_, err = f.router.Deliver(ctx, f.db, &weavetest.Tx{Msg: &dep})
	require.NoError(t, err)

	ctrl := vault.NewController(f.sealer, f.cash)

	// More than deposited cannot be withdrawn.
	err = ctrl.Withdraw(f.db, alice.Address(), bob.Address(), coin.NewCoin(81, 0, "IOV"))
	assert.True(t, vault.ErrInsufficientBalance.Is(err))

	require.NoError(t, ctrl.Withdraw(f.db, alice.Address(), bob.Address(), coin.NewCoin(30, 0, "IOV")))

	received, err := f.cash.Balance(f.db, bob.Address())
	require.NoError(t, err)
	assert.True(t, received.Contains(coin.NewCoin(30, 0, "IOV")))

	ok, err := ctrl.Covers(f.db, alice.Address(), coin.NewCoin(50, 0, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ctrl.Covers(f.db, alice.Address(), coin.NewCoin(50, 1, "IOV"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Draining the whole rest is allowed.
	require.NoError(t, ctrl.Withdraw(f.db, alice.Address(), bob.Address(), coin.NewCoin(50, 0, "IOV")))
	err = ctrl.Withdraw(f.db, alice.Address(), bob.Address(), coin.NewCoin(0, 1, "IOV"))
	assert.True(t, vault.ErrInsufficientBalance.Is(err))
}

func TestControllerWithdrawWithoutDeposit(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	f := newFixture(t)
	ctrl := vault.NewController(f.sealer, f.cash)

	err := ctrl.Withdraw(f.db, alice.Address(), bob.Address(), coin.NewCoin(1, 0, "IOV"))
	assert.True(t, vault.ErrInsufficientBalance.Is(err))
}

func TestControllerSigners(t *testing.T) {
	alice := weavetest.NewCondition()

	f := newFixture(t)
	handles := f.sealHandles(t, 3)
	reg := vault.RegisterMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Signers:  handles,
	}
	_, err := f.router.Deliver(f.ctx(alice), f.db, &weavetest.Tx{Msg: &reg})
	require.NoError(t, err)

	ctrl := vault.NewController(f.sealer, f.cash)

	registered, err := ctrl.IsRegistered(f.db, alice.Address())
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = ctrl.IsRegistered(f.db, weavetest.NewCondition().Address())
	require.NoError(t, err)
	assert.False(t, registered)

	for i := 0; i < vault.SignerCount; i++ {
		h, err := ctrl.Signer(f.db, alice.Address(), i)
		require.NoError(t, err)
		assert.Equal(t, handles[i], h)
	}

	_, err = ctrl.Signer(f.db, alice.Address(), vault.SignerCount)
	assert.True(t, vault.ErrInvalidIndex.Is(err))
	_, err = ctrl.Signer(f.db, alice.Address(), -1)
	assert.True(t, vault.ErrInvalidIndex.Is(err))

	_, err = ctrl.Signers(f.db, weavetest.NewCondition().Address())
	assert.True(t, vault.ErrNotRegistered.Is(err))

	_, err = ctrl.SealedBalance(f.db, alice.Address())
	assert.True(t, errors.ErrNotFound.Is(err))
}
