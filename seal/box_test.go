package seal

import (
	"testing"

	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxServiceCoinArithmetic(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "seal")
	svc := NewBoxService()

	h, err := svc.SealCoin(db, coin.NewCoin(0, 0, ""))
	require.NoError(t, err)

	h, err = svc.Add(db, h, coin.NewCoin(2, 0, "IOV"))
	require.NoError(t, err)

	ok, err := svc.Covers(db, h, coin.NewCoin(1, 0, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Covers(db, h, coin.NewCoin(2, 1, "IOV"))
	require.NoError(t, err)
	assert.False(t, ok)

	h, err = svc.Subtract(db, h, coin.NewCoin(1, 500000000, "IOV"))
	require.NoError(t, err)

	ok, err = svc.Covers(db, h, coin.NewCoin(0, 500000000, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)

	// Draining below zero must fail without destroying the value.
	_, err = svc.Subtract(db, h, coin.NewCoin(3, 0, "IOV"))
	assert.True(t, errors.ErrAmount.Is(err))

	ok, err = svc.Covers(db, h, coin.NewCoin(0, 500000000, "IOV"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBoxServiceFreshBalanceCoversNothing(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "seal")
	svc := NewBoxService()

	h, err := svc.SealCoin(db, coin.Coin{})
	require.NoError(t, err)

	ok, err := svc.Covers(db, h, coin.NewCoin(0, 1, "IOV"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoxServiceRevealRequiresGrant(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "seal")
	svc := NewBoxService()

	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	h, err := svc.SealBytes(db, []byte("a very private value"))
	require.NoError(t, err)

	_, err = svc.RequestReveal(db, alice, []Handle{h})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	require.NoError(t, svc.Grant(db, h, alice))
	// Granting twice must not fail.
	require.NoError(t, svc.Grant(db, h, alice))

	correlationID, err := svc.RequestReveal(db, alice, []Handle{h})
	require.NoError(t, err)
	require.NotEmpty(t, correlationID)

	var reveal Reveal
	require.NoError(t, NewRevealBucket().One(db, correlationID, &reveal))
	assert.Equal(t, [][]byte{[]byte("a very private value")}, reveal.Values)

	// Bob was never granted access.
	_, err = svc.RequestReveal(db, bob, []Handle{h})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestBoxServiceUnknownHandle(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "seal")
	svc := NewBoxService()

	_, err := svc.Covers(db, Handle("no such handle"), coin.NewCoin(1, 0, "IOV"))
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = svc.Add(db, Handle("no such handle"), coin.NewCoin(1, 0, "IOV"))
	assert.True(t, errors.ErrNotFound.Is(err))
}
