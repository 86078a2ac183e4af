package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/trivault/trivault/x/vault"
	"github.com/trivault/trivault/x/withdraw"
)

const chainID = "test-net-22"

var genesisTime = time.Now().UTC()

type chain struct {
	t      *testing.T
	app    app.BaseApp
	height int64
}

func newChain(t *testing.T, genesis []byte) *chain {
	t.Helper()

	abciApp, err := GenerateApp(&server.Options{
		Home:   "",
		Logger: log.NewNopLogger(),
		Debug:  false,
	})
	require.NoError(t, err)
	myApp := abciApp.(app.BaseApp)

	myApp.InitChain(abci.RequestInitChain{
		AppStateBytes: genesis,
		ChainId:       chainID,
		Time:          genesisTime,
	})
	c := &chain{t: t, app: myApp}
	c.commit()
	return c
}

// commit closes the current block and returns the new app hash.
func (c *chain) commit() []byte {
	c.height++
	header := abci.Header{
		Height:  c.height,
		ChainID: chainID,
		Time:    genesisTime.Add(time.Duration(c.height) * 5 * time.Second),
	}
	c.app.BeginBlock(abci.RequestBeginBlock{Header: header})
	c.app.EndBlock(abci.RequestEndBlock{})
	cres := c.app.Commit()
	require.NotEmpty(c.t, cres.Data)
	return cres.Data
}

// deliver signs the transaction, opens a block and runs the transaction
// through both CheckTx and DeliverTx.
func (c *chain) deliver(sum isTx_Sum, signer *crypto.PrivateKey, nonce int64) abci.ResponseDeliverTx {
	c.t.Helper()

	tx := &Tx{Sum: sum}
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	require.NoError(c.t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	txBytes, err := tx.Marshal()
	require.NoError(c.t, err)

	c.height++
	header := abci.Header{
		Height:  c.height,
		ChainID: chainID,
		Time:    genesisTime.Add(time.Duration(c.height) * 5 * time.Second),
	}
	c.app.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := c.app.CheckTx(txBytes)
	require.Equal(c.t, uint32(0), chres.Code, chres.Log)
	dres := c.app.DeliverTx(txBytes)
	require.Equal(c.t, uint32(0), dres.Code, dres.Log)
	c.app.EndBlock(abci.RequestEndBlock{})
	cres := c.app.Commit()
	require.NotEmpty(c.t, cres.Data)
	return dres
}

func (c *chain) wallet(addr weave.Address) coin.Coins {
	c.t.Helper()

	qres := c.app.Query(abci.RequestQuery{Path: "/wallets", Data: addr})
	require.Equal(c.t, uint32(0), qres.Code, "%#v", qres)
	if len(qres.Value) == 0 {
		return nil
	}
	var set cash.Set
	require.NoError(c.t, app.UnmarshalOneResult(qres.Value, &set))
	return set.Coins
}

func TestWithdrawalLifecycle(t *testing.T) {
	owner := crypto.GenPrivKeyEd25519()
	ownerAddr := owner.PublicKey().Address()
	oracle := crypto.GenPrivKeyEd25519()

	signerKeys := []*crypto.PrivateKey{
		crypto.GenPrivKeyEd25519(),
		crypto.GenPrivKeyEd25519(),
		crypto.GenPrivKeyEd25519(),
	}
	signerAddrs := make([]weave.Address, len(signerKeys))
	for i, k := range signerKeys {
		signerAddrs[i] = k.PublicKey().Address()
	}

	type dict map[string]interface{}
	genesis, err := json.Marshal(dict{
		"cash": []interface{}{
			dict{
				"address": ownerAddr.String(),
				"coins": []interface{}{
					dict{"whole": 50000, "ticker": "IOV"},
				},
			},
		},
		"conf": dict{
			"cash": cash.Configuration{
				CollectorAddress: weave.NewCondition("dist", "revenue", []byte("collector")).Address(),
				MinimalFee:       coin.Coin{},
			},
			"migration": dict{
				"admin": ownerAddr.String(),
			},
			"vault": vault.Configuration{
				Ticker: "IOV",
			},
			"withdraw": withdraw.Configuration{
				OraclePubkey: oracle.PublicKey().GetEd25519(),
			},
		},
		"vault": []interface{}{
			dict{
				"owner":   ownerAddr.String(),
				"signers": []weave.Address{signerAddrs[0], signerAddrs[1], signerAddrs[2]},
			},
		},
		"initialize_schema": []dict{
			{"pkg": "cash", "ver": 1},
			{"pkg": "seal", "ver": 1},
			{"pkg": "sigs", "ver": 1},
			{"pkg": "utils", "ver": 1},
			{"pkg": "validators", "ver": 1},
			{"pkg": "vault", "ver": 1},
			{"pkg": "withdraw", "ver": 1},
		},
	})
	require.NoError(t, err)

	c := newChain(t, genesis)

	funds := c.wallet(ownerAddr)
	require.Len(t, funds, 1)
	assert.Equal(t, int64(50000), funds[0].Whole)

	// Move part of the wallet into the confidential vault.
	amount := coin.NewCoin(100, 0, "IOV")
	c.deliver(&Tx_VaultDepositMsg{&vault.DepositMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    ownerAddr,
		Amount:   &amount,
	}}, owner, 0)

	custody := vault.Condition(ownerAddr).Address()
	locked := c.wallet(custody)
	require.Len(t, locked, 1)
	assert.Equal(t, int64(100), locked[0].Whole)

	// Every co-signer declares an allowance.
	deadline := weave.AsUnixTime(genesisTime.Add(24 * time.Hour))
	for i, key := range signerKeys {
		allowance := coin.NewCoin(60, 0, "IOV")
		c.deliver(&Tx_WithdrawSetLimitMsg{&withdraw.SetLimitMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Signer:   signerAddrs[i],
			Cap:      &allowance,
			Deadline: deadline,
		}}, key, 0)
	}

	// The owner requests a withdrawal, which schedules a reveal.
	request := coin.NewCoin(50, 0, "IOV")
	dres := c.deliver(&Tx_WithdrawCreateMsg{&withdraw.CreateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Amount:   &request,
	}}, owner, 1)
	correlationID := dres.Data
	require.NotEmpty(t, correlationID)

	// The oracle answers with the revealed identities and a proof.
	proof, err := withdraw.SignReveal(oracle, correlationID, signerAddrs)
	require.NoError(t, err)
	c.deliver(&Tx_WithdrawSubmitRevealMsg{&withdraw.SubmitRevealMsg{
		Metadata:      &weave.Metadata{Schema: 1},
		CorrelationId: correlationID,
		Signers:       signerAddrs,
		Proof:         proof,
	}}, owner, 2)

	// Authorized request pays out.
	c.deliver(&Tx_WithdrawExecuteMsg{&withdraw.ExecuteMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    ownerAddr,
	}}, owner, 3)

	after := c.wallet(ownerAddr)
	require.Len(t, after, 1)
	assert.Equal(t, int64(50000-100+50), after[0].Whole)

	locked = c.wallet(custody)
	require.Len(t, locked, 1)
	assert.Equal(t, int64(50), locked[0].Whole)
}

func TestGenInitOptions(t *testing.T) {
	raw, err := GenInitOptions(nil)
	require.NoError(t, err)

	var opts weave.Options
	require.NoError(t, json.Unmarshal(raw, &opts))
	for _, key := range []string{"cash", "conf", "initialize_schema"} {
		_, ok := opts[key]
		assert.True(t, ok, "missing genesis option %q", key)
	}

	var conf weave.Options
	require.NoError(t, json.Unmarshal(opts["conf"], &conf))
	var wconf withdraw.Configuration
	require.NoError(t, json.Unmarshal(conf["withdraw"], &wconf))
	assert.Len(t, wconf.OraclePubkey, 32)

	// Every package writing migration aware models must have its schema
	// initialized, otherwise the first write panics.
	var schema []struct {
		Pkg string `json:"pkg"`
	}
	require.NoError(t, json.Unmarshal(opts["initialize_schema"], &schema))
	initialized := make(map[string]bool)
	for _, s := range schema {
		initialized[s.Pkg] = true
	}
	for _, pkg := range []string{"cash", "seal", "sigs", "utils", "validators", "vault", "withdraw"} {
		assert.True(t, initialized[pkg], "schema of package %q not initialized", pkg)
	}
}
