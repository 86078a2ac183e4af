package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/validators"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/trivault/trivault/x/vault"
	"github.com/trivault/trivault/x/withdraw"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// The first argument may override the ticker, the second the
// address of the rich account.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, fmt.Errorf("invalid ticker %s", ticker)
		}
	}

	var addr string
	if len(args) > 1 {
		addr = args[1]
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		bz, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = bz.String()
		fmt.Println(keys)
	}

	// a dev mode oracle key, the secret is printed so a local
	// reveal oracle can be run against this chain
	oracle := crypto.GenPrivKeyEd25519()
	oracleJSON, err := json.MarshalIndent(keyOutput{
		Pubkey: oracle.PublicKey(),
		Secret: oracle,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	fmt.Printf("oracle key: %s\n", oracleJSON)

	type dict map[string]interface{}

	return json.Marshal(dict{
		"cash": []interface{}{
			dict{
				"address": addr,
				"coins": []interface{}{
					dict{"whole": 123456789, "ticker": ticker},
				},
			},
		},
		"conf": dict{
			"cash": cash.Configuration{
				CollectorAddress: weave.NewCondition("dist", "revenue", []byte("collector")).Address(),
				MinimalFee:       coin.Coin{}, // no fee
			},
			"migration": dict{
				"admin": addr,
			},
			"vault": vault.Configuration{
				Ticker: ticker,
			},
			"withdraw": withdraw.Configuration{
				OraclePubkey: oracle.PublicKey().GetEd25519(),
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
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "abci.db")
	}

	stack := Stack()
	application, err := Application("trivault", stack, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&validators.Initializer{},
		&vault.Initializer{Sealer: Sealer(), Minter: CashMinter()},
		&withdraw.Initializer{},
	))

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

type keyOutput struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key, along with
// a json representation of the keys. You can give coins to this
// address and import the keys in a client to use them.
func GenerateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := keyOutput{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}
