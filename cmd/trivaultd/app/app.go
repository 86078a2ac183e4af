/*
Package app links together all the various components
to construct the trivaultd app.
*/
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/store/iavl"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/iov-one/weave/x/utils"
	"github.com/iov-one/weave/x/validators"

	"github.com/trivault/trivault/seal"
	"github.com/trivault/trivault/x/vault"
	"github.com/trivault/trivault/x/withdraw"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// CashControl returns a controller for cash functions
func CashControl() cash.Controller {
	return cash.NewController(cash.NewBucket())
}

// CashMinter returns a controller that can issue coins during
// genesis initialization.
func CashMinter() cash.CoinMinter {
	return cash.NewController(cash.NewBucket())
}

// Sealer returns the confidential data service used by the vault
// and withdraw extensions.
func Sealer() seal.Service {
	return seal.NewBoxService()
}

// VaultControl returns a controller for vault functions, backed by
// the given sealer and the standard cash controller.
func VaultControl(sealer seal.Service) vault.Controller {
	return vault.NewController(sealer, CashControl())
}

// Chain returns a chain of decorators, to handle authentication,
// fees, logging, and recovery
func Chain(authFn x.Authenticator) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewKeyTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		cash.NewFeeDecorator(authFn, CashControl()),
		// on DeliverTx, bad tx will increment nonce and take fee
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	)
}

// Router returns a default router, dispatching to cash, validators
// and the vault and withdraw extensions.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()

	sealer := Sealer()
	cash.RegisterRoutes(r, authFn, CashControl())
	migration.RegisterRoutes(r, authFn)
	validators.RegisterRoutes(r, authFn)
	vault.RegisterRoutes(r, authFn, sealer, CashControl())
	withdraw.RegisterRoutes(r, authFn, sealer, VaultControl(sealer))
	return r
}

// QueryRouter returns a default query router, allowing access to
// "/wallets", "/auth", "/vaults", "/withdrawrequests" and "/"
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		migration.RegisterQuery,
		validators.RegisterQuery,
		cash.RegisterQuery,
		sigs.RegisterQuery,
		seal.RegisterQuery,
		vault.RegisterQuery,
		withdraw.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() weave.Handler {
	authFn := Authenticator()
	return Chain(authFn).WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h weave.Handler,
	tx weave.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, nil, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
