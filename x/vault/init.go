package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/x/cash"

	"github.com/trivault/trivault/seal"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct {
	Sealer seal.Service
	Minter cash.CoinMinter
}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial vault info from genesis and save it to the
// database.
func (i *Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	if err := gconf.InitConfig(db, opts, "vault", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var vaults []struct {
		Owner   weave.Address   `json:"owner"`
		Signers []weave.Address `json:"signers"`
		Balance *coin.Coin      `json:"balance"`
	}
	if err := opts.ReadOptions("vault", &vaults); err != nil {
		return errors.Wrap(err, "cannot load vaults")
	}

	accounts := NewAccountBucket()
	balances := NewBalanceBucket()
	for j, v := range vaults {
		handles := make([]seal.Handle, 0, len(v.Signers))
		custody := Condition(v.Owner).Address()
		for _, s := range v.Signers {
			h, err := i.Sealer.SealBytes(db, s)
			if err != nil {
				return errors.Wrapf(err, "vault #%d: cannot seal signer", j)
			}
			if err := i.Sealer.Grant(db, h, v.Owner); err != nil {
				return errors.Wrapf(err, "vault #%d: cannot grant signer to owner", j)
			}
			if err := i.Sealer.Grant(db, h, custody); err != nil {
				return errors.Wrapf(err, "vault #%d: cannot grant signer to custody", j)
			}
			handles = append(handles, h)
		}
		account := Account{
			Metadata: &weave.Metadata{Schema: 1},
			Signers:  handles,
		}
		if err := account.Validate(); err != nil {
			return errors.Wrapf(err, "vault #%d is invalid", j)
		}
		if _, err := accounts.Put(db, v.Owner, &account); err != nil {
			return errors.Wrapf(err, "cannot store vault #%d", j)
		}

		if v.Balance == nil || v.Balance.IsZero() {
			continue
		}
		if err := i.Minter.CoinMint(db, custody, *v.Balance); err != nil {
			return errors.Wrapf(err, "vault #%d: cannot issue coins", j)
		}
		sealed, err := i.Sealer.SealCoin(db, *v.Balance)
		if err != nil {
			return errors.Wrapf(err, "vault #%d: cannot seal balance", j)
		}
		balance := Balance{
			Metadata: &weave.Metadata{Schema: 1},
			Sealed:   sealed,
		}
		if _, err := balances.Put(db, v.Owner, &balance); err != nil {
			return errors.Wrapf(err, "cannot store balance #%d", j)
		}
	}
	return nil
}
