package withdraw

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial withdraw configuration and any
// pre-declared limits from genesis and save them to the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	if err := gconf.InitConfig(db, opts, "withdraw", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var limits []struct {
		Signer   weave.Address  `json:"signer"`
		Cap      coin.Coin      `json:"cap"`
		Deadline weave.UnixTime `json:"deadline"`
	}
	if err := opts.ReadOptions("withdraw", &limits); err != nil {
		return errors.Wrap(err, "cannot load limits")
	}

	bucket := NewLimitBucket()
	for i, l := range limits {
		allowance := l.Cap
		limit := Limit{
			Metadata: &weave.Metadata{Schema: 1},
			Signer:   l.Signer,
			Cap:      &allowance,
			Deadline: l.Deadline,
		}
		if err := limit.Validate(); err != nil {
			return errors.Wrapf(err, "limit #%d is invalid", i)
		}
		if _, err := bucket.Put(db, l.Signer, &limit); err != nil {
			return errors.Wrapf(err, "cannot store limit #%d", i)
		}
	}
	return nil
}
