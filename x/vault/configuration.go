package vault

import (
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	// Owner field is optional.
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if !coin.IsCC(c.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", c.Ticker))
	}
	return errs
}

func mustLoadConf(db gconf.ReadStore) Configuration {
	var conf Configuration
	if err := gconf.Load(db, "vault", &conf); err != nil {
		err = errors.Wrap(err, "load configuration")
		panic(err)
	}
	return conf
}
