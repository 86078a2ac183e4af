package withdraw

import (
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// ed25519 public keys are always 32 bytes.
const oraclePubkeyLength = 32

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	// Owner field is optional.
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if len(c.OraclePubkey) != oraclePubkeyLength {
		errs = errors.Append(errs, errors.Field("OraclePubkey", errors.ErrInput, "must be %d bytes", oraclePubkeyLength))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "withdraw", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
