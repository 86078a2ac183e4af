package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"

	"github.com/trivault/trivault/seal"
)

// SignerCount is the number of co-signers bound to every vault account.
const SignerCount = 3

func init() {
	migration.MustRegister(1, &Account{}, migration.NoModification)
	migration.MustRegister(1, &Balance{}, migration.NoModification)
}

var _ orm.CloneableData = (*Account)(nil)

func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", a.Metadata.Validate())
	if len(a.Signers) != SignerCount {
		errs = errors.Append(errs, errors.Field("Signers", errors.ErrInput, "exactly %d signers required", SignerCount))
	}
	for _, s := range a.Signers {
		if len(s) == 0 {
			errs = errors.Append(errs, errors.Field("Signers", errors.ErrEmpty, "signer handle required"))
		}
	}
	return errs
}

func (a *Account) Copy() orm.CloneableData {
	signers := make([]seal.Handle, len(a.Signers))
	for i, s := range a.Signers {
		signers[i] = append(seal.Handle(nil), s...)
	}
	return &Account{
		Metadata: a.Metadata.Copy(),
		Signers:  signers,
	}
}

var _ orm.CloneableData = (*Balance)(nil)

func (b *Balance) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", b.Metadata.Validate())
	if len(b.Sealed) == 0 {
		errs = errors.Append(errs, errors.Field("Sealed", errors.ErrEmpty, "sealed balance handle required"))
	}
	return errs
}

func (b *Balance) Copy() orm.CloneableData {
	return &Balance{
		Metadata: b.Metadata.Copy(),
		Sealed:   append(seal.Handle(nil), b.Sealed...),
	}
}

// NewAccountBucket returns a bucket for keeping vault accounts, indexed by
// the owner address.
func NewAccountBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vacct", &Account{})
	return migration.NewModelBucket("vault", b)
}

// NewBalanceBucket returns a bucket for keeping sealed vault balances,
// indexed by the owner address.
func NewBalanceBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vbal", &Balance{})
	return migration.NewModelBucket("vault", b)
}

// Condition returns the custody condition of a single vault. All funds
// deposited for the owner are held on the address of this condition.
func Condition(owner weave.Address) weave.Condition {
	return weave.NewCondition("vault", "custody", owner)
}

// RegisterQuery registers the vault buckets for queries.
func RegisterQuery(qr weave.QueryRouter) {
	NewAccountBucket().Register("vaults", qr)
	NewBalanceBucket().Register("vaultbalances", qr)
}
