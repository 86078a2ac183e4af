package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &RegisterMsg{}, migration.NoModification)
	migration.MustRegister(1, &DepositMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*RegisterMsg)(nil)

func (m *RegisterMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Signers) != SignerCount {
		errs = errors.Append(errs, errors.Field("Signers", errors.ErrInput, "exactly %d signers required", SignerCount))
	}
	for _, s := range m.Signers {
		if len(s) == 0 {
			errs = errors.Append(errs, errors.Field("Signers", errors.ErrEmpty, "signer handle required"))
		}
	}
	return errs
}

func (RegisterMsg) Path() string {
	return "vault/register"
}

var _ weave.Msg = (*DepositMsg)(nil)

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if m.Amount == nil {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrEmpty, "amount required"))
	} else {
		if err := m.Amount.Validate(); err != nil {
			errs = errors.AppendField(errs, "Amount", err)
		} else if !m.Amount.IsPositive() {
			errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "must be positive"))
		}
	}
	return errs
}

func (DepositMsg) Path() string {
	return "vault/deposit"
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// Validate will skip any zero fields and validate the set ones.
func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		return errors.Append(errs, errors.Field("Patch", errors.ErrEmpty, "patch required"))
	}
	c := m.Patch
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Patch.Owner", c.Owner.Validate())
	}
	return errs
}

func (*UpdateConfigurationMsg) Path() string {
	return "vault/update_configuration"
}
