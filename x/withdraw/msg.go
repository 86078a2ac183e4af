package withdraw

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"

	"github.com/trivault/trivault/x/vault"
)

func init() {
	migration.MustRegister(1, &SetLimitMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateMsg{}, migration.NoModification)
	migration.MustRegister(1, &SubmitRevealMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*SetLimitMsg)(nil)

func (m *SetLimitMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Signer", m.Signer.Validate())
	if m.Cap == nil {
		errs = errors.Append(errs, errors.Field("Cap", errors.ErrEmpty, "cap required"))
	} else {
		if err := m.Cap.Validate(); err != nil {
			errs = errors.AppendField(errs, "Cap", err)
		} else if !m.Cap.IsPositive() {
			errs = errors.Append(errs, errors.Field("Cap", errors.ErrAmount, "must be positive"))
		}
	}
	if m.Deadline == 0 {
		errs = errors.Append(errs, errors.Field("Deadline", errors.ErrEmpty, "deadline required"))
	} else {
		errs = errors.AppendField(errs, "Deadline", m.Deadline.Validate())
	}
	return errs
}

func (SetLimitMsg) Path() string {
	return "withdraw/set_limit"
}

var _ weave.Msg = (*CreateMsg)(nil)

func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
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

func (CreateMsg) Path() string {
	return "withdraw/create"
}

var _ weave.Msg = (*SubmitRevealMsg)(nil)

func (m *SubmitRevealMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.CorrelationId) == 0 {
		errs = errors.Append(errs, errors.Field("CorrelationId", errors.ErrEmpty, "correlation id required"))
	}
	if len(m.Signers) != vault.SignerCount {
		errs = errors.Append(errs, errors.Field("Signers", errors.ErrInput, "exactly %d signers required", vault.SignerCount))
	}
	for _, s := range m.Signers {
		if err := s.Validate(); err != nil {
			errs = errors.AppendField(errs, "Signers", err)
		}
	}
	if len(m.Proof) == 0 {
		errs = errors.Append(errs, errors.Field("Proof", errors.ErrEmpty, "proof required"))
	}
	return errs
}

func (SubmitRevealMsg) Path() string {
	return "withdraw/submit_reveal"
}

var _ weave.Msg = (*ExecuteMsg)(nil)

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	return errs
}

func (ExecuteMsg) Path() string {
	return "withdraw/execute"
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
	return "withdraw/update_configuration"
}
