package withdraw

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Limit{}, migration.NoModification)
	migration.MustRegister(1, &Request{}, migration.NoModification)
	migration.MustRegister(1, &Correlation{}, migration.NoModification)
}

var _ orm.CloneableData = (*Limit)(nil)

func (l *Limit) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", l.Metadata.Validate())
	errs = errors.AppendField(errs, "Signer", l.Signer.Validate())
	if l.Cap == nil {
		errs = errors.Append(errs, errors.Field("Cap", errors.ErrEmpty, "cap required"))
	} else {
		if err := l.Cap.Validate(); err != nil {
			errs = errors.AppendField(errs, "Cap", err)
		} else if !l.Cap.IsPositive() {
			errs = errors.Append(errs, errors.Field("Cap", errors.ErrAmount, "must be positive"))
		}
	}
	if l.Deadline == 0 {
		errs = errors.Append(errs, errors.Field("Deadline", errors.ErrEmpty, "deadline required"))
	} else {
		errs = errors.AppendField(errs, "Deadline", l.Deadline.Validate())
	}
	return errs
}

func (l *Limit) Copy() orm.CloneableData {
	var allowance *coin.Coin
	if l.Cap != nil {
		allowance = l.Cap.Clone()
	}
	return &Limit{
		Metadata: l.Metadata.Copy(),
		Signer:   l.Signer.Clone(),
		Cap:      allowance,
		Deadline: l.Deadline,
	}
}

var _ orm.CloneableData = (*Request)(nil)

func (r *Request) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", r.Owner.Validate())
	if r.Amount == nil {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrEmpty, "amount required"))
	} else if err := r.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	}
	if len(r.CorrelationId) == 0 {
		errs = errors.Append(errs, errors.Field("CorrelationId", errors.ErrEmpty, "correlation id required"))
	}
	if r.State < RequestStatePending || r.State > RequestStateDenied {
		errs = errors.Append(errs, errors.Field("State", errors.ErrState, "invalid state %v", r.State))
	}
	return errs
}

func (r *Request) Copy() orm.CloneableData {
	var amount *coin.Coin
	if r.Amount != nil {
		amount = r.Amount.Clone()
	}
	return &Request{
		Metadata:      r.Metadata.Copy(),
		Owner:         r.Owner.Clone(),
		Amount:        amount,
		CorrelationId: append([]byte(nil), r.CorrelationId...),
		State:         r.State,
	}
}

var _ orm.CloneableData = (*Correlation)(nil)

func (c *Correlation) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	return errs
}

func (c *Correlation) Copy() orm.CloneableData {
	return &Correlation{
		Metadata: c.Metadata.Copy(),
		Owner:    c.Owner.Clone(),
	}
}

// NewLimitBucket returns a bucket for keeping withdrawal limits, indexed by
// the plaintext signer identity.
func NewLimitBucket() orm.ModelBucket {
	b := orm.NewModelBucket("wlimit", &Limit{})
	return migration.NewModelBucket("withdraw", b)
}

// NewRequestBucket returns a bucket for keeping withdrawal requests. Every
// vault owner holds at most one request at a time, so requests are indexed
// by the owner address.
func NewRequestBucket() orm.ModelBucket {
	b := orm.NewModelBucket("wreq", &Request{})
	return migration.NewModelBucket("withdraw", b)
}

// NewCorrelationBucket returns a bucket mapping reveal correlation ids back
// to the request owner.
func NewCorrelationBucket() orm.ModelBucket {
	b := orm.NewModelBucket("wcorr", &Correlation{})
	return migration.NewModelBucket("withdraw", b)
}

// RegisterQuery registers the withdraw buckets for queries.
func RegisterQuery(qr weave.QueryRouter) {
	NewLimitBucket().Register("withdrawlimits", qr)
	NewRequestBucket().Register("withdrawrequests", qr)
}
