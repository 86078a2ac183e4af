package seal

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Box{}, migration.NoModification)
	migration.MustRegister(1, &Reveal{}, migration.NoModification)
}

var _ orm.CloneableData = (*Box)(nil)

func (b *Box) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", b.Metadata.Validate())
	// An empty payload is legal, a zero coin marshals to no bytes.
	for _, g := range b.Grants {
		if err := g.Validate(); err != nil {
			errs = errors.AppendField(errs, "Grants", err)
		}
	}
	return errs
}

func (b *Box) Copy() orm.CloneableData {
	plain := make([]byte, len(b.Plain))
	copy(plain, b.Plain)
	grants := make([]weave.Address, len(b.Grants))
	for i, g := range b.Grants {
		grants[i] = g.Clone()
	}
	return &Box{
		Metadata: b.Metadata.Copy(),
		Plain:    plain,
		Grants:   grants,
	}
}

var _ orm.CloneableData = (*Reveal)(nil)

func (r *Reveal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	errs = errors.AppendField(errs, "Requester", r.Requester.Validate())
	if len(r.Handles) == 0 {
		errs = errors.Append(errs, errors.Field("Handles", errors.ErrEmpty, "at least one handle required"))
	}
	if len(r.Values) != len(r.Handles) {
		errs = errors.Append(errs, errors.Field("Values", errors.ErrModel, "one value per handle required"))
	}
	return errs
}

func (r *Reveal) Copy() orm.CloneableData {
	handles := make([]Handle, len(r.Handles))
	for i, h := range r.Handles {
		handles[i] = append(Handle(nil), h...)
	}
	values := make([][]byte, len(r.Values))
	for i, v := range r.Values {
		values[i] = append([]byte(nil), v...)
	}
	return &Reveal{
		Metadata:  r.Metadata.Copy(),
		Requester: r.Requester.Clone(),
		Handles:   handles,
		Values:    values,
	}
}

// NewBoxBucket returns a bucket for keeping sealed values. Boxes are indexed
// by their handle.
func NewBoxBucket() orm.ModelBucket {
	b := orm.NewModelBucket("sealbox", &Box{})
	return migration.NewModelBucket("seal", b)
}

// NewRevealBucket returns a bucket for keeping scheduled reveal requests,
// indexed by correlation id.
func NewRevealBucket() orm.ModelBucket {
	b := orm.NewModelBucket("sealrev", &Reveal{})
	return migration.NewModelBucket("seal", b)
}

// RegisterQuery exposes scheduled reveals so that the oracle can collect
// them. Boxes are deliberately not registered.
func RegisterQuery(qr weave.QueryRouter) {
	NewRevealBucket().Register("sealreveals", qr)
}
