package seal

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
)

// BoxService is a KVStore backed implementation of Service. It keeps the
// plaintext of every sealed value in a dedicated bucket, addressed by a
// sequence generated handle. Arithmetic operations produce a fresh box and
// leave the input box untouched, so handles held by callers stay valid.
//
// This backend provides no cryptographic confidentiality. It is meant for
// development chains and tests.
type BoxService struct {
	boxes     orm.ModelBucket
	reveals   orm.ModelBucket
	boxSeq    orm.Sequence
	revealSeq orm.Sequence
}

var _ Service = (*BoxService)(nil)

// NewBoxService returns a development implementation of the confidential
// computation service boundary.
func NewBoxService() *BoxService {
	return &BoxService{
		boxes:     NewBoxBucket(),
		reveals:   NewRevealBucket(),
		boxSeq:    orm.NewSequence("seal", "box"),
		revealSeq: orm.NewSequence("seal", "reveal"),
	}
}

// SealBytes stores the plaintext under a fresh handle.
func (s *BoxService) SealBytes(db weave.KVStore, plain []byte) (Handle, error) {
	if len(plain) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "nothing to seal")
	}
	return s.store(db, plain, nil)
}

// SealCoin seals a coin value.
func (s *BoxService) SealCoin(db weave.KVStore, value coin.Coin) (Handle, error) {
	raw, err := value.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal coin")
	}
	return s.store(db, raw, nil)
}

// Add returns a handle to the sealed coin increased by the given amount.
func (s *BoxService) Add(db weave.KVStore, h Handle, amount coin.Coin) (Handle, error) {
	box, value, err := s.coinBox(db, h)
	if err != nil {
		return nil, err
	}
	total, err := value.Add(amount)
	if err != nil {
		return nil, err
	}
	raw, err := total.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal coin")
	}
	return s.store(db, raw, box.Grants)
}

// Subtract returns a handle to the sealed coin reduced by the given amount.
// It fails if the result would be negative.
func (s *BoxService) Subtract(db weave.KVStore, h Handle, amount coin.Coin) (Handle, error) {
	box, value, err := s.coinBox(db, h)
	if err != nil {
		return nil, err
	}
	rest, err := value.Subtract(amount)
	if err != nil {
		return nil, err
	}
	if !rest.IsNonNegative() {
		return nil, errors.Wrap(errors.ErrAmount, "result below zero")
	}
	raw, err := rest.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal coin")
	}
	return s.store(db, raw, box.Grants)
}

// Covers returns true if the sealed coin is at least the given amount.
func (s *BoxService) Covers(db weave.KVStore, h Handle, amount coin.Coin) (bool, error) {
	_, value, err := s.coinBox(db, h)
	if err != nil {
		return false, err
	}
	if value.IsZero() && value.Ticker == "" {
		// A fresh balance has no ticker yet and covers nothing
		// but a zero amount.
		return !amount.IsPositive(), nil
	}
	return value.IsGTE(amount), nil
}

// Grant allows the principal to request a reveal of the sealed value.
func (s *BoxService) Grant(db weave.KVStore, h Handle, principal weave.Address) error {
	if err := principal.Validate(); err != nil {
		return errors.Wrap(err, "principal")
	}
	var box Box
	if err := s.boxes.One(db, h, &box); err != nil {
		return errors.Wrap(err, "no such sealed value")
	}
	for _, g := range box.Grants {
		if g.Equals(principal) {
			return nil
		}
	}
	box.Grants = append(box.Grants, principal)
	if _, err := s.boxes.Put(db, h, &box); err != nil {
		return errors.Wrap(err, "cannot update grants")
	}
	return nil
}

// RequestReveal schedules a reveal of all given sealed values. The requester
// must hold a grant on every handle. The returned correlation id identifies
// the scheduled reveal and is echoed back by the oracle.
func (s *BoxService) RequestReveal(db weave.KVStore, requester weave.Address, handles []Handle) ([]byte, error) {
	if len(handles) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no handles")
	}
	values := make([][]byte, len(handles))
	for i, h := range handles {
		var box Box
		if err := s.boxes.One(db, h, &box); err != nil {
			return nil, errors.Wrap(err, "no such sealed value")
		}
		if !granted(box.Grants, requester) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "no grant for handle %d", i)
		}
		values[i] = box.Plain
	}
	correlationID, err := s.revealSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire correlation id")
	}
	reveal := Reveal{
		Metadata:  &weave.Metadata{Schema: 1},
		Requester: requester,
		Handles:   handles,
		Values:    values,
	}
	if _, err := s.reveals.Put(db, correlationID, &reveal); err != nil {
		return nil, errors.Wrap(err, "cannot store reveal request")
	}
	return correlationID, nil
}

func (s *BoxService) store(db weave.KVStore, plain []byte, grants []weave.Address) (Handle, error) {
	key, err := s.boxSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire handle")
	}
	box := Box{
		Metadata: &weave.Metadata{Schema: 1},
		Plain:    plain,
		Grants:   grants,
	}
	if _, err := s.boxes.Put(db, key, &box); err != nil {
		return nil, errors.Wrap(err, "cannot store sealed value")
	}
	return Handle(key), nil
}

func (s *BoxService) coinBox(db weave.KVStore, h Handle) (*Box, coin.Coin, error) {
	var box Box
	if err := s.boxes.One(db, h, &box); err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "no such sealed value")
	}
	var value coin.Coin
	if err := value.Unmarshal(box.Plain); err != nil {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrType, "sealed value is not a coin")
	}
	return &box, value, nil
}

func granted(grants []weave.Address, principal weave.Address) bool {
	for _, g := range grants {
		if g.Equals(principal) {
			return true
		}
	}
	return false
}
