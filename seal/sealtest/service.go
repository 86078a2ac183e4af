// Package sealtest provides an in memory implementation of the seal.Service
// interface to be used in tests.
package sealtest

import (
	"encoding/binary"
	"fmt"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"

	"github.com/trivault/trivault/seal"
)

// RevealRequest is a recorded RequestReveal call.
type RevealRequest struct {
	CorrelationID []byte
	Requester     weave.Address
	Handles       []seal.Handle
}

// Service is a mock implementing the seal.Service interface.
//
// All sealed values are kept in memory and the KVStore argument is ignored.
// Handles are deterministic, which makes assertions easy. Grants are
// recorded but not enforced.
type Service struct {
	// Err if set is returned by every method call.
	Err error

	// Reveals records every RequestReveal call in order.
	Reveals []RevealRequest

	boxes  map[string][]byte
	grants map[string][]weave.Address
	seq    uint64
}

var _ seal.Service = (*Service)(nil)

// NewService returns an empty mock service.
func NewService() *Service {
	return &Service{
		boxes:  make(map[string][]byte),
		grants: make(map[string][]weave.Address),
	}
}

func (s *Service) SealBytes(db weave.KVStore, plain []byte) (seal.Handle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.store(plain), nil
}

func (s *Service) SealCoin(db weave.KVStore, value coin.Coin) (seal.Handle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	raw, err := value.Marshal()
	if err != nil {
		return nil, err
	}
	return s.store(raw), nil
}

func (s *Service) Add(db weave.KVStore, h seal.Handle, amount coin.Coin) (seal.Handle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	value, err := s.coin(h)
	if err != nil {
		return nil, err
	}
	total, err := value.Add(amount)
	if err != nil {
		return nil, err
	}
	raw, err := total.Marshal()
	if err != nil {
		return nil, err
	}
	return s.store(raw), nil
}

func (s *Service) Subtract(db weave.KVStore, h seal.Handle, amount coin.Coin) (seal.Handle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	value, err := s.coin(h)
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
		return nil, err
	}
	return s.store(raw), nil
}

func (s *Service) Covers(db weave.KVStore, h seal.Handle, amount coin.Coin) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	value, err := s.coin(h)
	if err != nil {
		return false, err
	}
	if value.IsZero() && value.Ticker == "" {
		return !amount.IsPositive(), nil
	}
	return value.IsGTE(amount), nil
}

func (s *Service) Grant(db weave.KVStore, h seal.Handle, principal weave.Address) error {
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.boxes[string(h)]; !ok {
		return errors.Wrap(errors.ErrNotFound, "no such sealed value")
	}
	s.grants[string(h)] = append(s.grants[string(h)], principal)
	return nil
}

func (s *Service) RequestReveal(db weave.KVStore, requester weave.Address, handles []seal.Handle) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, h := range handles {
		if _, ok := s.boxes[string(h)]; !ok {
			return nil, errors.Wrap(errors.ErrNotFound, "no such sealed value")
		}
	}
	s.seq++
	correlationID := make([]byte, 8)
	binary.BigEndian.PutUint64(correlationID, s.seq)
	s.Reveals = append(s.Reveals, RevealRequest{
		CorrelationID: correlationID,
		Requester:     requester,
		Handles:       handles,
	})
	return correlationID, nil
}

// Plain returns the plaintext behind the handle. It fails the test setup
// with a panic when the handle is unknown.
func (s *Service) Plain(h seal.Handle) []byte {
	raw, ok := s.boxes[string(h)]
	if !ok {
		panic(fmt.Sprintf("sealtest: unknown handle %x", []byte(h)))
	}
	return raw
}

// Granted returns all principals granted access to the handle.
func (s *Service) Granted(h seal.Handle) []weave.Address {
	return s.grants[string(h)]
}

func (s *Service) store(plain []byte) seal.Handle {
	s.seq++
	h := []byte(fmt.Sprintf("box-%d", s.seq))
	s.boxes[string(h)] = plain
	return h
}

func (s *Service) coin(h seal.Handle) (coin.Coin, error) {
	raw, ok := s.boxes[string(h)]
	if !ok {
		return coin.Coin{}, errors.Wrap(errors.ErrNotFound, "no such sealed value")
	}
	var value coin.Coin
	if err := value.Unmarshal(raw); err != nil {
		return coin.Coin{}, errors.Wrap(errors.ErrType, "sealed value is not a coin")
	}
	return value, nil
}
