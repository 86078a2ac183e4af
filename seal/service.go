package seal

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
)

// Handle references a sealed value held by the confidential computation
// service. Handles are opaque. Equality of handles implies equality of the
// referenced value only for handles returned by the same service instance.
type Handle []byte

// Service is the interface to the confidential computation service. All
// operations are synchronous except the reveal protocol: RequestReveal only
// schedules a reveal and returns a correlation id. The plaintext arrives
// later, delivered by the oracle in a separate transaction together with an
// authentication proof. Correlating the answer with the request is the
// caller's responsibility.
type Service interface {
	// SealBytes seals an arbitrary byte string and returns a handle to it.
	SealBytes(db weave.KVStore, plain []byte) (Handle, error)

	// SealCoin seals a coin value for use with the arithmetic operations.
	SealCoin(db weave.KVStore, value coin.Coin) (Handle, error)

	// Add returns a handle to the sum of the sealed coin and the given
	// public amount. The original handle stays valid and unchanged.
	Add(db weave.KVStore, h Handle, amount coin.Coin) (Handle, error)

	// Subtract returns a handle to the sealed coin reduced by the given
	// public amount. It fails if the result would be negative, without
	// revealing the sealed value.
	Subtract(db weave.KVStore, h Handle, amount coin.Coin) (Handle, error)

	// Covers returns true if the sealed coin is greater than or equal to
	// the given public amount.
	Covers(db weave.KVStore, h Handle, amount coin.Coin) (bool, error)

	// Grant allows the principal to request a reveal of the sealed value.
	Grant(db weave.KVStore, h Handle, principal weave.Address) error

	// RequestReveal schedules an asynchronous reveal of all given sealed
	// values on behalf of the requester. The requester must have been
	// granted access to every handle. The returned correlation id is
	// included by the oracle when it delivers the plaintext.
	RequestReveal(db weave.KVStore, requester weave.Address, handles []Handle) ([]byte, error)
}
