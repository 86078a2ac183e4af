package vault

import (
	"github.com/iov-one/weave/errors"
)

// ABCI Response Codes
// trivault reserves 1200 ~ 1249 for the vault extension.
var (
	ErrAlreadyRegistered   = errors.Register(1200, "account already registered")
	ErrNotRegistered       = errors.Register(1201, "account not registered")
	ErrInvalidIndex        = errors.Register(1202, "invalid signer index")
	ErrInsufficientBalance = errors.Register(1203, "insufficient balance")
)
