package withdraw

import (
	"github.com/iov-one/weave/errors"
)

// ABCI Response Codes
// trivault reserves 1250 ~ 1299 for the withdraw extension.
var (
	ErrPendingRequest      = errors.Register(1250, "unresolved withdrawal request exists")
	ErrNoRequest           = errors.Register(1251, "no withdrawal request")
	ErrRevealPending       = errors.Register(1252, "identity reveal still pending")
	ErrNotAuthorized       = errors.Register(1253, "withdrawal was not authorized")
	ErrInvalidProof        = errors.Register(1254, "invalid oracle proof")
	ErrInvalidRequestState = errors.Register(1255, "invalid request state")
	ErrUnknownRequest      = errors.Register(1256, "unknown correlation id")
)
