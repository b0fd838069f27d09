package funds

import (
	"github.com/quorumfund/treasury/errors"
)

// ErrInsufficientFunds is returned when the source wallet cannot cover
// the amount to be moved.
var ErrInsufficientFunds = errors.Register(1300, "insufficient funds")
