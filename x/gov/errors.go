package gov

import (
	"github.com/quorumfund/treasury/errors"
)

var (
	// ErrAlreadyVoted is returned when a signer casts a second vote on
	// the same proposal. Votes can be neither changed nor retracted.
	ErrAlreadyVoted = errors.Register(1200, "already voted")

	// ErrInsufficientVotes is returned when execution is attempted
	// before the approving votes reach the signature threshold.
	ErrInsufficientVotes = errors.Register(1201, "insufficient votes")

	// ErrInvalidThreshold is returned when a threshold is outside
	// [MinSigners, TotalSigners].
	ErrInvalidThreshold = errors.Register(1202, "invalid threshold")

	// ErrInsufficientSigners is returned when an operation would push
	// the active signer count outside [MinSigners, MaxSigners].
	ErrInsufficientSigners = errors.Register(1203, "invalid signer count")

	// ErrSignerExists is returned when adding a signer that is already
	// active.
	ErrSignerExists = errors.Register(1204, "signer already exists")

	// ErrInvalidSigner is returned when the target of a signer set
	// change does not qualify.
	ErrInvalidSigner = errors.Register(1205, "invalid signer")

	// ErrEmergencyActive is returned when creating a proposal while
	// emergency mode is on.
	ErrEmergencyActive = errors.Register(1206, "emergency mode active")

	// ErrProposalExecuted is returned when acting on a proposal that
	// was already executed.
	ErrProposalExecuted = errors.Register(1207, "proposal already executed")
)
