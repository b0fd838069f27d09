package gov

import (
	"github.com/quorumfund/treasury"
)

// TreasuryStatus is the aggregate read view of the treasury.
type TreasuryStatus struct {
	Balance        uint64
	TotalSigners   uint32
	Threshold      uint32
	Emergency      bool
	NextProposalID int64
}

// ProposalStatus is the computed view of a single proposal at a given
// height.
type ProposalStatus struct {
	Active           bool
	SufficientVotes  bool
	VotesNeeded      uint32
	HeightsRemaining int64
}

// Status returns the aggregate treasury view.
func Status(db treasury.ReadOnlyKVStore) (*TreasuryStatus, error) {
	state, err := NewStateBucket().GetState(db)
	if err != nil {
		return nil, err
	}
	return &TreasuryStatus{
		Balance:        state.Balance,
		TotalSigners:   state.TotalSigners,
		Threshold:      state.Threshold,
		Emergency:      state.Emergency,
		NextProposalID: NewProposalBucket().NextID(db),
	}, nil
}

// StatusOf computes the proposal view for the given height. Reading the
// status has no side effect, expired proposals stay stored until an
// external retention policy removes them.
func StatusOf(db treasury.ReadOnlyKVStore, proposalID []byte, height int64) (*ProposalStatus, error) {
	proposal, err := NewProposalBucket().GetProposal(db, proposalID)
	if err != nil {
		return nil, err
	}
	state, err := NewStateBucket().GetState(db)
	if err != nil {
		return nil, err
	}

	status := &ProposalStatus{
		Active:          proposal.Active(height),
		SufficientVotes: proposal.VotesFor >= state.Threshold,
	}
	if proposal.VotesFor < state.Threshold {
		status.VotesNeeded = state.Threshold - proposal.VotesFor
	}
	if height < proposal.ExpiresAt {
		status.HeightsRemaining = proposal.ExpiresAt - height
	}
	return status, nil
}
