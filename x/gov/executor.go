package gov

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/x/funds"
)

// execute applies the effect of an approved proposal. Every branch
// re-validates its precondition against the current state before
// mutating, since the state may have changed between proposal creation
// and execution. Any returned error aborts the surrounding savepoint
// and leaves the proposal non executed.
func (h ExecuteProposalHandler) execute(db treasury.KVStore, id []byte, proposal *Proposal, height int64) error {
	state, err := h.state.GetState(db)
	if err != nil {
		return err
	}

	switch proposal.Type {
	case ProposalTransfer:
		return h.executeTransfer(db, proposal, state)
	case ProposalAddSigner:
		return h.executeAddSigner(db, id, state, proposal.Proposer, height)
	case ProposalRemoveSigner:
		return h.executeRemoveSigner(db, id, state)
	case ProposalChangeThreshold:
		return h.executeChangeThreshold(db, id, state)
	default:
		return errors.Wrapf(errors.ErrType, "proposal type %d", proposal.Type)
	}
}

func (h ExecuteProposalHandler) executeTransfer(db treasury.KVStore, proposal *Proposal, state *TreasuryState) error {
	if proposal.Amount > state.Balance {
		return errors.Wrapf(funds.ErrInsufficientFunds, "treasury holds %d, requested %d", state.Balance, proposal.Amount)
	}
	if err := h.mover.MoveFunds(db, TreasuryAccount(), proposal.Recipient, proposal.Amount); err != nil {
		return errors.Wrap(err, "transfer failed")
	}
	state.Balance -= proposal.Amount
	return h.state.SaveState(db, state)
}

func (h ExecuteProposalHandler) executeAddSigner(db treasury.KVStore, id []byte, state *TreasuryState, proposer treasury.Address, height int64) error {
	option, err := h.options.GetOption(db, id)
	if err != nil {
		return err
	}
	target := option.TargetSigner

	signer, err := h.signers.GetSigner(db, target)
	if err != nil {
		return err
	}
	if signer != nil && signer.Active {
		return errors.Wrapf(ErrSignerExists, "%s", target)
	}
	if state.TotalSigners >= MaxSigners {
		return errors.Wrapf(ErrInsufficientSigners, "already %d signers", state.TotalSigners)
	}

	if signer == nil {
		signer = &Signer{}
	}
	signer.Active = true
	signer.AddedAt = height
	signer.AddedBy = proposer
	if err := h.signers.SaveSigner(db, target, signer); err != nil {
		return err
	}

	state.TotalSigners++
	// Note: the threshold is deliberately left untouched when the
	// signer set grows. A larger set keeps the previously agreed
	// threshold until an explicit threshold proposal changes it.
	return h.state.SaveState(db, state)
}

func (h ExecuteProposalHandler) executeRemoveSigner(db treasury.KVStore, id []byte, state *TreasuryState) error {
	option, err := h.options.GetOption(db, id)
	if err != nil {
		return err
	}
	target := option.TargetSigner

	signer, err := h.signers.GetSigner(db, target)
	if err != nil {
		return err
	}
	if signer == nil || !signer.Active {
		return errors.Wrapf(ErrInvalidSigner, "%s is not an active signer", target)
	}
	if state.TotalSigners <= MinSigners {
		return errors.Wrapf(ErrInsufficientSigners, "cannot go below %d signers", MinSigners)
	}

	signer.Active = false
	if err := h.signers.SaveSigner(db, target, signer); err != nil {
		return err
	}

	state.TotalSigners--
	// An unsatisfiable threshold would freeze the treasury, so clamp
	// it down to the shrunken signer set.
	if state.Threshold > state.TotalSigners {
		state.Threshold = state.TotalSigners
	}
	return h.state.SaveState(db, state)
}

func (h ExecuteProposalHandler) executeChangeThreshold(db treasury.KVStore, id []byte, state *TreasuryState) error {
	option, err := h.options.GetOption(db, id)
	if err != nil {
		return err
	}

	threshold := option.NewThreshold
	if threshold < MinSigners || threshold > state.TotalSigners {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d of %d signers", threshold, state.TotalSigners)
	}
	state.Threshold = threshold
	return h.state.SaveState(db, state)
}
