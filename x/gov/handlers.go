package gov

import (
	"fmt"

	"github.com/tendermint/tendermint/libs/common"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/x"
	"github.com/quorumfund/treasury/x/funds"
)

const (
	proposalCost int64 = 2
	voteCost     int64 = 1
	executeCost  int64 = 10
	depositCost  int64 = 1
	adminCost    int64 = 1
)

const (
	tagProposalID = "proposal-id"
	tagProposer   = "proposer"
	tagAction     = "action"
)

// FundsMover is the narrow slice of the asset ledger the treasury
// needs: an atomic transfer primitive that either fully succeeds or
// fails without partial effect.
type FundsMover interface {
	MoveFunds(db treasury.KVStore, src, dest treasury.Address, amount uint64) error
}

var _ FundsMover = funds.BaseController{}

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r treasury.Registry, auth x.Authenticator, mover FundsMover) {
	signers := NewSignerBucket()
	proposals := NewProposalBucket()
	options := NewOptionBucket()
	votes := NewVoteBucket()
	state := NewStateBucket()

	r.Handle(pathCreateTransferMsg, TransferProposalHandler{auth, signers, proposals, state})
	r.Handle(pathCreateAddSignerMsg, AddSignerProposalHandler{auth, signers, proposals, options, state})
	r.Handle(pathCreateRemoveSignerMsg, RemoveSignerProposalHandler{auth, signers, proposals, options, state})
	r.Handle(pathCreateThresholdMsg, ThresholdProposalHandler{auth, signers, proposals, options, state})
	r.Handle(pathVoteMsg, VoteHandler{auth, signers, proposals, votes})
	r.Handle(pathCancelMsg, CancelProposalHandler{auth, proposals})
	r.Handle(pathExecuteMsg, ExecuteProposalHandler{auth, signers, proposals, options, state, mover})
	r.Handle(pathDepositMsg, DepositHandler{auth, state, mover})
	r.Handle(pathEmergencyModeMsg, EmergencyModeHandler{auth, state})
	r.Handle(pathEmergencyWithdrawMsg, EmergencyWithdrawHandler{auth, state, mover})
}

// requireHeight extracts the block height that must be present on any
// context the application dispatches with.
func requireHeight(ctx treasury.Context) (int64, error) {
	height, ok := treasury.GetHeight(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	return height, nil
}

// requireActiveSigner returns the address of the main transaction
// signer if it is an active treasury signer.
func requireActiveSigner(ctx treasury.Context, db treasury.KVStore, auth x.Authenticator, signers SignerBucket) (treasury.Address, error) {
	sender := x.MainSigner(ctx, auth)
	if sender == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	addr := sender.Address()
	active, err := signers.IsActive(db, addr)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not an active signer")
	}
	return addr, nil
}

// newProposal assembles the common part of every proposal record.
func newProposal(ptype ProposalType, proposer treasury.Address, description string, height int64) *Proposal {
	return &Proposal{
		Type:        ptype,
		Proposer:    proposer,
		Description: description,
		CreatedAt:   height,
		ExpiresAt:   height + proposalDuration,
	}
}

func proposalTags(id []byte, proposer treasury.Address, action string) []common.KVPair {
	return []common.KVPair{
		{Key: []byte(tagProposalID), Value: id},
		{Key: []byte(tagProposer), Value: []byte(proposer.String())},
		{Key: []byte(tagAction), Value: []byte(action)},
	}
}

// TransferProposalHandler creates proposals moving treasury funds.
type TransferProposalHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	state     StateBucket
}

var _ treasury.Handler = TransferProposalHandler{}

func (h TransferProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += proposalCost
	return res, nil
}

func (h TransferProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	proposal := newProposal(ProposalTransfer, proposer, msg.Description, height)
	proposal.Recipient = msg.Recipient
	proposal.Amount = msg.Amount

	id, err := h.proposals.Create(db, proposal)
	if err != nil {
		return res, errors.Wrap(err, "failed to persist proposal")
	}

	res.Tags = append(res.Tags, proposalTags(id, proposer, "create_transfer")...)
	res.Data = id
	return res, nil
}

func (h TransferProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*CreateTransferProposalMsg, treasury.Address, error) {
	var msg CreateTransferProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := requireActiveSigner(ctx, db, h.auth, h.signers)
	if err != nil {
		return nil, nil, err
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if state.Emergency {
		return nil, nil, errors.Wrap(ErrEmergencyActive, "no new proposals")
	}
	if msg.Recipient.Equals(proposer) {
		return nil, nil, errors.Wrap(errors.ErrInput, "recipient must differ from proposer")
	}
	if msg.Amount > state.Balance {
		return nil, nil, errors.Wrapf(funds.ErrInsufficientFunds, "treasury holds %d, requested %d", state.Balance, msg.Amount)
	}
	return &msg, proposer, nil
}

// AddSignerProposalHandler creates proposals activating a new signer.
type AddSignerProposalHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	options   OptionBucket
	state     StateBucket
}

var _ treasury.Handler = AddSignerProposalHandler{}

func (h AddSignerProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += proposalCost
	return res, nil
}

func (h AddSignerProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	proposal := newProposal(ProposalAddSigner, proposer, msg.Description, height)
	id, err := h.proposals.Create(db, proposal)
	if err != nil {
		return res, errors.Wrap(err, "failed to persist proposal")
	}
	option := &GovernanceOption{TargetSigner: msg.Signer}
	if err := h.options.SaveOption(db, id, option); err != nil {
		return res, errors.Wrap(err, "failed to persist option")
	}

	res.Tags = append(res.Tags, proposalTags(id, proposer, "create_add_signer")...)
	res.Data = id
	return res, nil
}

func (h AddSignerProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*CreateAddSignerProposalMsg, treasury.Address, error) {
	var msg CreateAddSignerProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := requireActiveSigner(ctx, db, h.auth, h.signers)
	if err != nil {
		return nil, nil, err
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if state.Emergency {
		return nil, nil, errors.Wrap(ErrEmergencyActive, "no new proposals")
	}
	active, err := h.signers.IsActive(db, msg.Signer)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, errors.Wrapf(ErrSignerExists, "%s", msg.Signer)
	}
	if state.TotalSigners >= MaxSigners {
		return nil, nil, errors.Wrapf(ErrInsufficientSigners, "already %d signers", state.TotalSigners)
	}
	return &msg, proposer, nil
}

// RemoveSignerProposalHandler creates proposals deactivating a signer.
type RemoveSignerProposalHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	options   OptionBucket
	state     StateBucket
}

var _ treasury.Handler = RemoveSignerProposalHandler{}

func (h RemoveSignerProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += proposalCost
	return res, nil
}

func (h RemoveSignerProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	proposal := newProposal(ProposalRemoveSigner, proposer, msg.Description, height)
	id, err := h.proposals.Create(db, proposal)
	if err != nil {
		return res, errors.Wrap(err, "failed to persist proposal")
	}
	option := &GovernanceOption{TargetSigner: msg.Signer}
	if err := h.options.SaveOption(db, id, option); err != nil {
		return res, errors.Wrap(err, "failed to persist option")
	}

	res.Tags = append(res.Tags, proposalTags(id, proposer, "create_remove_signer")...)
	res.Data = id
	return res, nil
}

func (h RemoveSignerProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*CreateRemoveSignerProposalMsg, treasury.Address, error) {
	var msg CreateRemoveSignerProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := requireActiveSigner(ctx, db, h.auth, h.signers)
	if err != nil {
		return nil, nil, err
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if state.Emergency {
		return nil, nil, errors.Wrap(ErrEmergencyActive, "no new proposals")
	}
	if msg.Signer.Equals(proposer) {
		return nil, nil, errors.Wrap(ErrInvalidSigner, "cannot propose own removal")
	}
	active, err := h.signers.IsActive(db, msg.Signer)
	if err != nil {
		return nil, nil, err
	}
	if !active {
		return nil, nil, errors.Wrapf(ErrInvalidSigner, "%s is not an active signer", msg.Signer)
	}
	if state.TotalSigners <= MinSigners {
		return nil, nil, errors.Wrapf(ErrInsufficientSigners, "cannot go below %d signers", MinSigners)
	}
	return &msg, proposer, nil
}

// ThresholdProposalHandler creates proposals changing the signature
// threshold.
type ThresholdProposalHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	options   OptionBucket
	state     StateBucket
}

var _ treasury.Handler = ThresholdProposalHandler{}

func (h ThresholdProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += proposalCost
	return res, nil
}

func (h ThresholdProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	proposal := newProposal(ProposalChangeThreshold, proposer, msg.Description, height)
	id, err := h.proposals.Create(db, proposal)
	if err != nil {
		return res, errors.Wrap(err, "failed to persist proposal")
	}
	option := &GovernanceOption{NewThreshold: msg.Threshold}
	if err := h.options.SaveOption(db, id, option); err != nil {
		return res, errors.Wrap(err, "failed to persist option")
	}

	res.Tags = append(res.Tags, proposalTags(id, proposer, "create_threshold")...)
	res.Data = id
	return res, nil
}

func (h ThresholdProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*CreateThresholdProposalMsg, treasury.Address, error) {
	var msg CreateThresholdProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := requireActiveSigner(ctx, db, h.auth, h.signers)
	if err != nil {
		return nil, nil, err
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if state.Emergency {
		return nil, nil, errors.Wrap(ErrEmergencyActive, "no new proposals")
	}
	if msg.Threshold > state.TotalSigners {
		return nil, nil, errors.Wrapf(ErrInvalidThreshold, "threshold %d exceeds %d signers", msg.Threshold, state.TotalSigners)
	}
	if msg.Threshold == state.Threshold {
		return nil, nil, errors.Wrapf(ErrInvalidThreshold, "threshold is already %d", msg.Threshold)
	}
	return &msg, proposer, nil
}

// VoteHandler records a signer's vote on an active proposal.
type VoteHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	votes     VoteBucket
}

var _ treasury.Handler = VoteHandler{}

func (h VoteHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += voteCost
	return res, nil
}

func (h VoteHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposal, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	vote := &Vote{Approved: msg.Approve, VotedAt: height}
	if err := h.votes.SaveVote(db, voter, msg.ProposalID, vote); err != nil {
		return res, errors.Wrap(err, "failed to persist vote")
	}
	if err := proposal.CountVote(msg.Approve); err != nil {
		return res, err
	}
	if err := h.proposals.Update(db, msg.ProposalID, proposal); err != nil {
		return res, errors.Wrap(err, "failed to update proposal")
	}

	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("vote")},
	}...)
	return res, nil
}

func (h VoteHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*VoteMsg, *Proposal, treasury.Address, error) {
	var msg VoteMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.proposals.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	voter, err := requireActiveSigner(ctx, db, h.auth, h.signers)
	if err != nil {
		return nil, nil, nil, err
	}
	if proposal.Executed {
		return nil, nil, nil, errors.Wrap(ErrProposalExecuted, "cannot vote")
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if height >= proposal.ExpiresAt {
		return nil, nil, nil, errors.Wrapf(errors.ErrExpired, "proposal expired at %d", proposal.ExpiresAt)
	}
	voted, err := h.votes.HasVoted(db, voter, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	if voted {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyVoted, "proposal %x", msg.ProposalID)
	}
	return &msg, proposal, voter, nil
}

// CancelProposalHandler closes a proposal early. Only the original
// proposer may cancel, and only while the proposal is still active.
type CancelProposalHandler struct {
	auth      x.Authenticator
	proposals ProposalBucket
}

var _ treasury.Handler = CancelProposalHandler{}

func (h CancelProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += voteCost
	return res, nil
}

func (h CancelProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	// Cancellation closes the voting window, the record itself stays.
	proposal.ExpiresAt = height
	if err := h.proposals.Update(db, msg.ProposalID, proposal); err != nil {
		return res, errors.Wrap(err, "failed to update proposal")
	}

	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("cancel")},
	}...)
	return res, nil
}

func (h CancelProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*CancelProposalMsg, *Proposal, error) {
	var msg CancelProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.proposals.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	sender := x.MainSigner(ctx, h.auth)
	if sender == nil || !sender.Address().Equals(proposal.Proposer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the proposer may cancel")
	}
	if proposal.Executed {
		return nil, nil, errors.Wrap(ErrProposalExecuted, "cannot cancel")
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return nil, nil, err
	}
	if height >= proposal.ExpiresAt {
		return nil, nil, errors.Wrapf(errors.ErrExpired, "proposal expired at %d", proposal.ExpiresAt)
	}
	return &msg, proposal, nil
}

// ExecuteProposalHandler applies an approved proposal exactly once.
// The handler must run under a savepoint: the executed flag is written
// before the effect is applied, and a failing effect must roll both
// back so the proposal stays retryable while unexpired.
type ExecuteProposalHandler struct {
	auth      x.Authenticator
	signers   SignerBucket
	proposals ProposalBucket
	options   OptionBucket
	state     StateBucket
	mover     FundsMover
}

var _ treasury.Handler = ExecuteProposalHandler{}

func (h ExecuteProposalHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += executeCost
	return res, nil
}

func (h ExecuteProposalHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return res, err
	}

	// Marked executed before the effect dispatch so a re-entrant
	// execute attempt sees the terminal state.
	proposal.Executed = true
	if err := h.proposals.Update(db, msg.ProposalID, proposal); err != nil {
		return res, errors.Wrap(err, "failed to update proposal")
	}

	if err := h.execute(db, msg.ProposalID, proposal, height); err != nil {
		return res, err
	}

	logger := treasury.GetLogger(ctx)
	logger.Info("executed proposal",
		"id", fmt.Sprintf("%x", msg.ProposalID),
		"type", proposal.Type.String(),
	)

	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("execute")},
	}...)
	return res, nil
}

func (h ExecuteProposalHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*ExecuteProposalMsg, *Proposal, error) {
	var msg ExecuteProposalMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := requireActiveSigner(ctx, db, h.auth, h.signers); err != nil {
		return nil, nil, err
	}
	proposal, err := h.proposals.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Executed {
		return nil, nil, errors.Wrap(ErrProposalExecuted, "cannot execute twice")
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if proposal.VotesFor < state.Threshold {
		return nil, nil, errors.Wrapf(ErrInsufficientVotes, "%d of %d", proposal.VotesFor, state.Threshold)
	}
	height, err := requireHeight(ctx)
	if err != nil {
		return nil, nil, err
	}
	if height >= proposal.ExpiresAt {
		return nil, nil, errors.Wrapf(errors.ErrExpired, "proposal expired at %d", proposal.ExpiresAt)
	}
	return &msg, proposal, nil
}
