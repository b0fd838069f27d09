package gov

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/app"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/store"
	"github.com/quorumfund/treasury/treasurytest"
	"github.com/quorumfund/treasury/x/funds"
	"github.com/quorumfund/treasury/x/utils"
)

type testEnv struct {
	t       *testing.T
	db      treasury.CacheableKVStore
	auth    *treasurytest.CtxAuth
	router  app.Router
	save    utils.Savepoint
	ctrl    funds.BaseController
	admin   treasury.Condition
	signers []treasury.Condition

	proposals ProposalBucket
	signerB   SignerBucket
	votes     VoteBucket
	stateB    StateBucket
}

// newTestEnv initializes a treasury with the given number of genesis
// signers and threshold, funds the custody account and wires all
// handlers behind a savepoint, the way the application runs them.
func newTestEnv(t *testing.T, signerCount int, threshold uint32, balance uint64, mover FundsMover) *testEnv {
	t.Helper()

	db := store.MemStore()
	admin := treasurytest.NewCondition()
	signers := make([]treasury.Condition, signerCount)
	addrs := make([]treasury.Address, signerCount)
	for i := range signers {
		signers[i] = treasurytest.NewCondition()
		addrs[i] = signers[i].Address()
	}

	ctrl := funds.NewController(funds.NewWalletBucket())
	if balance > 0 {
		require.NoError(t, ctrl.IssueFunds(db, TreasuryAccount(), balance))
	}

	raw, err := json.Marshal(map[string]interface{}{
		"admin":     admin.Address(),
		"signers":   addrs,
		"threshold": threshold,
	})
	require.NoError(t, err)
	var ini Initializer
	require.NoError(t, ini.FromGenesis(treasury.Options{"governance": raw}, db))

	auth := &treasurytest.CtxAuth{Key: "auth"}
	var m FundsMover = ctrl
	if mover != nil {
		m = mover
	}
	router := app.NewRouter()
	RegisterRoutes(router, auth, m)

	return &testEnv{
		t:         t,
		db:        db,
		auth:      auth,
		router:    router,
		save:      utils.NewSavepoint().OnCheck().OnDeliver(),
		ctrl:      ctrl,
		admin:     admin,
		signers:   signers,
		proposals: NewProposalBucket(),
		signerB:   NewSignerBucket(),
		votes:     NewVoteBucket(),
		stateB:    NewStateBucket(),
	}
}

func (e *testEnv) ctx(height int64, signer treasury.Condition) treasury.Context {
	ctx := treasury.WithHeight(context.Background(), height)
	return e.auth.SetConditions(ctx, signer)
}

func (e *testEnv) check(height int64, signer treasury.Condition, msg treasury.Msg) error {
	tx := &treasurytest.Tx{Msg: msg}
	_, err := e.save.Check(e.ctx(height, signer), e.db, tx, e.router)
	return err
}

func (e *testEnv) deliver(height int64, signer treasury.Condition, msg treasury.Msg) (treasury.DeliverResult, error) {
	tx := &treasurytest.Tx{Msg: msg}
	return e.save.Deliver(e.ctx(height, signer), e.db, tx, e.router)
}

// createTransfer delivers a transfer proposal and returns its ID.
func (e *testEnv) createTransfer(height int64, proposer treasury.Condition, recipient treasury.Address, amount uint64) []byte {
	e.t.Helper()
	res, err := e.deliver(height, proposer, &CreateTransferProposalMsg{
		Recipient:   recipient,
		Amount:      amount,
		Description: "test transfer",
	})
	require.NoError(e.t, err)
	require.Len(e.t, res.Data, proposalIDLength)
	return res.Data
}

func (e *testEnv) approveAll(height int64, id []byte) {
	e.t.Helper()
	for _, s := range e.signers {
		_, err := e.deliver(height, s, &VoteMsg{ProposalID: id, Approve: true})
		require.NoError(e.t, err)
	}
}

func (e *testEnv) state() *TreasuryState {
	e.t.Helper()
	state, err := e.stateB.GetState(e.db)
	require.NoError(e.t, err)
	return state
}

// failingMover is an asset ledger whose transfer primitive always
// fails.
type failingMover struct {
	err error
}

func (m failingMover) MoveFunds(treasury.KVStore, treasury.Address, treasury.Address, uint64) error {
	return m.err
}

func TestTransferProposalLifecycle(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()

	id := env.createTransfer(100, env.signers[0], recipient, 100)

	// Not enough votes yet.
	_, err := env.deliver(101, env.signers[0], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)
	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	assert.True(t, ErrInsufficientVotes.Is(err))

	_, err = env.deliver(103, env.signers[1], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)
	_, err = env.deliver(104, env.signers[2], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), proposal.VotesFor)
	assert.Equal(t, uint32(0), proposal.VotesAgainst)

	_, err = env.deliver(105, env.signers[1], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)

	bal, err := env.ctrl.Balance(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
	assert.Equal(t, uint64(900), env.state().Balance)

	proposal, err = env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.True(t, proposal.Executed)

	// Execution is terminal.
	_, err = env.deliver(106, env.signers[2], &ExecuteProposalMsg{ProposalID: id})
	assert.True(t, ErrProposalExecuted.Is(err))
	assert.Equal(t, uint64(900), env.state().Balance)
}

func TestCreateProposalValidation(t *testing.T) {
	stranger := treasurytest.NewCondition()
	recipient := treasurytest.NewCondition().Address()

	cases := map[string]struct {
		signerIdx int // -1 for stranger
		msg       func(env *testEnv) treasury.Msg
		wantErr   *errors.Error
	}{
		"non signer cannot propose": {
			signerIdx: -1,
			msg: func(env *testEnv) treasury.Msg {
				return &CreateTransferProposalMsg{Recipient: recipient, Amount: 1, Description: "x"}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"transfer to self": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateTransferProposalMsg{Recipient: env.signers[0].Address(), Amount: 1, Description: "x"}
			},
			wantErr: errors.ErrInput,
		},
		"transfer above treasury balance": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateTransferProposalMsg{Recipient: recipient, Amount: 1001, Description: "x"}
			},
			wantErr: funds.ErrInsufficientFunds,
		},
		"zero transfer": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateTransferProposalMsg{Recipient: recipient, Amount: 0, Description: "x"}
			},
			wantErr: errors.ErrAmount,
		},
		"empty description": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateTransferProposalMsg{Recipient: recipient, Amount: 1, Description: ""}
			},
			wantErr: errors.ErrEmpty,
		},
		"add existing signer": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateAddSignerProposalMsg{Signer: env.signers[1].Address(), Description: "x"}
			},
			wantErr: ErrSignerExists,
		},
		"remove below minimum signer count": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateRemoveSignerProposalMsg{Signer: env.signers[1].Address(), Description: "x"}
			},
			wantErr: ErrInsufficientSigners,
		},
		"remove self": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateRemoveSignerProposalMsg{Signer: env.signers[0].Address(), Description: "x"}
			},
			wantErr: ErrInvalidSigner,
		},
		"remove a non signer": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateRemoveSignerProposalMsg{Signer: stranger.Address(), Description: "x"}
			},
			wantErr: ErrInvalidSigner,
		},
		"threshold unchanged": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateThresholdProposalMsg{Threshold: 3, Description: "x"}
			},
			wantErr: ErrInvalidThreshold,
		},
		"threshold above signer count": {
			msg: func(env *testEnv) treasury.Msg {
				return &CreateThresholdProposalMsg{Threshold: 4, Description: "x"}
			},
			wantErr: ErrInvalidThreshold,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t, 3, 3, 1000, nil)
			signer := stranger
			if tc.signerIdx >= 0 {
				signer = env.signers[tc.signerIdx]
			}
			msg := tc.msg(env)

			err := env.check(50, signer, msg)
			assert.True(t, tc.wantErr.Is(err), "check: %+v", err)
			_, err = env.deliver(50, signer, msg)
			assert.True(t, tc.wantErr.Is(err), "deliver: %+v", err)
		})
	}
}

func TestVoteRules(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)

	// Unknown proposal.
	_, err := env.deliver(101, env.signers[0], &VoteMsg{ProposalID: treasurytest.SequenceID(99), Approve: true})
	assert.True(t, errors.ErrNotFound.Is(err))

	// Only active signers vote.
	_, err = env.deliver(101, treasurytest.NewCondition(), &VoteMsg{ProposalID: id, Approve: true})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = env.deliver(101, env.signers[0], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)

	// One vote per signer, even when switching sides.
	_, err = env.deliver(102, env.signers[0], &VoteMsg{ProposalID: id, Approve: true})
	assert.True(t, ErrAlreadyVoted.Is(err))
	_, err = env.deliver(102, env.signers[0], &VoteMsg{ProposalID: id, Approve: false})
	assert.True(t, ErrAlreadyVoted.Is(err))

	_, err = env.deliver(103, env.signers[1], &VoteMsg{ProposalID: id, Approve: false})
	require.NoError(t, err)

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), proposal.VotesFor)
	assert.Equal(t, uint32(1), proposal.VotesAgainst)

	vote, err := env.votes.GetVote(env.db, env.signers[1].Address(), id)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.False(t, vote.Approved)
	assert.Equal(t, int64(103), vote.VotedAt)
}

func TestVoteExpiryBoundary(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	require.Equal(t, int64(100+proposalDuration), proposal.ExpiresAt)

	// The last height a vote is accepted is ExpiresAt-1.
	_, err = env.deliver(proposal.ExpiresAt-1, env.signers[0], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)

	// At exactly ExpiresAt the proposal is no longer active.
	_, err = env.deliver(proposal.ExpiresAt, env.signers[1], &VoteMsg{ProposalID: id, Approve: true})
	assert.True(t, errors.ErrExpired.Is(err))

	// And it stays that way no matter how far the chain advances.
	_, err = env.deliver(proposal.ExpiresAt+5000, env.signers[1], &VoteMsg{ProposalID: id, Approve: true})
	assert.True(t, errors.ErrExpired.Is(err))
}

func TestExecuteExpired(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)
	env.approveAll(101, id)

	_, err := env.deliver(100+proposalDuration, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	assert.True(t, errors.ErrExpired.Is(err))

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint64(1000), env.state().Balance)
}

func TestExecuteByNonSigner(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)
	env.approveAll(101, id)

	_, err := env.deliver(102, treasurytest.NewCondition(), &ExecuteProposalMsg{ProposalID: id})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestExecuteRollbackOnTransferFailure(t *testing.T) {
	moverErr := errors.ErrHuman.New("ledger offline")
	env := newTestEnv(t, 3, 3, 1000, failingMover{err: moverErr})
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)
	env.approveAll(101, id)

	_, err := env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.Error(t, err)
	assert.True(t, errors.ErrHuman.Is(err))

	// The executed flag write was rolled back with the effect, the
	// proposal stays retryable and the votes are preserved.
	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint32(3), proposal.VotesFor)
	assert.Equal(t, uint64(1000), env.state().Balance)

	_, err = env.deliver(103, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.Error(t, err)
	assert.True(t, errors.ErrHuman.Is(err))
}

func TestCancelProposal(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)

	// Only the proposer may cancel.
	_, err := env.deliver(101, env.signers[1], &CancelProposalMsg{ProposalID: id})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = env.deliver(105, env.signers[0], &CancelProposalMsg{ProposalID: id})
	require.NoError(t, err)

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.Equal(t, int64(105), proposal.ExpiresAt)

	// A cancelled proposal behaves exactly like an expired one.
	_, err = env.deliver(105, env.signers[1], &VoteMsg{ProposalID: id, Approve: true})
	assert.True(t, errors.ErrExpired.Is(err))
	_, err = env.deliver(106, env.signers[0], &CancelProposalMsg{ProposalID: id})
	assert.True(t, errors.ErrExpired.Is(err))
}

func TestCancelExecutedProposal(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()
	id := env.createTransfer(100, env.signers[0], recipient, 10)
	env.approveAll(101, id)
	_, err := env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)

	_, err = env.deliver(103, env.signers[0], &CancelProposalMsg{ProposalID: id})
	assert.True(t, ErrProposalExecuted.Is(err))
}

func TestAddSignerExecution(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	newSigner := treasurytest.NewCondition()
	newcomer := newSigner.Address()

	res, err := env.deliver(100, env.signers[0], &CreateAddSignerProposalMsg{
		Signer:      newcomer,
		Description: "grow the set",
	})
	require.NoError(t, err)
	id := res.Data

	env.approveAll(101, id)
	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)

	signer, err := env.signerB.GetSigner(env.db, newcomer)
	require.NoError(t, err)
	require.NotNil(t, signer)
	assert.True(t, signer.Active)
	assert.Equal(t, int64(102), signer.AddedAt)
	assert.True(t, signer.AddedBy.Equals(env.signers[0].Address()))

	state := env.state()
	assert.Equal(t, uint32(4), state.TotalSigners)
	// Growing the signer set leaves the threshold untouched.
	assert.Equal(t, uint32(3), state.Threshold)

	// The new signer can vote right away.
	id2 := env.createTransfer(110, env.signers[0], treasurytest.NewCondition().Address(), 5)
	_, err = env.deliver(111, newSigner, &VoteMsg{ProposalID: id2, Approve: true})
	require.NoError(t, err)
}

func TestRemoveSignerClampsThreshold(t *testing.T) {
	env := newTestEnv(t, 4, 4, 1000, nil)

	res, err := env.deliver(100, env.signers[0], &CreateRemoveSignerProposalMsg{
		Signer:      env.signers[3].Address(),
		Description: "shrink the set",
	})
	require.NoError(t, err)
	id := res.Data

	env.approveAll(101, id)
	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)

	state := env.state()
	assert.Equal(t, uint32(3), state.TotalSigners)
	assert.Equal(t, uint32(3), state.Threshold)

	removed, err := env.signerB.GetSigner(env.db, env.signers[3].Address())
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.False(t, removed.Active)

	// The removed signer lost all privileges.
	id2 := env.createTransfer(110, env.signers[0], treasurytest.NewCondition().Address(), 5)
	_, err = env.deliver(111, env.signers[3], &VoteMsg{ProposalID: id2, Approve: true})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestChangeThresholdExecution(t *testing.T) {
	env := newTestEnv(t, 4, 3, 1000, nil)

	res, err := env.deliver(100, env.signers[0], &CreateThresholdProposalMsg{
		Threshold:   4,
		Description: "require everyone",
	})
	require.NoError(t, err)
	id := res.Data

	// The old threshold gates the approval of its own change.
	_, err = env.deliver(101, env.signers[0], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)
	_, err = env.deliver(101, env.signers[1], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)
	_, err = env.deliver(101, env.signers[2], &VoteMsg{ProposalID: id, Approve: true})
	require.NoError(t, err)

	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), env.state().Threshold)
}

func TestExecuteTransferAfterBalanceDrain(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()

	// Approved while the treasury could cover it.
	id := env.createTransfer(100, env.signers[0], recipient, 900)
	env.approveAll(101, id)

	// The balance shrinks between approval and execution.
	_, err := env.deliver(102, env.admin, &SetEmergencyModeMsg{Enabled: true})
	require.NoError(t, err)
	_, err = env.deliver(103, env.admin, &EmergencyWithdrawMsg{
		Recipient: treasurytest.NewCondition().Address(),
		Amount:    600,
	})
	require.NoError(t, err)
	_, err = env.deliver(104, env.admin, &SetEmergencyModeMsg{Enabled: false})
	require.NoError(t, err)

	// The creation time check no longer holds, execution fails and
	// rolls back cleanly.
	_, err = env.deliver(105, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	assert.True(t, funds.ErrInsufficientFunds.Is(err))

	proposal, err := env.proposals.GetProposal(env.db, id)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint32(3), proposal.VotesFor)
	assert.Equal(t, uint64(400), env.state().Balance)

	// Refilling the treasury makes the same proposal executable again.
	donor := treasurytest.NewCondition()
	require.NoError(t, env.ctrl.IssueFunds(env.db, donor.Address(), 600))
	_, err = env.deliver(106, donor, &DepositMsg{Amount: 600})
	require.NoError(t, err)

	_, err = env.deliver(107, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), env.state().Balance)
}

func TestExecuteRemoveSignerAtMinimum(t *testing.T) {
	env := newTestEnv(t, 4, 3, 1000, nil)

	// Two removals approved against the same four signer state.
	resA, err := env.deliver(100, env.signers[0], &CreateRemoveSignerProposalMsg{
		Signer:      env.signers[3].Address(),
		Description: "first removal",
	})
	require.NoError(t, err)
	resB, err := env.deliver(100, env.signers[1], &CreateRemoveSignerProposalMsg{
		Signer:      env.signers[2].Address(),
		Description: "second removal",
	})
	require.NoError(t, err)
	env.approveAll(101, resA.Data)
	env.approveAll(101, resB.Data)

	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: resA.Data})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), env.state().TotalSigners)

	// The second one would undershoot the minimum, so it fails at
	// execution despite its approval.
	_, err = env.deliver(103, env.signers[0], &ExecuteProposalMsg{ProposalID: resB.Data})
	assert.True(t, ErrInsufficientSigners.Is(err))

	proposal, err := env.proposals.GetProposal(env.db, resB.Data)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint32(3), env.state().TotalSigners)

	survivor, err := env.signerB.GetSigner(env.db, env.signers[2].Address())
	require.NoError(t, err)
	require.NotNil(t, survivor)
	assert.True(t, survivor.Active)
}

func TestExecuteDuplicateAddSigner(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	newcomer := treasurytest.NewCondition().Address()

	resA, err := env.deliver(100, env.signers[0], &CreateAddSignerProposalMsg{
		Signer:      newcomer,
		Description: "add once",
	})
	require.NoError(t, err)
	resB, err := env.deliver(100, env.signers[1], &CreateAddSignerProposalMsg{
		Signer:      newcomer,
		Description: "add twice",
	})
	require.NoError(t, err)
	env.approveAll(101, resA.Data)
	env.approveAll(101, resB.Data)

	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: resA.Data})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), env.state().TotalSigners)

	// The newcomer is already active by now.
	_, err = env.deliver(103, env.signers[0], &ExecuteProposalMsg{ProposalID: resB.Data})
	assert.True(t, ErrSignerExists.Is(err))

	proposal, err := env.proposals.GetProposal(env.db, resB.Data)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint32(4), env.state().TotalSigners)
}

func TestExecuteStaleThreshold(t *testing.T) {
	env := newTestEnv(t, 4, 3, 1000, nil)

	// Raising the threshold to 4 is valid while 4 signers exist.
	resT, err := env.deliver(100, env.signers[0], &CreateThresholdProposalMsg{
		Threshold:   4,
		Description: "require everyone",
	})
	require.NoError(t, err)
	resR, err := env.deliver(100, env.signers[1], &CreateRemoveSignerProposalMsg{
		Signer:      env.signers[3].Address(),
		Description: "shrink first",
	})
	require.NoError(t, err)
	env.approveAll(101, resT.Data)
	env.approveAll(101, resR.Data)

	_, err = env.deliver(102, env.signers[0], &ExecuteProposalMsg{ProposalID: resR.Data})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), env.state().TotalSigners)

	// Only 3 signers remain, a threshold of 4 is no longer satisfiable.
	_, err = env.deliver(103, env.signers[0], &ExecuteProposalMsg{ProposalID: resT.Data})
	assert.True(t, ErrInvalidThreshold.Is(err))

	proposal, err := env.proposals.GetProposal(env.db, resT.Data)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
	assert.Equal(t, uint32(3), env.state().Threshold)
}

func TestDeposit(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	donor := treasurytest.NewCondition()
	require.NoError(t, env.ctrl.IssueFunds(env.db, donor.Address(), 200))

	// Zero deposits are rejected by message validation.
	err := env.check(100, donor, &DepositMsg{Amount: 0})
	assert.True(t, errors.ErrAmount.Is(err))

	_, err = env.deliver(100, donor, &DepositMsg{Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, uint64(1050), env.state().Balance)

	bal, err := env.ctrl.Balance(env.db, donor.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(150), bal)

	treasuryBal, err := env.ctrl.Balance(env.db, TreasuryAccount())
	require.NoError(t, err)
	assert.Equal(t, uint64(1050), treasuryBal)

	// More than the donor owns.
	_, err = env.deliver(101, donor, &DepositMsg{Amount: 500})
	assert.True(t, funds.ErrInsufficientFunds.Is(err))
	assert.Equal(t, uint64(1050), env.state().Balance)
}

func TestDepositRollbackOnTransferFailure(t *testing.T) {
	moverErr := errors.ErrHuman.New("ledger offline")
	env := newTestEnv(t, 3, 3, 1000, failingMover{err: moverErr})
	donor := treasurytest.NewCondition()

	_, err := env.deliver(100, donor, &DepositMsg{Amount: 50})
	require.Error(t, err)
	assert.True(t, errors.ErrHuman.Is(err))
	assert.Equal(t, uint64(1000), env.state().Balance)
}

func TestEmergencyMode(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()

	// A proposal existing before the emergency.
	id := env.createTransfer(100, env.signers[0], recipient, 10)

	// Signers cannot flip emergency mode.
	_, err := env.deliver(101, env.signers[0], &SetEmergencyModeMsg{Enabled: true})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = env.deliver(101, env.admin, &SetEmergencyModeMsg{Enabled: true})
	require.NoError(t, err)
	assert.True(t, env.state().Emergency)

	// New proposals are blocked.
	_, err = env.deliver(102, env.signers[0], &CreateTransferProposalMsg{
		Recipient:   recipient,
		Amount:      10,
		Description: "x",
	})
	assert.True(t, ErrEmergencyActive.Is(err))
	_, err = env.deliver(102, env.signers[0], &CreateAddSignerProposalMsg{
		Signer:      treasurytest.NewCondition().Address(),
		Description: "x",
	})
	assert.True(t, ErrEmergencyActive.Is(err))

	// Voting, execution and cancellation of existing proposals are
	// unaffected.
	env.approveAll(103, id)
	_, err = env.deliver(104, env.signers[0], &ExecuteProposalMsg{ProposalID: id})
	require.NoError(t, err)

	_, err = env.deliver(105, env.admin, &SetEmergencyModeMsg{Enabled: false})
	require.NoError(t, err)
	assert.False(t, env.state().Emergency)
}

func TestEmergencyWithdraw(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()

	// Requires emergency mode.
	_, err := env.deliver(100, env.admin, &EmergencyWithdrawMsg{Recipient: recipient, Amount: 10})
	assert.True(t, errors.ErrState.Is(err))

	_, err = env.deliver(101, env.admin, &SetEmergencyModeMsg{Enabled: true})
	require.NoError(t, err)

	// Admin only.
	_, err = env.deliver(102, env.signers[0], &EmergencyWithdrawMsg{Recipient: recipient, Amount: 10})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// Bounded by the treasury balance.
	_, err = env.deliver(102, env.admin, &EmergencyWithdrawMsg{Recipient: recipient, Amount: 1001})
	assert.True(t, funds.ErrInsufficientFunds.Is(err))

	_, err = env.deliver(103, env.admin, &EmergencyWithdrawMsg{Recipient: recipient, Amount: 300})
	require.NoError(t, err)
	assert.Equal(t, uint64(700), env.state().Balance)

	bal, err := env.ctrl.Balance(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), bal)
}

func TestStatusQueries(t *testing.T) {
	env := newTestEnv(t, 3, 3, 1000, nil)
	recipient := treasurytest.NewCondition().Address()

	status, err := Status(env.db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), status.Balance)
	assert.Equal(t, uint32(3), status.TotalSigners)
	assert.Equal(t, uint32(3), status.Threshold)
	assert.False(t, status.Emergency)
	assert.Equal(t, int64(1), status.NextProposalID)

	id := env.createTransfer(100, env.signers[0], recipient, 10)

	status, err = Status(env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.NextProposalID)

	ps, err := StatusOf(env.db, id, 200)
	require.NoError(t, err)
	assert.True(t, ps.Active)
	assert.False(t, ps.SufficientVotes)
	assert.Equal(t, uint32(3), ps.VotesNeeded)
	assert.Equal(t, int64(100+proposalDuration-200), ps.HeightsRemaining)

	env.approveAll(201, id)
	ps, err = StatusOf(env.db, id, 100+proposalDuration)
	require.NoError(t, err)
	assert.False(t, ps.Active)
	assert.True(t, ps.SufficientVotes)
	assert.Equal(t, uint32(0), ps.VotesNeeded)
	assert.Equal(t, int64(0), ps.HeightsRemaining)
}
