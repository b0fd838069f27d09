package gov

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/orm"
)

// SignerBucket is the signer registry, keyed by signer address.
type SignerBucket struct {
	orm.Bucket
}

func NewSignerBucket() SignerBucket {
	return SignerBucket{
		Bucket: orm.NewBucket("signer", orm.NewSimpleObj(nil, new(Signer))),
	}
}

// GetSigner returns the registry entry for the address, or nil if the
// address was never a signer.
func (b SignerBucket) GetSigner(db treasury.ReadOnlyKVStore, addr treasury.Address) (*Signer, error) {
	obj, err := b.Get(db, addr)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.Value().(*Signer), nil
}

// IsActive returns true iff an entry exists for the address and it is
// still active.
func (b SignerBucket) IsActive(db treasury.ReadOnlyKVStore, addr treasury.Address) (bool, error) {
	signer, err := b.GetSigner(db, addr)
	if err != nil {
		return false, err
	}
	return signer != nil && signer.Active, nil
}

// SaveSigner persists the registry entry under the given address.
func (b SignerBucket) SaveSigner(db treasury.KVStore, addr treasury.Address, signer *Signer) error {
	return b.Save(db, orm.NewSimpleObj(addr, signer))
}

// ProposalBucket holds the proposals and owns the ID sequence.
type ProposalBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

func NewProposalBucket() ProposalBucket {
	bucket := orm.NewBucket("proposal", orm.NewSimpleObj(nil, new(Proposal)))
	return ProposalBucket{
		Bucket: bucket,
		idSeq:  bucket.Sequence(orm.SeqID),
	}
}

// Create persists the proposal under the next sequence value and
// returns the allocated ID.
func (b ProposalBucket) Create(db treasury.KVStore, proposal *Proposal) ([]byte, error) {
	id := b.idSeq.NextVal(db)
	if err := b.Save(db, orm.NewSimpleObj(id, proposal)); err != nil {
		return nil, err
	}
	return id, nil
}

// GetProposal returns the proposal stored under the ID. An unknown ID
// is an ErrNotFound failure.
func (b ProposalBucket) GetProposal(db treasury.ReadOnlyKVStore, id []byte) (*Proposal, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "proposal %x", id)
	}
	return obj.Value().(*Proposal), nil
}

// Update persists a modified proposal under its existing ID.
func (b ProposalBucket) Update(db treasury.KVStore, id []byte, proposal *Proposal) error {
	return b.Save(db, orm.NewSimpleObj(id, proposal))
}

// NextID returns the ID the next created proposal will receive, without
// allocating it.
func (b ProposalBucket) NextID(db treasury.ReadOnlyKVStore) int64 {
	latest, _ := b.idSeq.Latest(db)
	return latest + 1
}

// OptionBucket holds the governance side payloads, keyed by proposal ID.
type OptionBucket struct {
	orm.Bucket
}

func NewOptionBucket() OptionBucket {
	return OptionBucket{
		Bucket: orm.NewBucket("govopt", orm.NewSimpleObj(nil, new(GovernanceOption))),
	}
}

// GetOption returns the side payload of a governance proposal. An
// unknown ID is an ErrNotFound failure, transfer proposals store none.
func (b OptionBucket) GetOption(db treasury.ReadOnlyKVStore, proposalID []byte) (*GovernanceOption, error) {
	obj, err := b.Get(db, proposalID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "option for proposal %x", proposalID)
	}
	return obj.Value().(*GovernanceOption), nil
}

// SaveOption persists the side payload under the proposal ID.
func (b OptionBucket) SaveOption(db treasury.KVStore, proposalID []byte, option *GovernanceOption) error {
	return b.Save(db, orm.NewSimpleObj(proposalID, option))
}

// VoteBucket is the vote ledger. The key is the voter address followed
// by the proposal ID, so a signer can have at most one vote per
// proposal by construction.
type VoteBucket struct {
	orm.Bucket
}

func NewVoteBucket() VoteBucket {
	return VoteBucket{
		Bucket: orm.NewBucket("vote", orm.NewSimpleObj(nil, new(Vote))),
	}
}

func voteKey(voter treasury.Address, proposalID []byte) []byte {
	key := make([]byte, 0, len(voter)+len(proposalID))
	key = append(key, voter...)
	return append(key, proposalID...)
}

// HasVoted returns true if the voter already cast a vote on the
// proposal.
func (b VoteBucket) HasVoted(db treasury.ReadOnlyKVStore, voter treasury.Address, proposalID []byte) (bool, error) {
	obj, err := b.Get(db, voteKey(voter, proposalID))
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

// GetVote returns the vote of the voter on the proposal, or nil if none
// was cast.
func (b VoteBucket) GetVote(db treasury.ReadOnlyKVStore, voter treasury.Address, proposalID []byte) (*Vote, error) {
	obj, err := b.Get(db, voteKey(voter, proposalID))
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.Value().(*Vote), nil
}

// SaveVote persists the vote. It does not guard against overwrite, the
// handler must check HasVoted first.
func (b VoteBucket) SaveVote(db treasury.KVStore, voter treasury.Address, proposalID []byte, vote *Vote) error {
	return b.Save(db, orm.NewSimpleObj(voteKey(voter, proposalID), vote))
}

// stateKey is the fixed key of the singleton TreasuryState record.
var stateKey = []byte("treasury")

// StateBucket holds the singleton governance aggregate.
type StateBucket struct {
	orm.Bucket
}

func NewStateBucket() StateBucket {
	return StateBucket{
		Bucket: orm.NewBucket("govstate", orm.NewSimpleObj(nil, new(TreasuryState))),
	}
}

// GetState loads the governance aggregate. The record is written by the
// genesis initializer, a missing record means the treasury was never
// initialized.
func (b StateBucket) GetState(db treasury.ReadOnlyKVStore) (*TreasuryState, error) {
	obj, err := b.Get(db, stateKey)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrap(errors.ErrState, "treasury not initialized")
	}
	return obj.Value().(*TreasuryState), nil
}

// SaveState persists the governance aggregate.
func (b StateBucket) SaveState(db treasury.KVStore, state *TreasuryState) error {
	return b.Save(db, orm.NewSimpleObj(stateKey, state))
}
