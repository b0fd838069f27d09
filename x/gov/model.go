package gov

import (
	"math"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/orm"
)

const (
	// MinSigners is the lowest number of active signers the treasury
	// operates with. The signature threshold can never drop below it.
	MinSigners = 3

	// MaxSigners caps the active signer set.
	MaxSigners = 20

	// proposalDuration is the number of blocks a proposal stays open
	// for voting, counted from its creation height.
	proposalDuration = 1440

	// maxDescriptionLength bounds the proposal description in bytes.
	maxDescriptionLength = 256
)

// treasuryCondition guards the custody account holding the shared fund.
var treasuryCondition = treasury.NewCondition("gov", "treasury", []byte("funds"))

// TreasuryAccount returns the address of the treasury custody account.
// Deposits move funds to it, executed transfers move funds out of it.
func TreasuryAccount() treasury.Address {
	return treasuryCondition.Address()
}

// ProposalType tags a proposal with the effect its execution applies.
type ProposalType int32

const (
	// ProposalTransfer moves funds from the treasury to a recipient.
	ProposalTransfer ProposalType = iota
	// ProposalAddSigner activates a new signer.
	ProposalAddSigner
	// ProposalRemoveSigner deactivates an existing signer.
	ProposalRemoveSigner
	// ProposalChangeThreshold sets a new signature threshold.
	ProposalChangeThreshold
)

func (t ProposalType) String() string {
	switch t {
	case ProposalTransfer:
		return "transfer"
	case ProposalAddSigner:
		return "add_signer"
	case ProposalRemoveSigner:
		return "remove_signer"
	case ProposalChangeThreshold:
		return "change_threshold"
	default:
		return "invalid"
	}
}

func (t ProposalType) validate() error {
	switch t {
	case ProposalTransfer, ProposalAddSigner, ProposalRemoveSigner, ProposalChangeThreshold:
		return nil
	default:
		return errors.Wrapf(errors.ErrType, "proposal type %d", t)
	}
}

// Signer is one entry of the signer registry, keyed by the signer
// address. Signers are never deleted, a removal flips Active to false.
type Signer struct {
	Active  bool
	AddedAt int64
	AddedBy treasury.Address
}

var _ orm.CloneableData = (*Signer)(nil)

func (s *Signer) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Signer) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

func (s *Signer) Validate() error {
	if s.AddedAt < 0 {
		return errors.Wrap(errors.ErrModel, "negative addition height")
	}
	if err := s.AddedBy.Validate(); err != nil {
		return errors.Wrap(err, "added by")
	}
	return nil
}

func (s *Signer) Copy() orm.CloneableData {
	return &Signer{
		Active:  s.Active,
		AddedAt: s.AddedAt,
		AddedBy: s.AddedBy.Clone(),
	}
}

// Proposal is a pending, typed request for treasury action awaiting
// votes. It is keyed by an 8 byte big endian sequence value.
type Proposal struct {
	Type         ProposalType
	Proposer     treasury.Address
	Recipient    treasury.Address
	Amount       uint64
	Description  string
	CreatedAt    int64
	ExpiresAt    int64
	Executed     bool
	VotesFor     uint32
	VotesAgainst uint32
}

var _ orm.CloneableData = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *Proposal) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, p)
}

func (p *Proposal) Validate() error {
	if err := p.Type.validate(); err != nil {
		return err
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.CreatedAt < 0 || p.ExpiresAt < p.CreatedAt {
		return errors.Wrap(errors.ErrModel, "expiration before creation")
	}
	if p.Type == ProposalTransfer {
		if err := p.Recipient.Validate(); err != nil {
			return errors.Wrap(err, "recipient")
		}
		if p.Amount == 0 {
			return errors.Wrap(errors.ErrAmount, "zero transfer")
		}
	}
	return nil
}

func (p *Proposal) Copy() orm.CloneableData {
	return &Proposal{
		Type:         p.Type,
		Proposer:     p.Proposer.Clone(),
		Recipient:    p.Recipient.Clone(),
		Amount:       p.Amount,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		ExpiresAt:    p.ExpiresAt,
		Executed:     p.Executed,
		VotesFor:     p.VotesFor,
		VotesAgainst: p.VotesAgainst,
	}
}

// Active returns true if the proposal can still accept votes and be
// executed at the given height. The expiration boundary is exclusive,
// at exactly ExpiresAt the proposal is no longer active.
func (p *Proposal) Active(height int64) bool {
	return !p.Executed && height < p.ExpiresAt
}

// CountVote increments the matching vote counter.
func (p *Proposal) CountVote(approved bool) error {
	if approved {
		if p.VotesFor == math.MaxUint32 {
			return errors.Wrap(errors.ErrOverflow, "votes for")
		}
		p.VotesFor++
	} else {
		if p.VotesAgainst == math.MaxUint32 {
			return errors.Wrap(errors.ErrOverflow, "votes against")
		}
		p.VotesAgainst++
	}
	return nil
}

func validateDescription(s string) error {
	if len(s) == 0 {
		return errors.Wrap(errors.ErrEmpty, "description")
	}
	if len(s) > maxDescriptionLength {
		return errors.Wrapf(errors.ErrInput, "description longer than %d bytes", maxDescriptionLength)
	}
	return nil
}

// GovernanceOption is the side payload of the three governance proposal
// types, keyed by the proposal ID. Transfer proposals carry none.
type GovernanceOption struct {
	TargetSigner treasury.Address
	NewThreshold uint32
}

var _ orm.CloneableData = (*GovernanceOption)(nil)

func (o *GovernanceOption) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(o)
}

func (o *GovernanceOption) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, o)
}

func (o *GovernanceOption) Validate() error {
	if len(o.TargetSigner) != 0 {
		if err := o.TargetSigner.Validate(); err != nil {
			return errors.Wrap(err, "target signer")
		}
	}
	return nil
}

func (o *GovernanceOption) Copy() orm.CloneableData {
	return &GovernanceOption{
		TargetSigner: o.TargetSigner.Clone(),
		NewThreshold: o.NewThreshold,
	}
}

// Vote is one signer's immutable decision on one proposal, keyed by
// the voter address concatenated with the proposal ID.
type Vote struct {
	Approved bool
	VotedAt  int64
}

var _ orm.CloneableData = (*Vote)(nil)

func (v *Vote) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(v)
}

func (v *Vote) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, v)
}

func (v *Vote) Validate() error {
	if v.VotedAt < 0 {
		return errors.Wrap(errors.ErrModel, "negative vote height")
	}
	return nil
}

func (v *Vote) Copy() orm.CloneableData {
	return &Vote{Approved: v.Approved, VotedAt: v.VotedAt}
}

// TreasuryState is the singleton governance aggregate. All cross
// cutting counters live here so the invariants between them hold
// within one record.
type TreasuryState struct {
	Admin        treasury.Address
	Threshold    uint32
	TotalSigners uint32
	Emergency    bool
	Balance      uint64
}

var _ orm.CloneableData = (*TreasuryState)(nil)

func (t *TreasuryState) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(t)
}

func (t *TreasuryState) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, t)
}

func (t *TreasuryState) Validate() error {
	if err := t.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if t.TotalSigners < MinSigners || t.TotalSigners > MaxSigners {
		return errors.Wrapf(ErrInsufficientSigners, "%d active signers", t.TotalSigners)
	}
	if t.Threshold < MinSigners || t.Threshold > t.TotalSigners {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d of %d signers", t.Threshold, t.TotalSigners)
	}
	return nil
}

func (t *TreasuryState) Copy() orm.CloneableData {
	return &TreasuryState{
		Admin:        t.Admin.Clone(),
		Threshold:    t.Threshold,
		TotalSigners: t.TotalSigners,
		Emergency:    t.Emergency,
		Balance:      t.Balance,
	}
}
