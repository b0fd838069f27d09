package gov

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

const (
	pathCreateTransferMsg     = "gov/create_transfer"
	pathCreateAddSignerMsg    = "gov/create_add_signer"
	pathCreateRemoveSignerMsg = "gov/create_remove_signer"
	pathCreateThresholdMsg    = "gov/create_threshold"
	pathVoteMsg               = "gov/vote"
	pathCancelMsg             = "gov/cancel"
	pathExecuteMsg            = "gov/execute"
	pathDepositMsg            = "gov/deposit"
	pathEmergencyModeMsg      = "gov/emergency_mode"
	pathEmergencyWithdrawMsg  = "gov/emergency_withdraw"
)

// proposalIDLength is the width of a sequence generated proposal ID.
const proposalIDLength = 8

func validateProposalID(id []byte) error {
	if len(id) != proposalIDLength {
		return errors.Wrapf(errors.ErrInput, "proposal id must be %d bytes", proposalIDLength)
	}
	return nil
}

// CreateTransferProposalMsg proposes moving funds from the treasury to
// a recipient.
type CreateTransferProposalMsg struct {
	Recipient   treasury.Address
	Amount      uint64
	Description string
}

var _ treasury.Msg = (*CreateTransferProposalMsg)(nil)

func (CreateTransferProposalMsg) Path() string {
	return pathCreateTransferMsg
}

func (m *CreateTransferProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateTransferProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateTransferProposalMsg) Validate() error {
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	return validateDescription(m.Description)
}

// CreateAddSignerProposalMsg proposes activating a new signer.
type CreateAddSignerProposalMsg struct {
	Signer      treasury.Address
	Description string
}

var _ treasury.Msg = (*CreateAddSignerProposalMsg)(nil)

func (CreateAddSignerProposalMsg) Path() string {
	return pathCreateAddSignerMsg
}

func (m *CreateAddSignerProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateAddSignerProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateAddSignerProposalMsg) Validate() error {
	if err := m.Signer.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	return validateDescription(m.Description)
}

// CreateRemoveSignerProposalMsg proposes deactivating an existing
// signer.
type CreateRemoveSignerProposalMsg struct {
	Signer      treasury.Address
	Description string
}

var _ treasury.Msg = (*CreateRemoveSignerProposalMsg)(nil)

func (CreateRemoveSignerProposalMsg) Path() string {
	return pathCreateRemoveSignerMsg
}

func (m *CreateRemoveSignerProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateRemoveSignerProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateRemoveSignerProposalMsg) Validate() error {
	if err := m.Signer.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	return validateDescription(m.Description)
}

// CreateThresholdProposalMsg proposes a new signature threshold.
type CreateThresholdProposalMsg struct {
	Threshold   uint32
	Description string
}

var _ treasury.Msg = (*CreateThresholdProposalMsg)(nil)

func (CreateThresholdProposalMsg) Path() string {
	return pathCreateThresholdMsg
}

func (m *CreateThresholdProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateThresholdProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateThresholdProposalMsg) Validate() error {
	// The upper bound depends on the current signer count and is
	// checked by the handler.
	if m.Threshold < MinSigners {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d below minimum %d", m.Threshold, MinSigners)
	}
	return validateDescription(m.Description)
}

// VoteMsg casts the caller's vote on an active proposal.
type VoteMsg struct {
	ProposalID []byte
	Approve    bool
}

var _ treasury.Msg = (*VoteMsg)(nil)

func (VoteMsg) Path() string {
	return pathVoteMsg
}

func (m *VoteMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *VoteMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *VoteMsg) Validate() error {
	return validateProposalID(m.ProposalID)
}

// CancelProposalMsg closes the caller's own proposal early.
type CancelProposalMsg struct {
	ProposalID []byte
}

var _ treasury.Msg = (*CancelProposalMsg)(nil)

func (CancelProposalMsg) Path() string {
	return pathCancelMsg
}

func (m *CancelProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CancelProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CancelProposalMsg) Validate() error {
	return validateProposalID(m.ProposalID)
}

// ExecuteProposalMsg applies an approved proposal.
type ExecuteProposalMsg struct {
	ProposalID []byte
}

var _ treasury.Msg = (*ExecuteProposalMsg)(nil)

func (ExecuteProposalMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ExecuteProposalMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *ExecuteProposalMsg) Validate() error {
	return validateProposalID(m.ProposalID)
}

// DepositMsg moves funds from the caller into the treasury. Anyone may
// fund the treasury, no signer status is required.
type DepositMsg struct {
	Amount uint64
}

var _ treasury.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *DepositMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero deposit")
	}
	return nil
}

// SetEmergencyModeMsg switches emergency mode on or off. Admin only.
type SetEmergencyModeMsg struct {
	Enabled bool
}

var _ treasury.Msg = (*SetEmergencyModeMsg)(nil)

func (SetEmergencyModeMsg) Path() string {
	return pathEmergencyModeMsg
}

func (m *SetEmergencyModeMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *SetEmergencyModeMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *SetEmergencyModeMsg) Validate() error {
	return nil
}

// EmergencyWithdrawMsg moves funds out of the treasury without a
// proposal. This is the break-glass bypass of the multi-signature
// scheme: admin only, and only while emergency mode is on.
type EmergencyWithdrawMsg struct {
	Recipient treasury.Address
	Amount    uint64
}

var _ treasury.Msg = (*EmergencyWithdrawMsg)(nil)

func (EmergencyWithdrawMsg) Path() string {
	return pathEmergencyWithdrawMsg
}

func (m *EmergencyWithdrawMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *EmergencyWithdrawMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *EmergencyWithdrawMsg) Validate() error {
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero withdrawal")
	}
	return nil
}
