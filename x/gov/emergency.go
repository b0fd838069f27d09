package gov

import (
	"math"

	"github.com/tendermint/tendermint/libs/common"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/x"
	"github.com/quorumfund/treasury/x/funds"
)

// DepositHandler moves funds from the caller into the treasury. No
// signer status is required, anyone may fund the treasury.
type DepositHandler struct {
	auth  x.Authenticator
	state StateBucket
	mover FundsMover
}

var _ treasury.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += depositCost
	return res, nil
}

func (h DepositHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, sender, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return res, err
	}
	if state.Balance > math.MaxUint64-msg.Amount {
		return res, errors.Wrap(errors.ErrOverflow, "treasury balance")
	}

	if err := h.mover.MoveFunds(db, sender, TreasuryAccount(), msg.Amount); err != nil {
		return res, errors.Wrap(err, "deposit failed")
	}
	state.Balance += msg.Amount
	if err := h.state.SaveState(db, state); err != nil {
		return res, err
	}

	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagAction), Value: []byte("deposit")},
	}...)
	return res, nil
}

func (h DepositHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*DepositMsg, treasury.Address, error) {
	var msg DepositMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	sender := x.MainSigner(ctx, h.auth)
	if sender == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return &msg, sender.Address(), nil
}

// EmergencyModeHandler switches emergency mode. Restricted to the
// admin, this is not subject to the multi-signature scheme.
type EmergencyModeHandler struct {
	auth  x.Authenticator
	state StateBucket
}

var _ treasury.Handler = EmergencyModeHandler{}

func (h EmergencyModeHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += adminCost
	return res, nil
}

func (h EmergencyModeHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, state, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}

	state.Emergency = msg.Enabled
	if err := h.state.SaveState(db, state); err != nil {
		return res, err
	}

	logger := treasury.GetLogger(ctx)
	logger.Info("emergency mode switched", "enabled", msg.Enabled)

	action := "emergency_off"
	if msg.Enabled {
		action = "emergency_on"
	}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagAction), Value: []byte(action)},
	}...)
	return res, nil
}

func (h EmergencyModeHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*SetEmergencyModeMsg, *TreasuryState, error) {
	var msg SetEmergencyModeMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, state.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin only")
	}
	return &msg, state, nil
}

// EmergencyWithdrawHandler moves funds directly out of the treasury,
// bypassing the proposal system. This is the break-glass escape hatch
// for crisis fund recovery: admin only and gated on emergency mode.
type EmergencyWithdrawHandler struct {
	auth  x.Authenticator
	state StateBucket
	mover FundsMover
}

var _ treasury.Handler = EmergencyWithdrawHandler{}

func (h EmergencyWithdrawHandler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	var res treasury.CheckResult
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return res, err
	}
	res.GasAllocated += executeCost
	return res, nil
}

func (h EmergencyWithdrawHandler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	var res treasury.DeliverResult
	msg, state, err := h.validate(ctx, db, tx)
	if err != nil {
		return res, err
	}

	if err := h.mover.MoveFunds(db, TreasuryAccount(), msg.Recipient, msg.Amount); err != nil {
		return res, errors.Wrap(err, "withdrawal failed")
	}
	state.Balance -= msg.Amount
	if err := h.state.SaveState(db, state); err != nil {
		return res, err
	}

	logger := treasury.GetLogger(ctx)
	logger.Info("emergency withdrawal",
		"recipient", msg.Recipient.String(),
		"amount", msg.Amount,
	)

	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagAction), Value: []byte("emergency_withdraw")},
	}...)
	return res, nil
}

func (h EmergencyWithdrawHandler) validate(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (*EmergencyWithdrawMsg, *TreasuryState, error) {
	var msg EmergencyWithdrawMsg
	if err := treasury.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	state, err := h.state.GetState(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, state.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin only")
	}
	if !state.Emergency {
		return nil, nil, errors.Wrap(errors.ErrState, "emergency mode is off")
	}
	if msg.Amount > state.Balance {
		return nil, nil, errors.Wrapf(funds.ErrInsufficientFunds, "treasury holds %d, requested %d", state.Balance, msg.Amount)
	}
	return &msg, state, nil
}
