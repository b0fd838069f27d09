package gov

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/x/funds"
)

// Initializer fulfils the Initializer interface to load the initial
// signer set and threshold from genesis file. It must run after the
// funds initializer so the treasury balance mirror starts in sync with
// the ledger.
type Initializer struct{}

var _ treasury.Initializer = Initializer{}

func (Initializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	var gen struct {
		Admin     treasury.Address   `json:"admin"`
		Signers   []treasury.Address `json:"signers"`
		Threshold uint32             `json:"threshold"`
	}
	if err := opts.ReadOptions("governance", &gen); err != nil {
		return errors.Wrap(err, "cannot parse governance")
	}
	if gen.Admin == nil && gen.Signers == nil {
		// No governance configuration in this genesis.
		return nil
	}

	if err := gen.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if len(gen.Signers) < MinSigners || len(gen.Signers) > MaxSigners {
		return errors.Wrapf(ErrInsufficientSigners, "%d initial signers", len(gen.Signers))
	}
	if gen.Threshold < MinSigners || int(gen.Threshold) > len(gen.Signers) {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d of %d signers", gen.Threshold, len(gen.Signers))
	}

	signers := NewSignerBucket()
	seen := make(map[string]bool, len(gen.Signers))
	for _, addr := range gen.Signers {
		if err := addr.Validate(); err != nil {
			return errors.Wrap(err, "signer")
		}
		if seen[addr.String()] {
			return errors.Wrapf(ErrSignerExists, "%s listed twice", addr)
		}
		seen[addr.String()] = true

		signer := &Signer{
			Active:  true,
			AddedAt: 0,
			AddedBy: gen.Admin,
		}
		if err := signers.SaveSigner(db, addr, signer); err != nil {
			return errors.Wrap(err, "cannot save signer")
		}
	}

	// The balance mirror starts at whatever the ledger already holds
	// for the custody account.
	balance, err := funds.NewWalletBucket().Balance(db, TreasuryAccount())
	if err != nil {
		return errors.Wrap(err, "treasury balance")
	}

	state := &TreasuryState{
		Admin:        gen.Admin,
		Threshold:    gen.Threshold,
		TotalSigners: uint32(len(gen.Signers)),
		Emergency:    false,
		Balance:      balance,
	}
	return NewStateBucket().SaveState(db, state)
}
