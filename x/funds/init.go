package funds

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

// Initializer fulfils the Initializer interface to load initial balances
// from genesis file
type Initializer struct{}

var _ treasury.Initializer = Initializer{}

// FromGenesis will parse initial wallet balances from the genesis and
// persist them in the database.
func (Initializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	accounts := []struct {
		Address treasury.Address `json:"address"`
		Balance uint64           `json:"balance"`
	}{}
	if err := opts.ReadOptions("funds", &accounts); err != nil {
		return errors.Wrap(err, "cannot parse funds")
	}

	ctrl := NewController(NewWalletBucket())
	for i, acc := range accounts {
		if err := acc.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d address", i)
		}
		if acc.Balance == 0 {
			continue
		}
		if err := ctrl.IssueFunds(db, acc.Address, acc.Balance); err != nil {
			return errors.Wrapf(err, "account #%d issue", i)
		}
	}
	return nil
}
