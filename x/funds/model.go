package funds

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/orm"
)

// Wallet holds the token balance of one address. The wallet key is the
// raw address it belongs to.
type Wallet struct {
	Balance uint64
}

var _ orm.CloneableData = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(w)
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, w)
}

// Validate requires nothing beyond the type itself. Balance of zero is a
// legal wallet state.
func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{Balance: w.Balance}
}

// AsWallet extracts the Wallet from the stored object. Returns nil on nil
// input, so it can be chained with a bucket Get.
func AsWallet(obj orm.Object) *Wallet {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Wallet)
}

// WalletBucket is a type-safe bucket holding wallets keyed by address.
type WalletBucket struct {
	orm.Bucket
}

// NewWalletBucket initializes a WalletBucket
func NewWalletBucket() WalletBucket {
	return WalletBucket{
		Bucket: orm.NewBucket("wllt", orm.NewSimpleObj(nil, new(Wallet))),
	}
}

// Get returns the wallet for the given address, or nil if none is stored.
func (b WalletBucket) Get(db treasury.ReadOnlyKVStore, addr treasury.Address) (orm.Object, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	return b.Bucket.Get(db, addr)
}

// GetOrCreate returns the wallet for the address, creating an empty one
// in memory if it does not exist yet. The new wallet is not persisted
// until saved.
func (b WalletBucket) GetOrCreate(db treasury.KVStore, addr treasury.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = orm.NewSimpleObj(addr, new(Wallet))
	}
	return obj, err
}

// Balance returns the balance of the wallet under the given address.
// A missing wallet has a balance of zero.
func (b WalletBucket) Balance(db treasury.ReadOnlyKVStore, addr treasury.Address) (uint64, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return AsWallet(obj).Balance, nil
}
