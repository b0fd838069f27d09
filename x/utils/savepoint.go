package utils

import (
	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ treasury.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator,
// but you must call OnCheck/OnDeliver so it will be triggered
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on Check
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a savepoint that will trigger on Deliver
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx treasury.Context, store treasury.KVStore, tx treasury.Tx, next treasury.Checker) (treasury.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cstore, ok := store.(treasury.CacheableKVStore)
	if !ok {
		return treasury.CheckResult{}, errors.Wrap(errors.ErrDatabase, "store is not cacheable")
	}
	cache := cstore.CacheWrap()

	res, err := next.Check(ctx, cache, tx)
	if err == nil {
		cache.Write()
	} else {
		cache.Discard()
	}
	return res, err
}

// Deliver will optionally set a checkpoint
func (s Savepoint) Deliver(ctx treasury.Context, store treasury.KVStore, tx treasury.Tx, next treasury.Deliverer) (treasury.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	cstore, ok := store.(treasury.CacheableKVStore)
	if !ok {
		return treasury.DeliverResult{}, errors.Wrap(errors.ErrDatabase, "store is not cacheable")
	}
	cache := cstore.CacheWrap()

	res, err := next.Deliver(ctx, cache, tx)
	if err == nil {
		cache.Write()
	} else {
		cache.Discard()
	}
	return res, err
}
