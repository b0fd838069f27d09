package x

import (
	"github.com/quorumfund/treasury"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of handlers,
// so we can plug in another authentication system besides signature
// verification (like test stubs).
type Authenticator interface {
	// GetConditions reveals all conditions fulfilled by the transaction,
	// you may want to know who is signing the tx
	GetConditions(treasury.Context) []treasury.Condition

	// HasAddress checks if any condition matches this address
	HasAddress(treasury.Context, treasury.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticators
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all conditions of all sub-authenticators
func (m MultiAuth) GetConditions(ctx treasury.Context) []treasury.Condition {
	var res []treasury.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	// TODO: remove duplicates
	return res
}

// HasAddress returns true iff any sub-authenticator approves
func (m MultiAuth) HasAddress(ctx treasury.Context, addr treasury.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the conditions and returns addresses of all conditions
// currently fulfilled by the given context
func GetAddresses(ctx treasury.Context, auth Authenticator) []treasury.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]treasury.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first condition. This is used for
// fee payment and helps with dedupe sequence checks
func MainSigner(ctx treasury.Context, auth Authenticator) treasury.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx treasury.Context, auth Authenticator, required []treasury.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasNAddresses returns true if at least n elements in requested are
// also in context.
func HasNAddresses(ctx treasury.Context, auth Authenticator, requested []treasury.Address, n int) bool {
	// Special case: is this an error???
	if n <= 0 {
		return true
	}

	var count int
	for _, r := range requested {
		if auth.HasAddress(ctx, r) {
			count++
			if count >= n {
				return true
			}
		}
	}
	return false
}
