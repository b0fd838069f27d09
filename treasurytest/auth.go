package treasurytest

import (
	"context"

	"github.com/quorumfund/treasury"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of provided conditions. Use single
// Signer attribute if only one signer is to be authenticated.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convenience attribute when creating an authentication for a single
	// signer.
	Signer treasury.Condition

	// Signers represents an authentication of multiple signers.
	Signers []treasury.Condition
}

func (a *Auth) GetConditions(treasury.Context) []treasury.Condition {
	conds := a.Signers
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	return conds
}

func (a *Auth) HasAddress(ctx treasury.Context, addr treasury.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve conditions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

func (a *CtxAuth) SetConditions(ctx treasury.Context, conds ...treasury.Condition) treasury.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx treasury.Context) []treasury.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]treasury.Condition)
	if !ok {
		panic("conditions stored in the context by an unknown entity")
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx treasury.Context, addr treasury.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
