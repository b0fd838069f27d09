package treasury

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just the standard context, with enforced conventions on what
// gets stored inside. There should exist two functions for every XYZ of
// type T that we want to support in Context:
//
//   WithXYZ(Context, T) Context
//   GetXYZ(Context) (val T, ok bool)
//
// WithXYZ may panic if the value was previously set to avoid lower-level
// modules overwriting the value (eg. height).
type Context context.Context

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeyHeight contextKey = iota
	contextKeyLogger
)

// WithHeight sets the block height for the Context.
// Panics if height was previously set, the rest of the stack must see the
// same clock reading throughout one operation.
func WithHeight(ctx Context, height int64) Context {
	if _, ok := GetHeight(ctx); ok {
		panic("Height already set")
	}
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height and true if the height was set
// on this Context.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithLogger sets the logger for this Context
func WithLogger(ctx Context, logger log.Logger) Context {
	// Logger is always set to default, so we can overwrite
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
