package treasury

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	bg := context.Background()

	_, ok := GetHeight(bg)
	assert.False(t, ok)

	ctx := WithHeight(bg, 123)
	height, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(123), height)

	// The clock reading is fixed for the whole operation.
	assert.Panics(t, func() {
		WithHeight(ctx, 456)
	})
}

func TestContextLogger(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	logger := log.NewNopLogger()
	ctx := WithLogger(bg, logger)
	assert.Equal(t, logger, GetLogger(ctx))
}
