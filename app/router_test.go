package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/store"
	"github.com/quorumfund/treasury/treasurytest"
)

func TestRouterSuccess(t *testing.T) {
	r := NewRouter()
	h := &treasurytest.Handler{
		DeliverResult: treasury.DeliverResult{Data: []byte("ok")},
	}
	r.Handle("test/good", h)

	db := store.MemStore()
	tx := &treasurytest.Tx{Msg: &treasurytest.Msg{RoutePath: "test/good"}}

	_, err := r.Check(context.Background(), db, tx)
	assert.NoError(t, err)

	res, err := r.Deliver(context.Background(), db, tx)
	assert.NoError(t, err)
	assert.Equal(t, []byte("ok"), res.Data)

	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestRouterNoHandler(t *testing.T) {
	r := NewRouter()
	db := store.MemStore()
	tx := &treasurytest.Tx{Msg: &treasurytest.Msg{RoutePath: "test/missing"}}

	_, err := r.Check(context.Background(), db, tx)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(context.Background(), db, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestRouterRejectsBadPath(t *testing.T) {
	r := NewRouter()
	assert.Panics(t, func() {
		r.Handle("Bad Path!", &treasurytest.Handler{})
	})

	r.Handle("test/dup", &treasurytest.Handler{})
	assert.Panics(t, func() {
		r.Handle("test/dup", &treasurytest.Handler{})
	})
}
