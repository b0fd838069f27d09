package treasurytest

import (
	"sync"

	"github.com/quorumfund/treasury"
)

// Handler implements treasury.Handler interface.
// Besides mocking the handler, it also counts the calls.
type Handler struct {
	mu sync.Mutex

	checkCall   int
	CheckResult treasury.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult treasury.DeliverResult
	DeliverErr    error
}

var _ treasury.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checkCall++
	return h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx treasury.Context, db treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliverCall++
	return h.DeliverResult, h.DeliverErr
}

// CheckCallCount returns the number of times Check was called.
func (h *Handler) CheckCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkCall
}

// DeliverCallCount returns the number of times Deliver was called.
func (h *Handler) DeliverCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deliverCall
}

// CallCount returns the total number of times Check or Deliver were called.
func (h *Handler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkCall + h.deliverCall
}
