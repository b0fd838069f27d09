package app

import (
	"fmt"
	"regexp"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

// Router allows us to register many handlers with different
// paths and then direct each message to the registered handler.
type Router struct {
	routes map[string]treasury.Handler
}

var _ treasury.Registry = Router{}

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-z]+(/[a-z_]+)*$`).MatchString

// NewRouter initializes a router with no routes
func NewRouter() Router {
	return Router{
		routes: make(map[string]treasury.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered or if the path is invalid.
func (r Router) Handle(path string, h treasury.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is found,
// it returns a noSuchPathHandler. This method always returns a non-nil Handler.
func (r Router) handler(m treasury.Msg) treasury.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

// Check dispatches to the proper handler based on path
func (r Router) Check(ctx treasury.Context, store treasury.KVStore, tx treasury.Tx) (treasury.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return treasury.CheckResult{}, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r Router) Deliver(ctx treasury.Context, store treasury.KVStore, tx treasury.Tx) (treasury.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return treasury.DeliverResult{}, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ treasury.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(treasury.Context, treasury.KVStore, treasury.Tx) (treasury.CheckResult, error) {
	return treasury.CheckResult{}, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}

func (h noSuchPathHandler) Deliver(treasury.Context, treasury.KVStore, treasury.Tx) (treasury.DeliverResult, error) {
	return treasury.DeliverResult{}, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}
