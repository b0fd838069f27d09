package store

import (
	"fmt"

	"github.com/quorumfund/treasury"
)

type opKind int32

const (
	setKind opKind = iota + 1
	delKind
)

// op is either set or delete, queued up in a cache wrap until Write replays
// it on the parent store in the original order.
type op struct {
	kind  opKind
	key   []byte
	value []byte // only for set
}

func (o op) apply(out treasury.KVStore) {
	switch o.kind {
	case setKind:
		out.Set(o.key, o.value)
	case delKind:
		out.Delete(o.key)
	default:
		panic(fmt.Sprintf("Unknown kind: %d", o.kind))
	}
}

func setOp(key, value []byte) op {
	return op{
		kind:  setKind,
		key:   key,
		value: value,
	}
}

func delOp(key []byte) op {
	return op{
		kind: delKind,
		key:  key,
	}
}
