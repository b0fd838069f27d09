package x

import (
	"fmt"

	"github.com/quorumfund/treasury"
)

// Validater is anything that can be validated
type Validater interface {
	Validate() error
}

// MustValidate panics if the object doesn't validate.
// Use this only for data that we firmly control, like genesis defaults.
func MustValidate(obj Validater) {
	if err := obj.Validate(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

// MustMarshal will succeed or panic. For use in test code, or for
// objects that were validated before serializing.
func MustMarshal(obj treasury.Marshaller) []byte {
	bz, err := obj.Marshal()
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return bz
}

// MustUnmarshal will succeed or panic. For use in test code, or for
// bytes that we wrote ourselves.
func MustUnmarshal(obj treasury.Persistent, bz []byte) {
	if err := obj.Unmarshal(bz); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

// MustMarshalValid marshals the object, but panics if the object is not
// valid or has trouble with serializing
func MustMarshalValid(obj MarshalValidater) []byte {
	MustValidate(obj)
	return MustMarshal(obj)
}

// MarshalValidater is something that can be validated and serialized
type MarshalValidater interface {
	treasury.Marshaller
	Validater
}
