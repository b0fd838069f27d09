package treasury

import (
	"reflect"

	"github.com/quorumfund/treasury/errors"
)

// Marshaller is anything that can be represented in binary
//
// Marshall may validate the data before serializing it and
// unless you previously validated the struct,
// errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
//
// As with Marshaller, this may do internal validation on the data
// and errors should be expected.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is a request to make a state transition. It is just the request, and
// must be validated by the Handlers. All authentication information is in
// the wrapping Tx.
type Msg interface {
	Persistent

	// Validate returns an error if the message content is not considered
	// valid. This is called before the message is processed.
	Validate() error

	// Path returns the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	Path() string
}

// Tx represents the data submitted by a caller. It includes the actual
// message, along with information needed to authenticate the sender
// (verified upstream, before the message reaches any handler).
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from the transaction, validates it and loads
// it into given destination. Destination must be a pointer to the expected
// message type. A message of an unexpected type is an ErrMsg failure.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	d := reflect.ValueOf(destination)
	if d.Kind() != reflect.Ptr {
		return errors.Wrap(errors.ErrType, "destination must be a pointer")
	}
	m := reflect.ValueOf(msg)
	if m.Type() != d.Type() {
		return errors.Wrapf(errors.ErrMsg, "want %T, got %T", destination, msg)
	}
	d.Elem().Set(m.Elem())
	return nil
}
