package treasurytest

import (
	"github.com/quorumfund/treasury"
)

// Tx is a mock implementing treasury.Tx interface.
type Tx struct {
	// Msg is the message that this transaction is carrying.
	Msg treasury.Msg

	// Err if set is returned by any method call.
	Err error
}

var _ treasury.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (treasury.Msg, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg.Marshal()
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if tx.Err != nil {
		return tx.Err
	}
	return tx.Msg.Unmarshal(raw)
}

// Msg is a mock implementing treasury.Msg interface.
type Msg struct {
	// RoutePath is returned by the Path method.
	RoutePath string

	// Serialized represents the serialized form of this message.
	Serialized []byte

	// Err if set is returned by any method call.
	Err error
}

var _ treasury.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Marshal() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Serialized, nil
}

func (m *Msg) Unmarshal(b []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Serialized = b
	return nil
}

func (m *Msg) Validate() error {
	return m.Err
}
