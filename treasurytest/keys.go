package treasurytest

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/quorumfund/treasury"
)

// NewCondition returns a newly generated condition that can be used to
// represent a unique signer identity in tests.
func NewCondition() treasury.Condition {
	data := make([]byte, 20)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return treasury.NewCondition("sigs", "ed25519", data)
}

// SequenceID returns an ID encoded the way a sequence incrementation is.
// This is a reverse operation of a sequence counter value serialization.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
