package orm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumfund/treasury/errors"
	"github.com/quorumfund/treasury/store"
)

// counter is a minimal model to exercise bucket plumbing.
type counter struct {
	Count int64
}

var _ CloneableData = (*counter)(nil)

func (c *counter) Marshal() ([]byte, error) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(c.Count))
	return bz, nil
}

func (c *counter) Unmarshal(bz []byte) error {
	if len(bz) != 8 {
		return errors.Wrap(errors.ErrInput, "malformed counter")
	}
	c.Count = int64(binary.BigEndian.Uint64(bz))
	return nil
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	return &counter{Count: c.Count}
}

func TestBucketSaveGet(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewSimpleObj(nil, new(counter)))

	key := []byte("alpha")

	// missing is not an error, just nil
	obj, err := bucket.Get(db, key)
	require.NoError(t, err)
	require.Nil(t, obj)

	err = bucket.Save(db, NewSimpleObj(key, &counter{Count: 55}))
	require.NoError(t, err)

	obj, err = bucket.Get(db, key)
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, key, obj.Key())
	assert.Equal(t, int64(55), obj.Value().(*counter).Count)

	// keys from different buckets don't collide
	other := NewBucket("other", NewSimpleObj(nil, new(counter)))
	obj, err = other.Get(db, key)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestBucketRejectsInvalidSave(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewSimpleObj(nil, new(counter)))

	err := bucket.Save(db, NewSimpleObj([]byte("bad"), &counter{Count: -2}))
	require.Error(t, err)
	assert.True(t, errors.ErrModel.Is(err))

	err = bucket.Save(db, NewSimpleObj(nil, &counter{Count: 1}))
	require.Error(t, err)
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestBucketDelete(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewSimpleObj(nil, new(counter)))

	key := []byte("gone")
	require.NoError(t, bucket.Save(db, NewSimpleObj(key, &counter{Count: 7})))
	require.NoError(t, bucket.Delete(db, key))

	obj, err := bucket.Get(db, key)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestSequence(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewSimpleObj(nil, new(counter)))

	seq := bucket.Sequence("id")
	latest, _ := seq.Latest(db)
	assert.Equal(t, int64(0), latest)

	assert.Equal(t, int64(1), seq.NextInt(db))
	assert.Equal(t, EncodeSequence(2), seq.NextVal(db))

	latest, raw := seq.Latest(db)
	assert.Equal(t, int64(2), latest)
	assert.Equal(t, EncodeSequence(2), raw)

	// an independently constructed sequence continues the series
	again := NewSequence("cnts", "id")
	assert.Equal(t, int64(3), again.NextInt(db))
}
