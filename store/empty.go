package store

import "github.com/quorumfund/treasury"

// EmptyKVStore never holds any data, used as a base layer under a cache wrap
type EmptyKVStore struct{}

var _ treasury.KVStore = EmptyKVStore{}

// Get always returns nil
func (e EmptyKVStore) Get(key []byte) []byte { return nil }

// Has always returns false
func (e EmptyKVStore) Has(key []byte) bool { return false }

// Set is a noop
func (e EmptyKVStore) Set(key, value []byte) {}

// Delete is a noop
func (e EmptyKVStore) Delete(key []byte) {}
