// Package credential holds per-account passwords in a secure-storage backend keyed by
// the lower-cased account address.
package credential

import "github/chapool/go-keyvault/internal/storage"

// Store is the secure-storage collaborator of the vault.
type Store interface {
	// Get returns the value stored under key; ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(value string, key string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Batcher is a Store whose writes can join a storage.Batch on DB, so that
// they commit together with other records of the same database.
type Batcher interface {
	Store

	DB() *storage.LevelDB
	StageSet(b *storage.Batch, value string, key string)
	StageDelete(b *storage.Batch, key string)
}
