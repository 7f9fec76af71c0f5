package credential

import (
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/storage"
)

const credentialPrefix = "credential:"

// LevelStore persists credentials in a LevelDB keyspace. The database file must live
// on storage the operator already trusts with secrets.
type LevelStore struct {
	db *storage.LevelDB
}

// NewLevelStore creates a LevelStore on top of db. The store does not own db.
func NewLevelStore(db *storage.LevelDB) *LevelStore {
	return &LevelStore{db: db}
}

func (s *LevelStore) Get(key string) (string, bool, error) {
	v, err := s.db.Get([]byte(credentialPrefix + key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to read credential")
	}
	return string(v), true, nil
}

func (s *LevelStore) Set(value string, key string) error {
	if err := s.db.Set([]byte(credentialPrefix+key), []byte(value)); err != nil {
		return errors.Wrap(err, "failed to write credential")
	}
	return nil
}

func (s *LevelStore) Delete(key string) error {
	if err := s.db.Delete([]byte(credentialPrefix + key)); err != nil {
		return errors.Wrap(err, "failed to delete credential")
	}
	return nil
}

func (s *LevelStore) DB() *storage.LevelDB {
	return s.db
}

func (s *LevelStore) StageSet(b *storage.Batch, value string, key string) {
	b.Set([]byte(credentialPrefix+key), []byte(value))
}

func (s *LevelStore) StageDelete(b *storage.Batch, key string) {
	b.Delete([]byte(credentialPrefix + key))
}
