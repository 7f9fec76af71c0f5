// Package registry keeps per-account metadata next to the encrypted key files:
// the key kind, HD derivation details and watch-only addresses.
package registry

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/storage"
	"github/chapool/go-keyvault/internal/wallet"
)

const accountPrefix = "account:"

// ErrNotFound is returned when no record exists for an address.
var ErrNotFound = errors.New("account record not found")

// Record is the persisted metadata of one account.
type Record struct {
	Address        common.Address  `json:"address"`
	Kind           wallet.KeyKind  `json:"kind"`
	DerivationPath string          `json:"derivation_path,omitempty"`
	SealedMnemonic json.RawMessage `json:"sealed_mnemonic,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Account converts Record to wallet.Account
func (r *Record) Account() wallet.Account {
	return wallet.Account{
		Address:        r.Address,
		Kind:           r.Kind,
		DerivationPath: r.DerivationPath,
		CreatedAt:      r.CreatedAt,
	}
}

// Registry stores Records in a LevelDB keyspace.
type Registry struct {
	db *storage.LevelDB
}

// New creates a Registry on top of db. The registry does not own db.
func New(db *storage.LevelDB) *Registry {
	return &Registry{db: db}
}

func key(addr common.Address) []byte {
	return []byte(accountPrefix + wallet.CredentialKey(addr))
}

// DB is the database the records live in.
func (r *Registry) DB() *storage.LevelDB {
	return r.db
}

func encode(rec *Record) ([]byte, error) {
	if !rec.Kind.Valid() {
		return nil, errors.Errorf("invalid key kind %q", rec.Kind)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal account record")
	}
	return data, nil
}

// Put inserts or replaces the record for rec.Address.
func (r *Registry) Put(rec *Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	if err := r.db.Set(key(rec.Address), data); err != nil {
		return errors.Wrap(err, "failed to store account record")
	}

	return nil
}

// StagePut adds the write of rec to b instead of storing it right away.
func (r *Registry) StagePut(b *storage.Batch, rec *Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	b.Set(key(rec.Address), data)
	return nil
}

// StageDelete adds the removal of addr's record to b.
func (r *Registry) StageDelete(b *storage.Batch, addr common.Address) {
	b.Delete(key(addr))
}

// Get returns the record for addr or ErrNotFound.
func (r *Registry) Get(addr common.Address) (*Record, error) {
	data, err := r.db.Get(key(addr))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load account record")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal account record")
	}

	return &rec, nil
}

// Has reports whether a record exists for addr.
func (r *Registry) Has(addr common.Address) (bool, error) {
	ok, err := r.db.Has(key(addr))
	if err != nil {
		return false, errors.Wrap(err, "failed to check account record")
	}
	return ok, nil
}

// Delete removes the record for addr. Deleting a missing record is not an error.
func (r *Registry) Delete(addr common.Address) error {
	if err := r.db.Delete(key(addr)); err != nil {
		return errors.Wrap(err, "failed to delete account record")
	}
	return nil
}

// List returns all records ordered by lower-cased address.
func (r *Registry) List() ([]*Record, error) {
	records := []*Record{}

	err := r.db.Scan([]byte(accountPrefix), func(_, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return errors.Wrap(err, "failed to unmarshal account record")
		}
		records = append(records, &rec)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list account records")
	}

	return records, nil
}
