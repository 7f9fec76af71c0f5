package credential

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name credentials are filed under in
// the OS keyring.
const DefaultKeyringService = "keyvault"

// KeyringStore keeps credentials in the OS keyring (Keychain, Secret Service
// or Windows Credential Manager) instead of on disk.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Get(key string) (string, bool, error) {
	v, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to read credential from keyring")
	}
	return v, true, nil
}

func (s *KeyringStore) Set(value string, key string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return errors.Wrap(err, "failed to write credential to keyring")
	}
	return nil
}

func (s *KeyringStore) Delete(key string) error {
	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "failed to delete credential from keyring")
	}
	return nil
}
