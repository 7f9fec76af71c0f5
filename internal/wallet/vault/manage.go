package vault

import (
	"context"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/address"
	"github/chapool/go-keyvault/internal/wallet/registry"
	"github/chapool/go-keyvault/internal/wallet/seed"
)

func (s *service) ExportAccount(ctx context.Context, addr common.Address, password, newPassword string) (out []byte, err error) {
	defer s.observe("export", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	keyed, err := s.signingAccountLocked(addr)
	if err != nil {
		return nil, err
	}

	out, err = s.ks.Export(keyed, password, newPassword)
	if err != nil {
		return nil, passwordOr(wallet.ErrExportFailed, err)
	}

	util.LogFromContext(ctx).Info().Str("address", addr.Hex()).Msg("Account exported")

	return out, nil
}

// DeleteAccount removes the key file, which also verifies password, and then
// the credential and the registry record. A key file that cannot be removed
// leaves everything in place.
func (s *service) DeleteAccount(ctx context.Context, addr common.Address, password string) (err error) {
	defer s.observe("delete", time.Now(), &err)
	log := util.LogFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.lookupLocked(addr)
	if err != nil {
		return err
	}

	if acct.Kind == wallet.KeyKindWatchOnly {
		if err := s.registry.Delete(addr); err != nil {
			return wallet.Fail(wallet.ErrDeletionFailed, err)
		}
		log.Info().Str("address", addr.Hex()).Msg("Watch-only account deleted")
		return nil
	}

	keyed, err := s.keyAccountLocked(addr)
	if err != nil {
		return err
	}

	if err := s.ks.Delete(keyed, password); err != nil {
		return passwordOr(wallet.ErrDeletionFailed, err)
	}

	if err := s.forgetRecords(addr); err != nil {
		log.Error().Err(err).Str("address", addr.Hex()).Msg("Key file removed but account records remain")
		return wallet.Fail(wallet.ErrDeletionFailed, errors.Wrap(err, "key removed but account records remain"))
	}

	log.Info().Str("address", addr.Hex()).Msg("Account deleted")

	return nil
}

// RotatePassword re-encrypts the key file and the sealed mnemonic with
// newPassword and replaces the credential. If the credential or record cannot
// be written the key file gets the old password back.
func (s *service) RotatePassword(ctx context.Context, addr common.Address, oldPassword, newPassword string) (err error) {
	defer s.observe("rotate", time.Now(), &err)
	log := util.LogFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	keyed, err := s.signingAccountLocked(addr)
	if err != nil {
		return err
	}

	rec, err := s.registry.Get(addr)
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		return wallet.Fail(wallet.ErrRotationFailed, err)
	}

	if err := s.ks.Update(keyed, oldPassword, newPassword); err != nil {
		return passwordOr(wallet.ErrRotationFailed, err)
	}

	fail := func(cause error) error {
		if err := s.ks.Update(keyed, newPassword, oldPassword); err != nil {
			log.Error().Err(err).Str("address", addr.Hex()).Msg("Failed to roll back key file password")
		}
		return wallet.Fail(wallet.ErrRotationFailed, cause)
	}

	var updated *registry.Record
	if rec != nil && len(rec.SealedMnemonic) > 0 {
		secret, err := s.openSealed(rec.SealedMnemonic, oldPassword)
		if err != nil {
			return fail(errors.Wrap(err, "failed to open sealed mnemonic"))
		}

		resealed, err := s.seal(secret, newPassword)
		seed.Wipe(secret)
		if err != nil {
			return fail(errors.Wrap(err, "failed to reseal mnemonic"))
		}

		next := *rec
		next.SealedMnemonic = resealed
		updated = &next
	}

	if err := s.storeRecords(ctx, addr, rec, updated, newPassword); err != nil {
		return fail(err)
	}

	log.Info().Str("address", addr.Hex()).Msg("Account password rotated")

	return nil
}

func (s *service) VerifyPassword(_ context.Context, addr common.Address, password string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyed, err := s.signingAccountLocked(addr)
	if err != nil {
		return err
	}

	if err := s.checkPassword(keyed, password); err != nil {
		return passwordOr(wallet.ErrStorageFailed, err)
	}

	return nil
}

// signingAccountLocked resolves addr to its key file, rejecting watch-only
// and unknown accounts.
func (s *service) signingAccountLocked(addr common.Address) (accounts.Account, error) {
	acct, err := s.lookupLocked(addr)
	if err != nil {
		return accounts.Account{}, err
	}

	if !acct.Kind.CanSign() {
		return accounts.Account{}, wallet.Fail(wallet.ErrWatchOnlyAccount, errors.Errorf("account %s has no key", addr.Hex()))
	}

	return s.keyAccountLocked(addr)
}

func (s *service) keyAccountLocked(addr common.Address) (accounts.Account, error) {
	keyed, err := s.ks.Find(accounts.Account{Address: addr})
	if err != nil {
		if errors.Is(err, ethkeystore.ErrNoMatch) {
			return accounts.Account{}, wallet.Fail(wallet.ErrUnknownAccount, err)
		}
		return accounts.Account{}, wallet.Fail(wallet.ErrStorageFailed, err)
	}
	return keyed, nil
}

// checkPassword decrypts the key file of keyed without touching it.
func (s *service) checkPassword(keyed accounts.Account, password string) error {
	data, err := os.ReadFile(keyed.URL.Path)
	if err != nil {
		return errors.Wrap(err, "failed to read key file")
	}

	key, err := ethkeystore.DecryptKey(data, password)
	if err != nil {
		return err
	}
	address.ZeroKey(key.PrivateKey)

	return nil
}

// passwordOr maps a keystore decryption failure to ErrWrongPassword and
// anything else to kind.
func passwordOr(kind *wallet.Error, err error) error {
	if errors.Is(err, ethkeystore.ErrDecrypt) {
		return wallet.Fail(wallet.ErrWrongPassword, err)
	}
	return wallet.Fail(kind, err)
}
