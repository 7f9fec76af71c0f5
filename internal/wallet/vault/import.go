package vault

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/address"
	"github/chapool/go-keyvault/internal/wallet/keystore"
	"github/chapool/go-keyvault/internal/wallet/registry"
	"github/chapool/go-keyvault/internal/wallet/seed"
)

// mnemonicSecret is what gets sealed into the registry for HD accounts.
type mnemonicSecret struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase,omitempty"`
}

func (s *service) ImportAccount(ctx context.Context, payload ImportPayload, password string) (acct wallet.Account, err error) {
	defer s.observe("import", time.Now(), &err)

	if payload == nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, errors.New("missing import payload"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch p := payload.(type) {
	case KeystoreImport:
		acct, err = s.importKeystore(ctx, p, password)
	case *KeystoreImport:
		acct, err = s.importKeystore(ctx, *p, password)
	case PrivateKeyImport:
		acct, err = s.importPrivateKey(ctx, p, password)
	case *PrivateKeyImport:
		acct, err = s.importPrivateKey(ctx, *p, password)
	case MnemonicImport:
		acct, err = s.importMnemonic(ctx, p, password)
	case *MnemonicImport:
		acct, err = s.importMnemonic(ctx, *p, password)
	case WatchImport:
		acct, err = s.importWatch(ctx, p)
	case *WatchImport:
		acct, err = s.importWatch(ctx, *p)
	default:
		err = wallet.Fail(wallet.ErrInvalidFormat, errors.Errorf("unsupported import encoding %q", payload.Encoding()))
	}

	log := util.LogFromContext(ctx)
	if err != nil {
		log.Debug().Err(err).Str("encoding", string(payload.Encoding())).Msg("Account import failed")
		return wallet.Account{}, err
	}

	log.Info().
		Str("address", acct.Address.Hex()).
		Str("kind", string(acct.Kind)).
		Str("encoding", string(payload.Encoding())).
		Msg("Account imported")

	return acct, nil
}

func (s *service) importKeystore(ctx context.Context, p KeystoreImport, password string) (wallet.Account, error) {
	header, err := keystore.ParseHeader(p.JSON)
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, err)
	}

	// The plaintext address lets duplicates fail before paying for key derivation.
	if header.HasAddress {
		if err := s.ensureNew(header.Address); err != nil {
			return wallet.Account{}, err
		}
	}

	key, err := ethkeystore.DecryptKey(p.JSON, p.Passphrase)
	if err != nil {
		if errors.Is(err, ethkeystore.ErrDecrypt) {
			return wallet.Account{}, wallet.Fail(wallet.ErrDecryptionFailed, err)
		}
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, err)
	}
	defer address.ZeroKey(key.PrivateKey)

	return s.storeKey(ctx, key.PrivateKey, password, &registry.Record{Kind: wallet.KeyKindPrivateKey})
}

func (s *service) importPrivateKey(ctx context.Context, p PrivateKeyImport, password string) (wallet.Account, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(p.HexKey), "0x"))
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, errors.New("private key is not valid hex"))
	}
	defer seed.Wipe(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, errors.Wrap(err, "invalid private key"))
	}
	defer address.ZeroKey(key)

	return s.storeKey(ctx, key, password, &registry.Record{Kind: wallet.KeyKindPrivateKey})
}

func (s *service) importMnemonic(ctx context.Context, p MnemonicImport, password string) (wallet.Account, error) {
	phrase := seed.Normalize(p.Phrase)
	if !seed.Validate(phrase) {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, seed.ErrInvalidMnemonic)
	}

	path := p.DerivationPath
	if path == "" {
		path = address.DefaultDerivationPath
	}

	seedBytes, err := seed.FromMnemonic(phrase, p.Passphrase)
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, err)
	}
	defer seed.Wipe(seedBytes)

	key, err := s.addresses.DeriveKey(seedBytes, path)
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, err)
	}
	defer address.ZeroKey(key)

	secret, err := json.Marshal(mnemonicSecret{Mnemonic: phrase, Passphrase: p.Passphrase})
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrKeyGenerationFailed, err)
	}
	defer seed.Wipe(secret)

	sealed, err := s.seal(secret, password)
	if err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrKeyGenerationFailed, err)
	}

	return s.storeKey(ctx, key, password, &registry.Record{
		Kind:           wallet.KeyKindHD,
		DerivationPath: path,
		SealedMnemonic: sealed,
	})
}

func (s *service) importWatch(_ context.Context, p WatchImport) (wallet.Account, error) {
	raw := strings.TrimSpace(p.Address)
	if !common.IsHexAddress(raw) {
		return wallet.Account{}, wallet.Fail(wallet.ErrInvalidFormat, errors.Errorf("invalid address %q", raw))
	}

	addr := common.HexToAddress(raw)
	if err := s.ensureNew(addr); err != nil {
		return wallet.Account{}, err
	}

	rec := &registry.Record{
		Address:   addr,
		Kind:      wallet.KeyKindWatchOnly,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.registry.Put(rec); err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrStorageFailed, err)
	}

	return rec.Account(), nil
}

// storeKey checks key's address for duplicates, writes the key file encrypted
// with password and commits the credential and rec.
func (s *service) storeKey(ctx context.Context, key *ecdsa.PrivateKey, password string, rec *registry.Record) (wallet.Account, error) {
	addr := address.FromPrivateKey(key)
	if err := s.ensureNew(addr); err != nil {
		return wallet.Account{}, err
	}

	written, err := s.ks.ImportECDSA(key, password)
	if err != nil {
		if errors.Is(err, ethkeystore.ErrAccountAlreadyExists) {
			return wallet.Account{}, duplicate(addr)
		}
		return wallet.Account{}, wallet.Fail(wallet.ErrStorageFailed, err)
	}

	rec.Address = written.Address
	rec.CreatedAt = time.Now().UTC()

	if err := s.commit(ctx, rec, password, written); err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrStorageFailed, err)
	}

	return rec.Account(), nil
}

func (s *service) ensureNew(addr common.Address) error {
	exists, err := s.existsLocked(addr)
	if err != nil {
		return err
	}
	if exists {
		return duplicate(addr)
	}
	return nil
}

func duplicate(addr common.Address) error {
	return wallet.Fail(wallet.ErrDuplicateAccount, errors.Errorf("account %s already exists", addr.Hex()))
}

func (s *service) seal(secret []byte, password string) (json.RawMessage, error) {
	sealed, err := keystore.Seal(secret, password, s.sealParams)
	if err != nil {
		return nil, err
	}
	return keystore.Marshal(sealed)
}

func (s *service) openSealed(data json.RawMessage, password string) ([]byte, error) {
	sealed, err := keystore.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return keystore.Open(sealed, password)
}
