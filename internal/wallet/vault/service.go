package vault

import (
	"bytes"
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/metrics"
	"github/chapool/go-keyvault/internal/storage"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/address"
	"github/chapool/go-keyvault/internal/wallet/credential"
	"github/chapool/go-keyvault/internal/wallet/keystore"
	"github/chapool/go-keyvault/internal/wallet/registry"
)

type service struct {
	ks          *ethkeystore.KeyStore
	credentials credential.Store
	registry    *registry.Registry
	addresses   address.Service
	sealParams  *keystore.ScryptParams
	metrics     *metrics.Metrics
	executor    Executor

	mu sync.RWMutex
}

// NewService opens the key directory in cfg.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(cfg Config, credentials credential.Store, reg *registry.Registry, opts ...Option) (Service, error) {
	if cfg.KeysDir == "" {
		return nil, errors.New("keys directory is required")
	}
	if credentials == nil || reg == nil {
		return nil, errors.New("credential store and registry are required")
	}
	if cfg.ScryptN <= 0 || cfg.ScryptP <= 0 {
		return nil, errors.Errorf("invalid scrypt parameters n=%d p=%d", cfg.ScryptN, cfg.ScryptP)
	}

	if err := os.MkdirAll(cfg.KeysDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create keys directory")
	}

	s := &service{
		ks:          ethkeystore.NewKeyStore(cfg.KeysDir, cfg.ScryptN, cfg.ScryptP),
		credentials: credentials,
		registry:    reg,
		addresses:   address.NewService(),
		sealParams:  keystore.NewScryptParams(cfg.ScryptN, cfg.ScryptP),
		executor:    func(f func()) { f() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *service) CreateAccount(ctx context.Context, password string) (acct wallet.Account, err error) {
	defer s.observe("create", time.Now(), &err)
	log := util.LogFromContext(ctx)

	if err := ctx.Err(); err != nil {
		return wallet.Account{}, wallet.Fail(wallet.ErrKeyGenerationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.ks.NewAccount(password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate account key")
		return wallet.Account{}, wallet.Fail(wallet.ErrKeyGenerationFailed, err)
	}

	rec := &registry.Record{
		Address:   created.Address,
		Kind:      wallet.KeyKindPrivateKey,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.commit(ctx, rec, password, created); err != nil {
		log.Error().Err(err).Str("address", created.Address.Hex()).Msg("Failed to persist created account")
		return wallet.Account{}, wallet.Fail(wallet.ErrKeyGenerationFailed, err)
	}

	log.Info().Str("address", created.Address.Hex()).Msg("Account created")

	return rec.Account(), nil
}

// commit stores the credential and the registry record of a key that was just
// written to the key directory. On failure the key file is removed again.
func (s *service) commit(ctx context.Context, rec *registry.Record, password string, written accounts.Account) error {
	if err := s.storeRecords(ctx, rec.Address, nil, rec, password); err != nil {
		s.discardKey(ctx, written, password)
		return err
	}

	return nil
}

// batcher returns the credential store when it lives in the registry database,
// so that credential and record writes can share one batch.
func (s *service) batcher() (credential.Batcher, bool) {
	creds, ok := s.credentials.(credential.Batcher)
	if !ok || creds.DB() != s.registry.DB() {
		return nil, false
	}
	return creds, true
}

func (s *service) write(batch *storage.Batch) error {
	if err := s.registry.DB().Write(batch); err != nil {
		return errors.Wrap(err, "failed to write account batch")
	}
	return nil
}

// storeRecords writes the credential of addr and, unless rec is nil, its
// registry record. A failed sequential write puts previous back.
func (s *service) storeRecords(ctx context.Context, addr common.Address, previous, rec *registry.Record, password string) error {
	credKey := wallet.CredentialKey(addr)

	if creds, ok := s.batcher(); ok {
		batch := new(storage.Batch)
		if rec != nil {
			if err := s.registry.StagePut(batch, rec); err != nil {
				return err
			}
		}
		creds.StageSet(batch, password, credKey)
		return s.write(batch)
	}

	if rec != nil {
		if err := s.registry.Put(rec); err != nil {
			return errors.Wrap(err, "failed to store account record")
		}
	}

	if err := s.credentials.Set(password, credKey); err != nil {
		if rec != nil {
			s.restoreRecord(ctx, addr, previous)
		}
		return errors.Wrap(err, "failed to store credential")
	}

	return nil
}

// restoreRecord puts previous back, or drops the record of addr when there
// was none.
func (s *service) restoreRecord(ctx context.Context, addr common.Address, previous *registry.Record) {
	var err error
	if previous != nil {
		err = s.registry.Put(previous)
	} else {
		err = s.registry.Delete(addr)
	}
	if err != nil {
		util.LogFromContext(ctx).Error().Err(err).Str("address", addr.Hex()).Msg("Failed to roll back account record")
	}
}

// forgetRecords removes the credential and the registry record of addr.
func (s *service) forgetRecords(addr common.Address) error {
	credKey := wallet.CredentialKey(addr)

	if creds, ok := s.batcher(); ok {
		batch := new(storage.Batch)
		creds.StageDelete(batch, credKey)
		s.registry.StageDelete(batch, addr)
		return s.write(batch)
	}

	credErr := s.credentials.Delete(credKey)
	if err := s.registry.Delete(addr); err != nil {
		return errors.Wrap(err, "failed to delete account record")
	}
	if credErr != nil {
		return errors.Wrap(credErr, "failed to delete credential")
	}

	return nil
}

func (s *service) discardKey(ctx context.Context, acct accounts.Account, password string) {
	if err := s.ks.Delete(acct, password); err != nil {
		util.LogFromContext(ctx).Error().Err(err).Str("address", acct.Address.Hex()).Msg("Failed to roll back key file")
	}
}

func (s *service) ListAccounts(ctx context.Context) (list []wallet.Account, err error) {
	defer s.observe("list", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked(ctx)
}

func (s *service) listLocked(ctx context.Context) ([]wallet.Account, error) {
	records, err := s.registry.List()
	if err != nil {
		return nil, wallet.Fail(wallet.ErrStorageFailed, err)
	}

	byAddress := make(map[common.Address]*registry.Record, len(records))
	for _, rec := range records {
		byAddress[rec.Address] = rec
	}

	keyed := s.ks.Accounts()
	out := make([]wallet.Account, 0, len(keyed)+len(records))
	seen := make(map[common.Address]bool, len(keyed))

	for _, a := range keyed {
		if seen[a.Address] {
			continue
		}
		seen[a.Address] = true

		if rec, ok := byAddress[a.Address]; ok && rec.Kind.CanSign() {
			out = append(out, rec.Account())
			continue
		}
		out = append(out, wallet.Account{Address: a.Address, Kind: wallet.KeyKindPrivateKey})
	}

	for _, rec := range records {
		if seen[rec.Address] {
			continue
		}
		if rec.Kind != wallet.KeyKindWatchOnly {
			util.LogFromContext(ctx).Warn().
				Str("address", rec.Address.Hex()).
				Msg("Account record without key file, skipping")
			continue
		}
		out = append(out, rec.Account())
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address.Bytes(), out[j].Address.Bytes()) < 0
	})

	return out, nil
}

func (s *service) HasAccounts(ctx context.Context) (bool, error) {
	list, err := s.ListAccounts(ctx)
	if err != nil {
		return false, err
	}
	return len(list) > 0, nil
}

func (s *service) Account(_ context.Context, addr common.Address) (wallet.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookupLocked(addr)
}

// lookupLocked resolves addr to a keyed or watch-only account.
func (s *service) lookupLocked(addr common.Address) (wallet.Account, error) {
	rec, err := s.registry.Get(addr)
	switch {
	case err == nil:
		if rec.Kind == wallet.KeyKindWatchOnly {
			return rec.Account(), nil
		}
		if s.ks.HasAddress(addr) {
			return rec.Account(), nil
		}
	case !errors.Is(err, registry.ErrNotFound):
		return wallet.Account{}, wallet.Fail(wallet.ErrStorageFailed, err)
	default:
		if s.ks.HasAddress(addr) {
			return wallet.Account{Address: addr, Kind: wallet.KeyKindPrivateKey}, nil
		}
	}

	return wallet.Account{}, wallet.Fail(wallet.ErrUnknownAccount, errors.Errorf("no account %s", addr.Hex()))
}

// existsLocked reports whether addr is already known in any form.
func (s *service) existsLocked(addr common.Address) (bool, error) {
	if s.ks.HasAddress(addr) {
		return true, nil
	}

	ok, err := s.registry.Has(addr)
	if err != nil {
		return false, wallet.Fail(wallet.ErrStorageFailed, err)
	}
	return ok, nil
}

func (s *service) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveVaultOperation(operation, started, *err)
}
