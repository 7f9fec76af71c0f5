package vault

import (
	"context"

	"github/chapool/go-keyvault/internal/wallet"
)

func (s *service) CreateAccountAsync(ctx context.Context, password string, done func(wallet.Account, error)) {
	go func() {
		acct, err := s.CreateAccount(ctx, password)
		s.deliver(done, acct, err)
	}()
}

func (s *service) ImportAccountAsync(ctx context.Context, payload ImportPayload, password string, done func(wallet.Account, error)) {
	go func() {
		acct, err := s.ImportAccount(ctx, payload, password)
		s.deliver(done, acct, err)
	}()
}

func (s *service) deliver(done func(wallet.Account, error), acct wallet.Account, err error) {
	if done == nil {
		return
	}
	s.executor(func() { done(acct, err) })
}
