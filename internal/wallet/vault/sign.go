package vault

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/signer"
)

// Sign signs payload with addr's key, unlocked by the stored credential.
func (s *service) Sign(ctx context.Context, addr common.Address, payload SignPayload) (sig []byte, err error) {
	defer s.observe("sign", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	keyed, err := s.signingAccountLocked(addr)
	if err != nil {
		return nil, err
	}

	password, ok, err := s.credentials.Get(wallet.CredentialKey(addr))
	if err != nil {
		return nil, wallet.Fail(wallet.ErrSigningFailed, errors.Wrap(err, "failed to load credential"))
	}
	if !ok {
		return nil, wallet.Fail(wallet.ErrWrongPassword, errors.Errorf("no credential stored for %s", addr.Hex()))
	}

	switch p := payload.(type) {
	case MessagePayload:
		sig, err = s.signMessage(keyed, password, p.Message)
	case *MessagePayload:
		sig, err = s.signMessage(keyed, password, p.Message)
	case TransactionPayload:
		sig, err = s.signTransaction(ctx, keyed, password, p)
	case *TransactionPayload:
		sig, err = s.signTransaction(ctx, keyed, password, *p)
	default:
		err = wallet.Fail(wallet.ErrSigningFailed, errors.New("unsupported sign payload"))
	}

	if err != nil {
		util.LogFromContext(ctx).Debug().Err(err).Str("address", addr.Hex()).Msg("Signing failed")
		return nil, err
	}

	return sig, nil
}

func (s *service) signMessage(keyed accounts.Account, password string, msg []byte) ([]byte, error) {
	raw, err := s.ks.SignHashWithPassphrase(keyed, password, signer.MessageHash(msg))
	if err != nil {
		return nil, passwordOr(wallet.ErrSigningFailed, err)
	}

	sig, err := signer.ToPersonalSignature(raw)
	if err != nil {
		return nil, wallet.Fail(wallet.ErrSigningFailed, err)
	}

	return sig, nil
}

func (s *service) signTransaction(ctx context.Context, keyed accounts.Account, password string, p TransactionPayload) ([]byte, error) {
	if p.ChainID == nil || p.ChainID.Sign() <= 0 {
		return nil, wallet.Fail(wallet.ErrSigningFailed, errors.New("chain ID must be positive"))
	}

	req, err := p.Tx.Request()
	if err != nil {
		return nil, wallet.Fail(wallet.ErrSigningFailed, err)
	}

	tx, err := signer.NewLegacyTransaction(req)
	if err != nil {
		return nil, wallet.Fail(wallet.ErrSigningFailed, err)
	}

	signed, err := s.ks.SignTxWithPassphrase(keyed, password, tx, new(big.Int).Set(p.ChainID))
	if err != nil {
		return nil, passwordOr(wallet.ErrSigningFailed, err)
	}

	resp, err := signer.Encode(signed)
	if err != nil {
		return nil, wallet.Fail(wallet.ErrSigningFailed, err)
	}

	util.LogFromContext(ctx).Info().
		Str("address", keyed.Address.Hex()).
		Str("tx_hash", resp.TxHash).
		Uint64("nonce", req.Nonce).
		Str("chain_id", p.ChainID.String()).
		Msg("Transaction signed")

	return resp.RawTransaction, nil
}
