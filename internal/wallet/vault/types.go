// Package vault is the only holder of private key material and the only signer.
//
// Key files live in a go-ethereum keystore directory. Passwords live in a
// credential.Store keyed by lower-cased address, and per-account metadata
// (key kind, derivation path, sealed mnemonic, watch-only addresses) lives in
// the registry.
package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/transfer"
)

// Service is the key vault.
//
// Mutating calls are serialized; Sign, ListAccounts and the lookups run
// concurrently with each other but never with a mutation.
type Service interface {
	CreateAccount(ctx context.Context, password string) (wallet.Account, error)
	ImportAccount(ctx context.Context, payload ImportPayload, password string) (wallet.Account, error)
	ExportAccount(ctx context.Context, addr common.Address, password, newPassword string) ([]byte, error)
	DeleteAccount(ctx context.Context, addr common.Address, password string) error
	RotatePassword(ctx context.Context, addr common.Address, oldPassword, newPassword string) error
	Sign(ctx context.Context, addr common.Address, payload SignPayload) ([]byte, error)
	ListAccounts(ctx context.Context) ([]wallet.Account, error)

	// CreateAccountAsync runs CreateAccount on a background goroutine and hands
	// the result to done through the callback executor.
	CreateAccountAsync(ctx context.Context, password string, done func(wallet.Account, error))
	ImportAccountAsync(ctx context.Context, payload ImportPayload, password string, done func(wallet.Account, error))

	HasAccounts(ctx context.Context) (bool, error)
	Account(ctx context.Context, addr common.Address) (wallet.Account, error)
	VerifyPassword(ctx context.Context, addr common.Address, password string) error
}

// Encoding names an import format.
type Encoding string

const (
	EncodingKeystore   Encoding = "keystore"
	EncodingPrivateKey Encoding = "private-key"
	EncodingMnemonic   Encoding = "mnemonic"
	EncodingWatch      Encoding = "watch"
)

// ImportPayload is one of KeystoreImport, PrivateKeyImport, MnemonicImport or WatchImport.
type ImportPayload interface {
	Encoding() Encoding
}

// KeystoreImport is an encrypted v3 keystore document and its current passphrase.
type KeystoreImport struct {
	JSON       []byte
	Passphrase string
}

// PrivateKeyImport is a hex encoded secp256k1 key, with or without 0x prefix.
type PrivateKeyImport struct {
	HexKey string
}

// MnemonicImport is a BIP-39 phrase. DerivationPath defaults to m/44'/60'/0'/0/0.
type MnemonicImport struct {
	Phrase         string
	Passphrase     string
	DerivationPath string
}

// WatchImport is a bare address.
type WatchImport struct {
	Address string
}

func (KeystoreImport) Encoding() Encoding   { return EncodingKeystore }
func (PrivateKeyImport) Encoding() Encoding { return EncodingPrivateKey }
func (MnemonicImport) Encoding() Encoding   { return EncodingMnemonic }
func (WatchImport) Encoding() Encoding      { return EncodingWatch }

// SignPayload is either MessagePayload or TransactionPayload.
type SignPayload interface {
	signPayload()
}

// MessagePayload is signed as an EIP-191 personal message. The signature is
// 65 bytes [R || S || V] with V in {27, 28}.
type MessagePayload struct {
	Message []byte
}

// TransactionPayload is signed with EIP-155 replay protection for ChainID. The
// result is the canonical encoding of the signed transaction.
type TransactionPayload struct {
	Tx      transfer.Transaction
	ChainID *big.Int
}

func (MessagePayload) signPayload()     {}
func (TransactionPayload) signPayload() {}
