package signer

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	signatureLength = crypto.SignatureLength
	recoveryIDIndex = crypto.RecoveryIDOffset
	legacyVOffset   = 27
)

// MessageHash returns the EIP-191 personal-message hash of msg.
func MessageHash(msg []byte) []byte {
	return accounts.TextHash(msg)
}

// ToPersonalSignature converts a raw [R || S || V] signature with V in {0,1} to the
// personal_sign convention with V in {27,28}. The input is not modified.
func ToPersonalSignature(sig []byte) ([]byte, error) {
	if len(sig) != signatureLength {
		return nil, errors.Errorf("invalid signature length %d", len(sig))
	}

	out := make([]byte, signatureLength)
	copy(out, sig)
	if out[recoveryIDIndex] < legacyVOffset {
		out[recoveryIDIndex] += legacyVOffset
	}

	return out, nil
}

// RecoverMessageSigner returns the address that produced a personal_sign signature over msg.
func RecoverMessageSigner(msg []byte, sig []byte) (common.Address, error) {
	if len(sig) != signatureLength {
		return common.Address{}, errors.Errorf("invalid signature length %d", len(sig))
	}

	raw := make([]byte, signatureLength)
	copy(raw, sig)
	if raw[recoveryIDIndex] >= legacyVOffset {
		raw[recoveryIDIndex] -= legacyVOffset
	}

	pub, err := crypto.SigToPub(MessageHash(msg), raw)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to recover public key")
	}

	return crypto.PubkeyToAddress(*pub), nil
}
