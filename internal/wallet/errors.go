package wallet

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a coded, user-facing failure. The Code doubles as the localization key suffix.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Error codes. Every public vault and configurator failure carries exactly one of these.
var (
	ErrDuplicateAccount      = &Error{Code: "duplicate_account", Message: "account already exists"}
	ErrInvalidFormat         = &Error{Code: "invalid_format", Message: "invalid input format"}
	ErrDecryptionFailed      = &Error{Code: "decryption_failed", Message: "could not decrypt key material"}
	ErrWrongPassword         = &Error{Code: "wrong_password", Message: "wrong password"}
	ErrWatchOnlyAccount      = &Error{Code: "watch_only_account", Message: "account is watch-only and cannot sign"}
	ErrUnknownAccount        = &Error{Code: "unknown_account", Message: "unknown account"}
	ErrSigningFailed         = &Error{Code: "signing_failed", Message: "failed to sign"}
	ErrExportFailed          = &Error{Code: "export_failed", Message: "failed to export account"}
	ErrDeletionFailed        = &Error{Code: "deletion_failed", Message: "failed to delete account"}
	ErrRotationFailed        = &Error{Code: "rotation_failed", Message: "failed to change password"}
	ErrKeyGenerationFailed   = &Error{Code: "key_generation_failed", Message: "failed to generate key"}
	ErrGasEstimationFailed   = &Error{Code: "gas_estimation_failed", Message: "gas estimation failed"}
	ErrPayloadEncodingFailed = &Error{Code: "payload_encoding_failed", Message: "failed to encode transaction payload"}
	ErrInsufficientFunds     = &Error{Code: "insufficient_funds", Message: "insufficient funds"}
	ErrStorageFailed         = &Error{Code: "storage_failed", Message: "key storage is unavailable"}
)

// Fail joins a coded error with its cause; errors.Is matches either of them.
func Fail(kind *Error, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// ErrorCode returns the code of the first coded error in err's chain, or "" if none.
func ErrorCode(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Retryable reports whether the caller may simply try again with different input.
func Retryable(err error) bool {
	switch ErrorCode(err) {
	case ErrWrongPassword.Code, ErrDecryptionFailed.Code, ErrDuplicateAccount.Code, ErrInvalidFormat.Code:
		return true
	default:
		return false
	}
}

// Errors lists every coded error.
func Errors() []*Error {
	return []*Error{
		ErrDuplicateAccount,
		ErrInvalidFormat,
		ErrDecryptionFailed,
		ErrWrongPassword,
		ErrWatchOnlyAccount,
		ErrUnknownAccount,
		ErrSigningFailed,
		ErrExportFailed,
		ErrDeletionFailed,
		ErrRotationFailed,
		ErrKeyGenerationFailed,
		ErrGasEstimationFailed,
		ErrPayloadEncodingFailed,
		ErrInsufficientFunds,
		ErrStorageFailed,
	}
}
