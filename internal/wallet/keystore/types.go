package keystore

// KeystoreJSON represents the Ethereum keystore v3 JSON structure
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Address string `json:"address,omitempty"`
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	Salt  []byte
	N     int // CPU/memory cost parameter (262144)
	R     int // Block size parameter (8)
	P     int // Parallelization parameter (1)
}

const (
	scryptDKLen = 32
	scryptR     = 8

	// StandardScryptN and StandardScryptP match go-ethereum's standard keystore cost.
	StandardScryptN = 1 << 18
	StandardScryptP = 1

	// LightScryptN and LightScryptP match go-ethereum's light keystore cost (mobile, tests).
	LightScryptN = 1 << 12
	LightScryptP = 6

	keystoreVersion = 3
	cipherName      = "aes-128-ctr"
	kdfName         = "scrypt"
)

// DefaultScryptParams returns default scrypt parameters for Ethereum keystore v3
func DefaultScryptParams() *ScryptParams {
	return NewScryptParams(StandardScryptN, StandardScryptP)
}

// NewScryptParams returns scrypt parameters with the given cost, matching the key files
// the account backing store writes.
func NewScryptParams(n, p int) *ScryptParams {
	return &ScryptParams{
		DKLen: scryptDKLen,
		N:     n,
		R:     scryptR,
		P:     p,
	}
}
