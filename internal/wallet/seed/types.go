package seed

const (
	// EntropyBits12Words yields a 12-word mnemonic.
	EntropyBits12Words = 128
	// EntropyBits24Words yields a 24-word mnemonic.
	EntropyBits24Words = 256

	// MinSeedLength and MaxSeedLength bound what BIP-32 accepts as a master seed.
	MinSeedLength = 16
	MaxSeedLength = 64
)
