package vault

import (
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github/chapool/go-keyvault/internal/metrics"
)

// Config locates the key directory and sets the key derivation cost.
type Config struct {
	KeysDir string
	ScryptN int
	ScryptP int
}

// DefaultConfig uses go-ethereum's standard scrypt cost.
func DefaultConfig(keysDir string) Config {
	return Config{
		KeysDir: keysDir,
		ScryptN: keystore.StandardScryptN,
		ScryptP: keystore.StandardScryptP,
	}
}

// LightConfig uses go-ethereum's light scrypt cost.
func LightConfig(keysDir string) Config {
	return Config{
		KeysDir: keysDir,
		ScryptN: keystore.LightScryptN,
		ScryptP: keystore.LightScryptP,
	}
}

// Executor runs an async completion callback, e.g. by posting it to the
// goroutine that owns the UI.
type Executor func(func())

// Option customizes the vault.
type Option func(*service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithCallbackExecutor sets where async completions run. By default they run
// on the worker goroutine.
func WithCallbackExecutor(exec Executor) Option {
	return func(s *service) {
		if exec != nil {
			s.executor = exec
		}
	}
}
