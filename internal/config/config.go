// Package config assembles the runtime configuration from the environment,
// an optional config file and command-line flags.
package config

import (
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet/amount"
	"github/chapool/go-keyvault/internal/wallet/transfer"
	"github/chapool/go-keyvault/internal/wallet/vault"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment variable read by the service.
const EnvPrefix = "KEYVAULT"

type Logger struct {
	Level              zerolog.Level `json:"level"`
	PrettyPrintConsole bool          `json:"prettyPrintConsole"`
}

type Vault struct {
	// KeysDir holds the v3 keystore files.
	KeysDir string `json:"keysDir"`
	// DataDir holds the account registry and the credential store.
	DataDir     string `json:"dataDir"`
	LightScrypt bool   `json:"lightScrypt"`
	// CredentialStore is CredentialStoreLevel or CredentialStoreKeyring.
	CredentialStore string `json:"credentialStore"`
	KeyringService  string `json:"keyringService"`
}

const (
	// CredentialStoreLevel keeps credentials in the registry database.
	CredentialStoreLevel = "level"
	// CredentialStoreKeyring keeps credentials in the OS keyring.
	CredentialStoreKeyring = "keyring"
)

type Chain struct {
	RPCURLs []string `json:"rpcURLs"`
	// ChainID of 0 means ask the node.
	ChainID        int64         `json:"chainID"`
	RequestTimeout time.Duration `json:"requestTimeout"`
}

// Metrics selects where a command leaves its metrics when it exits. Both
// empty disables the export.
type Metrics struct {
	File    string `json:"file"`
	PushURL string `json:"pushURL"`
}

type Config struct {
	Logger   Logger          `json:"logger"`
	Vault    Vault           `json:"vault"`
	Chain    Chain           `json:"chain"`
	Limits   transfer.Limits `json:"limits"`
	Metrics  Metrics         `json:"metrics"`
	Language string          `json:"language"`
}

// VaultConfig translates the vault section into the vault package's config.
func (c Config) VaultConfig() vault.Config {
	if c.Vault.LightScrypt {
		return vault.LightConfig(c.Vault.KeysDir)
	}
	return vault.DefaultConfig(c.Vault.KeysDir)
}

// LanguageTag parses Language, falling back to English.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// ChainIDOverride returns the configured chain id or nil when it should be
// read from the node.
func (c Config) ChainIDOverride() *big.Int {
	if c.Chain.ChainID <= 0 {
		return nil
	}
	return big.NewInt(c.Chain.ChainID)
}

func env(key string) string {
	return EnvPrefix + "_" + key
}

// DefaultConfigFromEnv builds the configuration from KEYVAULT_* variables.
func DefaultConfigFromEnv() Config {
	home := util.GetEnv(env("HOME"), defaultHome())
	limits := transfer.DefaultLimits()

	return Config{
		Logger: Logger{
			Level:              parseLevel(util.GetEnv(env("LOG_LEVEL"), "info"), zerolog.InfoLevel),
			PrettyPrintConsole: util.GetEnvAsBool(env("LOG_PRETTY"), true),
		},
		Vault: Vault{
			KeysDir:     util.GetEnv(env("KEYS_DIR"), filepath.Join(home, "keystore")),
			DataDir:     util.GetEnv(env("DATA_DIR"), filepath.Join(home, "data")),
			LightScrypt: util.GetEnvAsBool(env("LIGHT_SCRYPT"), false),

			CredentialStore: util.GetEnv(env("CREDENTIAL_STORE"), CredentialStoreLevel),
			KeyringService:  util.GetEnv(env("KEYRING_SERVICE"), "keyvault"),
		},
		Chain: Chain{
			RPCURLs:        util.GetEnvAsStringArr(env("RPC_URL"), []string{"http://127.0.0.1:8545"}),
			ChainID:        int64(util.GetEnvAsInt(env("CHAIN_ID"), 0)),
			RequestTimeout: time.Second * time.Duration(util.GetEnvAsInt(env("RPC_TIMEOUT_SEC"), 10)),
		},
		Limits: transfer.Limits{
			MinGasPrice:      parseGwei(env("MIN_GAS_PRICE_GWEI"), limits.MinGasPrice),
			MaxGasPrice:      parseGwei(env("MAX_GAS_PRICE_GWEI"), limits.MaxGasPrice),
			DefaultGasPrice:  parseGwei(env("DEFAULT_GAS_PRICE_GWEI"), limits.DefaultGasPrice),
			DefaultGasLimit:  util.GetEnvAsUint64(env("DEFAULT_GAS_LIMIT"), limits.DefaultGasLimit),
			TokenGasLimit:    util.GetEnvAsUint64(env("TOKEN_GAS_LIMIT"), limits.TokenGasLimit),
			ContractGasLimit: util.GetEnvAsUint64(env("CONTRACT_GAS_LIMIT"), limits.ContractGasLimit),
			MinTransferGas:   limits.MinTransferGas,
		},
		Metrics: Metrics{
			File:    util.GetEnv(env("METRICS_FILE"), ""),
			PushURL: util.GetEnv(env("METRICS_PUSH_URL"), ""),
		},
		Language: util.GetEnv(env("LANGUAGE"), "en"),
	}
}

// Load layers v on top of the environment defaults. Keys are the lower-case
// names used by the CLI flags, e.g. "keys-dir" or "rpc-url".
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfigFromEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, "failed to read config file %s", file)
		}
	}

	if v.IsSet("log-level") {
		level, err := zerolog.ParseLevel(v.GetString("log-level"))
		if err != nil {
			return cfg, errors.Wrap(err, "invalid log level")
		}
		cfg.Logger.Level = level
	}
	if v.IsSet("log-pretty") {
		cfg.Logger.PrettyPrintConsole = v.GetBool("log-pretty")
	}
	if v.IsSet("keys-dir") {
		cfg.Vault.KeysDir = v.GetString("keys-dir")
	}
	if v.IsSet("data-dir") {
		cfg.Vault.DataDir = v.GetString("data-dir")
	}
	if v.IsSet("light-scrypt") {
		cfg.Vault.LightScrypt = v.GetBool("light-scrypt")
	}
	if v.IsSet("credential-store") {
		cfg.Vault.CredentialStore = v.GetString("credential-store")
	}
	if v.IsSet("rpc-url") {
		cfg.Chain.RPCURLs = splitURLs(v.GetString("rpc-url"))
	}
	if v.IsSet("chain-id") {
		cfg.Chain.ChainID = v.GetInt64("chain-id")
	}
	if v.IsSet("rpc-timeout") {
		cfg.Chain.RequestTimeout = v.GetDuration("rpc-timeout")
	}
	if v.IsSet("metrics-file") {
		cfg.Metrics.File = v.GetString("metrics-file")
	}
	if v.IsSet("metrics-push-url") {
		cfg.Metrics.PushURL = v.GetString("metrics-push-url")
	}
	if v.IsSet("language") {
		cfg.Language = v.GetString("language")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports settings the services cannot work with.
func (c Config) Validate() error {
	if c.Vault.KeysDir == "" {
		return errors.New("keys dir must not be empty")
	}
	if c.Vault.DataDir == "" {
		return errors.New("data dir must not be empty")
	}
	switch c.Vault.CredentialStore {
	case CredentialStoreLevel, CredentialStoreKeyring:
	default:
		return errors.Errorf("unknown credential store %q", c.Vault.CredentialStore)
	}
	if c.Limits.MinGasPrice.Cmp(c.Limits.MaxGasPrice) > 0 {
		return errors.Errorf("min gas price %s exceeds max gas price %s",
			amount.FormatGwei(c.Limits.MinGasPrice), amount.FormatGwei(c.Limits.MaxGasPrice))
	}
	if c.Chain.RequestTimeout <= 0 {
		return errors.New("rpc timeout must be positive")
	}
	return nil
}

func splitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func parseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		log.Warn().Str("level", raw).Msg("Invalid log level, using default")
		return fallback
	}
	return level
}

func parseGwei(key string, fallback *big.Int) *big.Int {
	raw := util.GetEnv(key, "")
	if raw == "" {
		return fallback
	}

	wei, err := amount.ParseGwei(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Invalid gas price, using default")
		return fallback
	}
	return wei
}
