package config_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/config"
	"github/chapool/go-keyvault/internal/wallet/transfer"
	"golang.org/x/text/language"
)

func TestPrintServiceEnv(t *testing.T) {
	cfg := config.DefaultConfigFromEnv()
	_, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KEYVAULT_HOME", dir)
	t.Setenv("KEYVAULT_LOG_LEVEL", "debug")
	t.Setenv("KEYVAULT_RPC_URL", "http://a:8545,http://b:8545")
	t.Setenv("KEYVAULT_CHAIN_ID", "56")
	t.Setenv("KEYVAULT_MIN_GAS_PRICE_GWEI", "0.5")
	t.Setenv("KEYVAULT_TOKEN_GAS_LIMIT", "200000")

	cfg := config.DefaultConfigFromEnv()

	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.Level)
	assert.Equal(t, filepath.Join(dir, "keystore"), cfg.Vault.KeysDir)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Vault.DataDir)
	assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, cfg.Chain.RPCURLs)
	assert.Equal(t, int64(56), cfg.ChainIDOverride().Int64())
	assert.Equal(t, "500000000", cfg.Limits.MinGasPrice.String())
	assert.Equal(t, uint64(200000), cfg.Limits.TokenGasLimit)
	assert.Equal(t, transfer.DefaultLimits().MaxGasPrice, cfg.Limits.MaxGasPrice)
	require.NoError(t, cfg.Validate())
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("KEYVAULT_LOG_LEVEL", "loud")
	t.Setenv("KEYVAULT_MAX_GAS_PRICE_GWEI", "lots")

	cfg := config.DefaultConfigFromEnv()

	assert.Equal(t, zerolog.InfoLevel, cfg.Logger.Level)
	assert.Equal(t, transfer.DefaultLimits().MaxGasPrice, cfg.Limits.MaxGasPrice)
	assert.Nil(t, cfg.ChainIDOverride())
}

func TestLoadViperOverrides(t *testing.T) {
	t.Setenv("KEYVAULT_HOME", t.TempDir())

	v := viper.New()
	v.Set("keys-dir", "/tmp/keys")
	v.Set("light-scrypt", true)
	v.Set("rpc-url", " http://node:8545 , ")
	v.Set("rpc-timeout", "3s")
	v.Set("log-level", "warn")
	v.Set("language", "zh")

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/keys", cfg.Vault.KeysDir)
	assert.Equal(t, "/tmp/keys", cfg.VaultConfig().KeysDir)
	assert.Less(t, cfg.VaultConfig().ScryptN, config.DefaultConfigFromEnv().VaultConfig().ScryptN)
	assert.Equal(t, []string{"http://node:8545"}, cfg.Chain.RPCURLs)
	assert.Equal(t, 3*time.Second, cfg.Chain.RequestTimeout)
	assert.Equal(t, zerolog.WarnLevel, cfg.Logger.Level)
	assert.Equal(t, language.Chinese, cfg.LanguageTag())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("KEYVAULT_HOME", t.TempDir())
	t.Setenv("KEYVAULT_MIN_GAS_PRICE_GWEI", "500")

	_, err := config.Load(viper.New())
	require.Error(t, err)

	t.Setenv("KEYVAULT_MIN_GAS_PRICE_GWEI", "1")
	v := viper.New()
	v.Set("log-level", "loud")
	_, err = config.Load(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = config.Load(v)
	require.Error(t, err)
}

func TestCredentialStoreSelection(t *testing.T) {
	t.Setenv("KEYVAULT_HOME", t.TempDir())

	cfg := config.DefaultConfigFromEnv()
	assert.Equal(t, config.CredentialStoreLevel, cfg.Vault.CredentialStore)
	assert.Equal(t, "keyvault", cfg.Vault.KeyringService)

	v := viper.New()
	v.Set("credential-store", "keyring")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, config.CredentialStoreKeyring, cfg.Vault.CredentialStore)

	v = viper.New()
	v.Set("credential-store", "plaintext")
	_, err = config.Load(v)
	assert.Error(t, err)
}
