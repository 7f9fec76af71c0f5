package command

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-keyvault/internal/config"
)

var settings = viper.New()

// BindPersistentFlags registers the global flags on root. Flags and the
// optional config file override the KEYVAULT_* environment.
func BindPersistentFlags(root *cobra.Command) error {
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("keys-dir", "", "directory of the v3 keystore files")
	flags.String("data-dir", "", "directory of the account registry")
	flags.Bool("light-scrypt", false, "use the light scrypt cost for new keys")
	flags.String("credential-store", "", "where account passwords are kept: level or keyring")
	flags.String("rpc-url", "", "comma separated RPC node URLs")
	flags.Int64("chain-id", 0, "chain id, read from the node when 0")
	flags.Duration("rpc-timeout", 0, "timeout of a single RPC call")
	flags.String("log-level", "", "zerolog level")
	flags.Bool("log-pretty", true, "pretty print log output")
	flags.String("metrics-file", "", "write metrics to this file on exit")
	flags.String("metrics-push-url", "", "push metrics to this Prometheus push gateway on exit")
	flags.String("language", "", "language of user facing messages")

	if err := settings.BindPFlags(flags); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}

	return nil
}

// LoadConfig returns the effective configuration.
func LoadConfig() (config.Config, error) {
	return config.Load(settings)
}
