// Package command holds the plumbing shared by the cobra subcommands.
package command

import (
	"context"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/config"
	"github/chapool/go-keyvault/internal/i18n"
	"github/chapool/go-keyvault/internal/metrics"
	"github/chapool/go-keyvault/internal/storage"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet/chain"
	"github/chapool/go-keyvault/internal/wallet/credential"
	"github/chapool/go-keyvault/internal/wallet/registry"
	"github/chapool/go-keyvault/internal/wallet/vault"
)

// NewSubcommandGroup returns a command that only groups its subcommands.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: name + " subcommands",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// Runtime is the set of services a command works with.
type Runtime struct {
	Config   config.Config
	Vault    vault.Service
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	I18n     *i18n.Service
}

// Chain dials the configured RPC nodes and loads the chain state for addrs.
// The returned client must be closed by the caller.
func (r *Runtime) Chain(ctx context.Context, addrs ...common.Address) (*chain.State, *chain.RPCClient, error) {
	client, err := chain.NewRPCClient(r.Config.Chain.RPCURLs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to RPC")
	}

	state, err := chain.NewState(client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	refreshCtx, cancel := chain.WithTimeout(ctx, r.Config.Chain.RequestTimeout)
	defer cancel()

	if err := state.Refresh(refreshCtx, addrs...); err != nil {
		client.Close()
		return nil, nil, errors.Wrap(err, "failed to load chain state")
	}

	return state, client, nil
}

// WithVault opens the key storage described by cfg, runs f and closes the
// storage again.
func WithVault(ctx context.Context, cfg config.Config, f func(ctx context.Context, rt *Runtime) error) error {
	util.ConfigureLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	db, err := storage.OpenLevelDB(filepath.Join(cfg.Vault.DataDir, "registry"))
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.Vault.DataDir).Msg("Failed to open data directory")
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close data directory")
		}
	}()

	promRegistry := prometheus.NewRegistry()
	m, err := metrics.New(promRegistry)
	if err != nil {
		return errors.Wrap(err, "failed to register metrics")
	}

	svc, err := vault.NewService(cfg.VaultConfig(), credentialStore(cfg.Vault, db), registry.New(db), vault.WithMetrics(m))
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize vault")
		return err
	}

	translator, err := i18n.New(cfg.LanguageTag())
	if err != nil {
		return errors.Wrap(err, "failed to load translations")
	}

	rt := &Runtime{
		Config:   cfg,
		Vault:    svc,
		Metrics:  m,
		Registry: promRegistry,
		I18n:     translator,
	}

	ctx = util.ContextWithComponent(ctx, "cli")
	err = f(ctx, rt)

	if exportErr := exportMetrics(ctx, cfg.Metrics, promRegistry); exportErr != nil {
		util.LogFromContext(ctx).Error().Err(exportErr).Msg("Failed to export metrics")
		if err == nil {
			err = exportErr
		}
	}

	return err
}

// credentialStore picks the backend named in cfg. The level store shares db
// with the registry so both are written in one batch.
//
//nolint:ireturn
func credentialStore(cfg config.Vault, db *storage.LevelDB) credential.Store {
	if cfg.CredentialStore == config.CredentialStoreKeyring {
		return credential.NewKeyringStore(cfg.KeyringService)
	}
	return credential.NewLevelStore(db)
}

func exportMetrics(ctx context.Context, cfg config.Metrics, g prometheus.Gatherer) error {
	if cfg.File != "" {
		if err := metrics.WriteTextfile(cfg.File, g); err != nil {
			return err
		}
	}
	if cfg.PushURL != "" {
		if err := metrics.Push(ctx, cfg.PushURL, metrics.JobName, g); err != nil {
			return err
		}
	}
	return nil
}
