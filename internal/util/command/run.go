package command

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
)

// Run loads the configuration, opens the vault and runs f. Coded wallet
// errors are prefixed with their localized message.
func Run(cmd *cobra.Command, f func(ctx context.Context, rt *Runtime) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	return WithVault(cmd.Context(), cfg, func(ctx context.Context, rt *Runtime) error {
		err := f(ctx, rt)
		if err == nil || wallet.ErrorCode(err) == "" {
			return err
		}

		util.LogFromContext(ctx).Debug().Err(err).Msg("Command failed")
		return errors.Wrap(err, rt.I18n.Error(err, cfg.LanguageTag()))
	})
}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}
