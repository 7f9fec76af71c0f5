package account

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
	"github/chapool/go-keyvault/internal/wallet"
)

func newDelete() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <address>",
		Short: "Deletes an account and its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := command.ParseAddress(args[0])
			if err != nil {
				return err
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				acc, err := rt.Vault.Account(ctx, addr)
				if err != nil {
					return err
				}

				var password string
				if acc.Kind != wallet.KeyKindWatchOnly {
					given, _ := cmd.Flags().GetString(passwordFlag)
					if password, err = command.PasswordOrPrompt(given, "Enter account password: "); err != nil {
						return err
					}
				}

				if err := rt.Vault.DeleteAccount(ctx, addr, password); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", addr.Hex())
				return nil
			})
		},
	}

	cmd.Flags().String(passwordFlag, "", "account password, prompted when empty")

	return cmd
}
