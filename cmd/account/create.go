package account

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generates a new key and stores it encrypted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			given, _ := cmd.Flags().GetString(passwordFlag)

			password, err := command.NewPassword(given, "Enter password for the new account: ")
			if err != nil {
				return err
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				acc, err := rt.Vault.CreateAccount(ctx, password)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), acc.Address.Hex())
				return nil
			})
		},
	}

	cmd.Flags().String(passwordFlag, "", "password of the new account, prompted when empty")

	return cmd
}
