package account

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

const outFlag string = "out"

func newExport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <address>",
		Short: "Exports an account as a v3 keystore JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := command.ParseAddress(args[0])
			if err != nil {
				return err
			}

			given, _ := cmd.Flags().GetString(passwordFlag)
			password, err := command.PasswordOrPrompt(given, "Enter account password: ")
			if err != nil {
				return err
			}

			givenNew, _ := cmd.Flags().GetString(newPasswordFlag)
			newPassword, err := command.NewPassword(givenNew, "Enter passphrase for the exported keystore: ")
			if err != nil {
				return err
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				exported, err := rt.Vault.ExportAccount(ctx, addr, password, newPassword)
				if err != nil {
					return err
				}

				out, _ := cmd.Flags().GetString(outFlag)
				if out == "" {
					fmt.Fprintln(cmd.OutOrStdout(), string(exported))
					return nil
				}

				if err := os.WriteFile(out, exported, 0o600); err != nil {
					return errors.Wrap(err, "failed to write keystore file")
				}
				return nil
			})
		},
	}

	cmd.Flags().String(passwordFlag, "", "current account password, prompted when empty")
	cmd.Flags().String(newPasswordFlag, "", "passphrase of the exported keystore, prompted when empty")
	cmd.Flags().String(outFlag, "", "write the keystore to this file instead of stdout")

	return cmd
}
