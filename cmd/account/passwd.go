package account

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

const oldPasswordFlag string = "old-password"

func newPasswd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd <address>",
		Short: "Changes the password of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := command.ParseAddress(args[0])
			if err != nil {
				return err
			}

			givenOld, _ := cmd.Flags().GetString(oldPasswordFlag)
			oldPassword, err := command.PasswordOrPrompt(givenOld, "Enter current password: ")
			if err != nil {
				return err
			}

			givenNew, _ := cmd.Flags().GetString(newPasswordFlag)
			newPassword, err := command.NewPassword(givenNew, "Enter new password: ")
			if err != nil {
				return err
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				if err := rt.Vault.RotatePassword(ctx, addr, oldPassword, newPassword); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Password of %s changed\n", addr.Hex())
				return nil
			})
		},
	}

	cmd.Flags().String(oldPasswordFlag, "", "current password, prompted when empty")
	cmd.Flags().String(newPasswordFlag, "", "new password, prompted when empty")

	return cmd
}
