package tx

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
	"github/chapool/go-keyvault/internal/wallet/vault"
)

func newSignMessage() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "sign-message <message>",
		Short: "Signs a personal message and prints the 65 byte signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := command.ParseAddress(from)
			if err != nil {
				return err
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				sig, err := rt.Vault.Sign(ctx, addr, vault.MessagePayload{Message: []byte(args[0])})
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(sig))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, fromFlag, "", "signing address")
	_ = cmd.MarkFlagRequired(fromFlag)

	return cmd
}
