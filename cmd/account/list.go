package account

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

func newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				accounts, err := rt.Vault.ListAccounts(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, acc := range accounts {
					fmt.Fprintf(w, "%s\t%s\t%s\n", acc.Address.Hex(), acc.Kind, acc.DerivationPath)
				}
				return w.Flush()
			})
		},
	}
}
