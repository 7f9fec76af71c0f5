package tx

import (
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("tx",
		newSign(),
		newSignMessage(),
	)
}
