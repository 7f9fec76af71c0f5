package account

import (
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
)

const (
	passwordFlag    string = "password"
	newPasswordFlag string = "new-password"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("account",
		newCreate(),
		newImport(),
		newExport(),
		newDelete(),
		newList(),
		newPasswd(),
	)
}
