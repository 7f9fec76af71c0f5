package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/cmd/account"
	"github/chapool/go-keyvault/cmd/env"
	"github/chapool/go-keyvault/cmd/tx"
	"github/chapool/go-keyvault/internal/config"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "keyvault",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Manages encrypted Ethereum keys and signs transactions with them.
Configured through KEYVAULT_* variables, a config file or flags.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	util.LoadDotEnv("")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := command.BindPersistentFlags(rootCmd); err != nil {
		log.Error().Err(err).Msg("Failed to bind flags")
		os.Exit(1)
	}

	// attach the subcommands
	rootCmd.AddCommand(
		account.New(),
		env.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
