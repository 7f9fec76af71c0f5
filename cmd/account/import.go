package account

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/util/command"
	"github/chapool/go-keyvault/internal/wallet/vault"
)

const (
	keystoreFlag           string = "keystore"
	keystorePassphraseFlag string = "keystore-passphrase"
	privateKeyFlag         string = "private-key"
	mnemonicFlag           string = "mnemonic"
	mnemonicPassphraseFlag string = "mnemonic-passphrase"
	pathFlag               string = "path"
	watchFlag              string = "watch"
)

func newImport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Imports a keystore file, private key, mnemonic or watch-only address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := importPayload(cmd)
			if err != nil {
				return err
			}

			var password string
			if payload.Encoding() != vault.EncodingWatch {
				given, _ := cmd.Flags().GetString(passwordFlag)
				if password, err = command.NewPassword(given, "Enter password for the imported account: "); err != nil {
					return err
				}
			}

			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				acc, err := rt.Vault.ImportAccount(ctx, payload, password)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", acc.Address.Hex(), acc.Kind)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.String(keystoreFlag, "", "path of a v3 keystore JSON file")
	flags.String(keystorePassphraseFlag, "", "passphrase of the keystore file, prompted when empty")
	flags.String(privateKeyFlag, "", "hex encoded private key")
	flags.String(mnemonicFlag, "", "BIP-39 mnemonic phrase")
	flags.String(mnemonicPassphraseFlag, "", "optional BIP-39 passphrase")
	flags.String(pathFlag, "", "derivation path, defaults to m/44'/60'/0'/0/0")
	flags.String(watchFlag, "", "address to watch without a key")
	flags.String(passwordFlag, "", "vault password of the imported account, prompted when empty")
	cmd.MarkFlagsMutuallyExclusive(keystoreFlag, privateKeyFlag, mnemonicFlag, watchFlag)
	cmd.MarkFlagsOneRequired(keystoreFlag, privateKeyFlag, mnemonicFlag, watchFlag)

	return cmd
}

func importPayload(cmd *cobra.Command) (vault.ImportPayload, error) {
	flags := cmd.Flags()

	if path, _ := flags.GetString(keystoreFlag); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read keystore file")
		}

		given, _ := flags.GetString(keystorePassphraseFlag)
		passphrase, err := command.PasswordOrPrompt(given, "Enter keystore passphrase: ")
		if err != nil {
			return nil, err
		}

		return vault.KeystoreImport{JSON: raw, Passphrase: passphrase}, nil
	}

	if key, _ := flags.GetString(privateKeyFlag); key != "" {
		return vault.PrivateKeyImport{HexKey: key}, nil
	}

	if phrase, _ := flags.GetString(mnemonicFlag); phrase != "" {
		passphrase, _ := flags.GetString(mnemonicPassphraseFlag)
		path, _ := flags.GetString(pathFlag)
		return vault.MnemonicImport{Phrase: phrase, Passphrase: passphrase, DerivationPath: path}, nil
	}

	if addr, _ := flags.GetString(watchFlag); addr != "" {
		return vault.WatchImport{Address: addr}, nil
	}

	return nil, errors.New("nothing to import")
}
