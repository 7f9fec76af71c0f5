package tx

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-keyvault/internal/i18n"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/util/command"
	"github/chapool/go-keyvault/internal/wallet/amount"
	"github/chapool/go-keyvault/internal/wallet/balance"
	"github/chapool/go-keyvault/internal/wallet/chain"
	"github/chapool/go-keyvault/internal/wallet/signer"
	"github/chapool/go-keyvault/internal/wallet/transfer"
	"github/chapool/go-keyvault/internal/wallet/vault"
)

const (
	fromFlag     string = "from"
	toFlag       string = "to"
	valueFlag    string = "value"
	tokenFlag    string = "token"
	decimalsFlag string = "decimals"
	dataFlag     string = "data"
	gasPriceFlag string = "gas-price"
	gasLimitFlag string = "gas-limit"
	nonceFlag    string = "nonce"
)

type signOptions struct {
	from     string
	to       string
	value    string
	token    string
	decimals int32
	data     string
	gasPrice string
	gasLimit uint64
	nonce    int64
}

func newSign() *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Configures, checks and signs a transaction, printing the raw hex",
		Long: `Builds a native transfer, a token transfer (--token) or a contract call (--data),
fills gas price, gas limit and nonce from the node, checks the balance and signs
the result with the sender's stored key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.Run(cmd, func(ctx context.Context, rt *command.Runtime) error {
				return sign(ctx, cmd, rt, opts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.from, fromFlag, "", "sender address, must be a vault account")
	flags.StringVar(&opts.to, toFlag, "", "recipient address")
	flags.StringVar(&opts.value, valueFlag, "0", "amount in ether, or in token units with --token")
	flags.StringVar(&opts.token, tokenFlag, "", "ERC-20 contract address")
	flags.Int32Var(&opts.decimals, decimalsFlag, amount.EtherDecimals, "decimals of the token")
	flags.StringVar(&opts.data, dataFlag, "", "hex call data of a contract call")
	flags.StringVar(&opts.gasPrice, gasPriceFlag, "", "gas price in gwei")
	flags.Uint64Var(&opts.gasLimit, gasLimitFlag, 0, "gas limit, estimated when 0")
	flags.Int64Var(&opts.nonce, nonceFlag, -1, "nonce, pending nonce of the sender when negative")
	_ = cmd.MarkFlagRequired(fromFlag)
	_ = cmd.MarkFlagRequired(toFlag)
	cmd.MarkFlagsMutuallyExclusive(tokenFlag, dataFlag)

	return cmd
}

func buildIntent(opts signOptions) (transfer.Intent, error) {
	to, err := command.ParseAddress(opts.to)
	if err != nil {
		return transfer.Intent{}, err
	}

	decimals := amount.EtherDecimals
	if opts.token != "" {
		decimals = opts.decimals
	}
	value, err := amount.ParseUnits(opts.value, decimals)
	if err != nil {
		return transfer.Intent{}, errors.Wrap(err, "invalid value")
	}

	var intent transfer.Intent
	switch {
	case opts.token != "":
		contract, err := command.ParseAddress(opts.token)
		if err != nil {
			return transfer.Intent{}, err
		}
		intent = transfer.TokenTransfer(contract, to, value)
	case opts.data != "":
		data, err := hexutil.Decode(opts.data)
		if err != nil {
			return transfer.Intent{}, errors.Wrap(err, "invalid call data")
		}
		intent = transfer.ContractCall(to, value, data)
	default:
		intent = transfer.NativeTransfer(to, value)
	}

	if opts.gasPrice != "" {
		price, err := amount.ParseGwei(opts.gasPrice)
		if err != nil {
			return transfer.Intent{}, errors.Wrap(err, "invalid gas price")
		}
		intent = intent.WithGasPrice(price)
	}
	if opts.gasLimit > 0 {
		intent = intent.WithGasLimit(opts.gasLimit)
	}
	if opts.nonce >= 0 {
		intent = intent.WithNonce(uint64(opts.nonce))
	}

	return intent, nil
}

func sign(ctx context.Context, cmd *cobra.Command, rt *command.Runtime, opts signOptions) error {
	log := util.LogFromContext(ctx)

	from, err := command.ParseAddress(opts.from)
	if err != nil {
		return err
	}
	if _, err := rt.Vault.Account(ctx, from); err != nil {
		return err
	}

	intent, err := buildIntent(opts)
	if err != nil {
		return err
	}

	state, client, err := rt.Chain(ctx, from)
	if err != nil {
		return err
	}
	defer client.Close()

	configurator := transfer.New(from, intent, state, state,
		transfer.WithLimits(rt.Config.Limits),
		transfer.WithMetrics(rt.Metrics),
	)

	refineCtx, cancel := chain.WithTimeout(ctx, rt.Config.Chain.RequestTimeout)
	defer cancel()

	refined, err := configurator.Refine(refineCtx)
	if err != nil {
		return err
	}
	configurator.Update(refined)

	balances, err := balance.Fetch(refineCtx, state, from, intent)
	if err != nil {
		return err
	}

	tx, err := configurator.Transaction(balances.Native)
	if err != nil {
		return err
	}

	status := balance.ValidateTransaction(balances, tx, intent)
	rt.Metrics.ObserveBalanceStatus(status.Kind.String())
	if !status.Sufficient() {
		return errors.New(rt.I18n.BalanceReason(status.Reason(), rt.Config.LanguageTag()))
	}

	chainID := rt.Config.ChainIDOverride()
	if chainID == nil {
		chainID = state.ChainID()
	}

	raw, err := rt.Vault.Sign(ctx, from, vault.TransactionPayload{Tx: tx, ChainID: chainID})
	if err != nil {
		return err
	}

	decoded, err := signer.Decode(raw)
	if err != nil {
		return err
	}

	log.Info().
		Str("from", from.Hex()).
		Str("kind", intent.Kind().String()).
		Str("gas_price_gwei", amount.FormatGwei(tx.Configuration.GasPrice)).
		Uint64("gas_limit", tx.Configuration.GasLimit).
		Int64("nonce", tx.Configuration.Nonce).
		Str("value", amount.FormatEther(valueOrZero(tx.Value))).
		Msg(rt.I18n.Translate("tx.signed", rt.Config.LanguageTag(), i18n.Data{"Hash": decoded.Hash().Hex()}))

	fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(raw))
	return nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
