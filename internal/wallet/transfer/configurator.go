package transfer

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/metrics"
	"github/chapool/go-keyvault/internal/util"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/chain"
)

// Configurator owns the configuration of one attempted transfer from one account.
//
// Default computes a usable configuration synchronously; Refine asks the chain
// for the payload or a gas estimate and returns a replacement. The current
// configuration is only ever swapped as a whole.
type Configurator struct {
	from    common.Address
	intent  Intent
	state   chain.StateProvider
	nonces  chain.NonceSource
	limits  Limits
	metrics *metrics.Metrics

	mu  sync.RWMutex
	cfg Configuration
}

// Option customizes a Configurator.
type Option func(*Configurator)

// WithLimits replaces DefaultLimits.
func WithLimits(limits Limits) Option {
	return func(c *Configurator) {
		c.limits = limits
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Configurator) {
		c.metrics = m
	}
}

// New creates a Configurator holding the Default configuration of intent.
// state and nonces may be nil.
func New(from common.Address, intent Intent, state chain.StateProvider, nonces chain.NonceSource, opts ...Option) *Configurator {
	c := &Configurator{
		from:   from,
		intent: intent,
		state:  state,
		nonces: nonces,
		limits: DefaultLimits(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cfg = c.Default()
	return c
}

func (c *Configurator) From() common.Address { return c.from }

func (c *Configurator) Intent() Intent { return c.intent }

// Default derives the initial configuration from the intent, the last suggested
// gas price and the nonce source. It performs no network calls.
func (c *Configurator) Default() Configuration {
	cfg := Configuration{
		GasPrice: c.initialGasPrice(),
		GasLimit: ruleFor(c.intent.kind).gasLimit(c.limits),
		Data:     c.intent.Data(),
		Nonce:    UnknownNonce,
	}
	if cfg.Data == nil {
		cfg.Data = []byte{}
	}

	if limit, ok := c.intent.GasLimit(); ok {
		cfg.GasLimit = limit
	}

	if nonce, ok := c.intent.Nonce(); ok {
		cfg.Nonce = int64(nonce) //nolint:gosec // nonces stay far below 2^63
	} else if c.nonces != nil {
		if next, ok := c.nonces.NextNonce(c.from); ok {
			cfg.Nonce = int64(next) //nolint:gosec // nonces stay far below 2^63
		}
	}

	return cfg
}

// initialGasPrice clamps the explicit, suggested or default price to
// [MinGasPrice, MaxGasPrice].
func (c *Configurator) initialGasPrice() *big.Int {
	price := c.limits.DefaultGasPrice
	if explicit := c.intent.GasPrice(); explicit != nil {
		return c.limits.ClampGasPrice(explicit)
	}
	if c.state != nil {
		if suggested := c.state.SuggestedGasPrice(); suggested != nil {
			price = suggested
		}
	}

	return c.limits.ClampGasPrice(price)
}

// refinedGasPrice is the price a refinement carries forward: the explicit
// price when given, otherwise the current one, never below the minimum.
func (c *Configurator) refinedGasPrice(current *big.Int) *big.Int {
	if explicit := c.intent.GasPrice(); explicit != nil {
		return c.limits.FloorGasPrice(explicit)
	}
	if current == nil {
		return c.initialGasPrice()
	}
	return c.limits.FloorGasPrice(current)
}

// Configuration returns a copy of the current configuration.
func (c *Configurator) Configuration() Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg.Clone()
}

// Update replaces the current configuration, e.g. with a user's gas choice.
func (c *Configurator) Update(cfg Configuration) {
	cfg = cfg.Clone()

	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// Refine computes the network refined configuration without publishing it.
//
// Token transfers fail with wallet.ErrPayloadEncodingFailed when the transfer
// call data cannot be encoded. A failed gas estimate is not an error: the
// kind's default gas limit is kept.
func (c *Configurator) Refine(ctx context.Context) (Configuration, error) {
	base := c.Configuration()
	rule := ruleFor(c.intent.kind)
	kind := c.intent.kind.String()

	if rule.encodePayload {
		data, err := c.encodePayload(ctx)
		if err != nil {
			c.metrics.ObserveRefinement(kind, metrics.OutcomeEncodingFailed)
			return Configuration{}, wallet.Fail(wallet.ErrPayloadEncodingFailed, err)
		}

		limit := rule.gasLimit(c.limits)
		if explicit, ok := c.intent.GasLimit(); ok {
			limit = explicit
		}

		c.metrics.ObserveRefinement(kind, metrics.OutcomeEncoded)
		return Configuration{
			GasPrice: c.refinedGasPrice(base.GasPrice),
			GasLimit: limit,
			Data:     data,
			Nonce:    base.Nonce,
		}, nil
	}

	if !rule.estimateGas {
		c.metrics.ObserveRefinement(kind, metrics.OutcomeSkipped)
		return base, nil
	}

	if _, ok := c.intent.GasLimit(); ok {
		c.metrics.ObserveRefinement(kind, metrics.OutcomeSkipped)
		return base, nil
	}

	cfg := Configuration{
		GasPrice: c.refinedGasPrice(base.GasPrice),
		GasLimit: rule.gasLimit(c.limits),
		Data:     base.Data,
		Nonce:    base.Nonce,
	}
	if intentData := c.intent.Data(); intentData != nil {
		cfg.Data = intentData
	}

	limit, err := c.estimateGas(ctx, cfg.Data)
	if err != nil {
		util.LogFromContext(ctx).Warn().
			Err(wallet.Fail(wallet.ErrGasEstimationFailed, err)).
			Str("from", c.from.Hex()).
			Str("kind", kind).
			Uint64("gas_limit", cfg.GasLimit).
			Msg("Gas estimation failed, keeping default gas limit")
		c.metrics.ObserveRefinement(kind, metrics.OutcomeDefaulted)
		return cfg, nil
	}

	cfg.GasLimit = InflateGasEstimate(limit, c.limits.MinTransferGas)
	c.metrics.ObserveRefinement(kind, metrics.OutcomeEstimated)

	return cfg, nil
}

func (c *Configurator) encodePayload(ctx context.Context) ([]byte, error) {
	if c.state == nil {
		return nil, errors.New("no chain state provider")
	}

	encoded, err := c.state.EncodeERC20Transfer(ctx, c.intent.contract, c.intent.to, c.intent.Value())
	if err != nil {
		return nil, err
	}

	data, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "malformed encoded payload")
	}

	return data, nil
}

func (c *Configurator) estimateGas(ctx context.Context, data []byte) (uint64, error) {
	if c.state == nil {
		return 0, errors.New("no chain state provider")
	}

	to := c.intent.to
	raw, err := c.state.EstimateGas(ctx, c.from, &to, c.intent.Value(), data)
	if err != nil {
		return 0, err
	}

	return ParseGasEstimate(raw)
}

// Load runs Refine in the background, publishes the result on success and
// then calls done exactly once. Callers must wait for done before calling
// Load again.
func (c *Configurator) Load(ctx context.Context, done func(error)) {
	go func() {
		cfg, err := c.Refine(ctx)
		if err == nil {
			c.Update(cfg)
		}

		if done != nil {
			done(err)
		}
	}()
}

// ValueToSend is the value to sign given the account's native balance.
//
// When a native or contract-call intent moves the whole balance the fee is
// deducted from the value. If the fee exceeds the balance the result is
// wallet.ErrInsufficientFunds.
func (c *Configurator) ValueToSend(balance *big.Int) (*big.Int, error) {
	return c.valueToSend(c.Configuration(), balance)
}

func (c *Configurator) valueToSend(cfg Configuration, balance *big.Int) (*big.Int, error) {
	value := c.intent.Value()
	if c.intent.kind == KindToken || balance == nil || balance.Cmp(value) != 0 {
		return value, nil
	}

	remaining := new(big.Int).Sub(value, cfg.Fee())
	if remaining.Sign() < 0 {
		return nil, wallet.Fail(wallet.ErrInsufficientFunds,
			errors.Errorf("fee %s exceeds balance %s", cfg.Fee(), balance))
	}

	return remaining, nil
}

// Transaction binds the current configuration to its recipient and value.
// Token transfers go to the contract and carry no native value.
func (c *Configurator) Transaction(balance *big.Int) (Transaction, error) {
	cfg := c.Configuration()

	if c.intent.kind == KindToken {
		contract := c.intent.contract
		return Transaction{To: &contract, Value: new(big.Int), Configuration: cfg}, nil
	}

	value, err := c.valueToSend(cfg, balance)
	if err != nil {
		return Transaction{}, err
	}

	to := c.intent.to
	return Transaction{To: &to, Value: value, Configuration: cfg}, nil
}
