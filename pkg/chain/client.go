// Package chain wraps the go-ethereum client for the KYC registry
// contract: approval-flag reads, updateKYCStatus writes with gas
// estimation, and transaction error classification.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

// registryABI covers the slice of the token contract the backend uses:
// the admin-gated approval flag write and the NFT-balance read that
// proxies the approval flag.
const registryABI = `[
	{"type":"function","name":"updateKYCStatus","stateMutability":"nonpayable","inputs":[{"name":"user","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// Client represents a connection to the KYC registry contract.
type Client struct {
	cfg          *config.ChainConfig
	client       *ethclient.Client
	registryAddr common.Address
	registryABI  abi.ABI
	registry     *bind.BoundContract
	logger       *zap.Logger
}

// NewClient dials the configured RPC endpoint and binds the registry contract.
func NewClient(cfg *config.ChainConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	registryAddr := common.HexToAddress(cfg.RegistryContract)
	registry := bind.NewBoundContract(registryAddr, parsed, client, client, client)

	logger.Info("Connected to chain",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("registry_contract", registryAddr.Hex()))

	return &Client{
		cfg:          cfg,
		client:       client,
		registryAddr: registryAddr,
		registryABI:  parsed,
		registry:     registry,
		logger:       logger,
	}, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID() *big.Int {
	return big.NewInt(c.cfg.ChainID)
}

// Approved reads the on-chain verification flag for an address via the
// NFT balance: a non-zero balance means the address is approved.
// The read is bounded by the configured status read timeout.
func (c *Client) Approved(ctx context.Context, addr common.Address) (bool, error) {
	timeout := c.cfg.StatusReadTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var out []any
	err := c.registry.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", addr)
	if err != nil {
		return false, fmt.Errorf("balanceOf call failed: %w", err)
	}
	if len(out) == 0 {
		return false, fmt.Errorf("balanceOf returned no values")
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return false, fmt.Errorf("balanceOf returned unexpected type %T", out[0])
	}
	return balance.Sign() > 0, nil
}

// EstimateUpdateKYCStatus dry-runs updateKYCStatus(user, approved) from the
// given sender. This surfaces authorization reverts before any gas is spent.
func (c *Client) EstimateUpdateKYCStatus(ctx context.Context, from, user common.Address, approved bool) (uint64, error) {
	data, err := c.registryABI.Pack("updateKYCStatus", user, approved)
	if err != nil {
		return 0, fmt.Errorf("failed to pack updateKYCStatus call: %w", err)
	}

	estimate, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &c.registryAddr,
		Data: data,
	})
	if err != nil {
		return 0, err
	}
	return estimate, nil
}

// SuggestGasPrice returns the current network gas price.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	if c.cfg.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(c.cfg.MaxGasPrice, 10)
		if ok && price.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", price.String()),
				zap.String("max", maxGasPrice.String()))
			return maxGasPrice, nil
		}
	}
	return price, nil
}

// UpdateKYCStatus submits the state-changing transaction with the
// provided transact opts (gas limit and price set by the caller).
func (c *Client) UpdateKYCStatus(ctx context.Context, opts *bind.TransactOpts, user common.Address, approved bool) (*types.Transaction, error) {
	if opts == nil {
		return nil, fmt.Errorf("nil transact opts")
	}
	opts.Context = ctx

	tx, err := c.registry.Transact(opts, "updateKYCStatus", user, approved)
	if err != nil {
		return nil, err
	}

	c.logger.Info("updateKYCStatus transaction submitted",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("user", user.Hex()),
		zap.Bool("approved", approved))

	return tx, nil
}

// WaitMined blocks until the transaction is mined and returns its receipt.
// A reverted receipt is returned as an error.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s reverted on-chain", tx.Hash().Hex())
	}
	return receipt, nil
}

// FallbackGasLimit returns the fixed gas limit used when estimation is
// unavailable at submission time.
func (c *Client) FallbackGasLimit() uint64 {
	return c.cfg.FallbackGasLimit
}

// LimitWithMargin applies the 1.2x safety margin to a gas estimate,
// falling back to the given default when the estimate is zero.
func LimitWithMargin(estimate, fallback uint64) uint64 {
	if estimate == 0 {
		return fallback
	}
	return estimate * 120 / 100
}

// PriceWithMargin applies the 1.1x margin to a suggested gas price.
func PriceWithMargin(price *big.Int) *big.Int {
	if price == nil {
		return nil
	}
	adjusted := new(big.Int).Mul(price, big.NewInt(110))
	return adjusted.Div(adjusted, big.NewInt(100))
}
