package venue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/noor961/Meme-coin--7/internal/crypto"
	"github.com/noor961/Meme-coin--7/internal/domain"
)

// Minimal ABI fragments for a Uniswap V2 style router and ERC-20 tokens. The
// fee-on-transfer swap variants are used because meme tokens routinely tax
// transfers, which makes the plain variants revert on the output check.
const (
	routerABIJSON = `[
		{"name":"swapExactETHForTokensSupportingFeeOnTransferTokens","type":"function","stateMutability":"payable","inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[]},
		{"name":"swapExactTokensForETHSupportingFeeOnTransferTokens","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[]},
		{"name":"getAmountsOut","type":"function","stateMutability":"view","inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],"outputs":[{"name":"amounts","type":"uint256[]"}]}
	]`

	erc20ABIJSON = `[
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`
)

const weiPerEth = 1e18

// RouterConfig configures the EVM router venue.
type RouterConfig struct {
	RPCURL         string
	RouterAddress  string
	WETHAddress    string
	GasLimit       uint64        // per swap, 0 means 400000
	SlippageBps    int64         // tolerated quote slippage, 0 means 300
	ConfirmTimeout time.Duration // how long to wait for a receipt, 0 means 2m
	SwapDeadline   time.Duration // router deadline parameter, 0 means 5m
}

// Router submits swaps through a Uniswap V2 style router contract. Buys spend
// the native coin via swapExactETHForTokens; sells unwind the wallet's entire
// token balance back to the native coin.
type Router struct {
	client *ethclient.Client
	wallet *crypto.Wallet
	cfg    RouterConfig

	router common.Address
	weth   common.Address

	routerABI abi.ABI
	erc20ABI  abi.ABI

	logger *slog.Logger
}

var _ domain.ExecutionVenue = (*Router)(nil)

// NewRouter dials the RPC endpoint and prepares the router venue.
func NewRouter(ctx context.Context, cfg RouterConfig, wallet *crypto.Wallet, logger *slog.Logger) (*Router, error) {
	if wallet == nil {
		return nil, errors.New("venue: router requires a wallet")
	}
	if !common.IsHexAddress(cfg.RouterAddress) {
		return nil, fmt.Errorf("venue: invalid router address %q", cfg.RouterAddress)
	}
	if !common.IsHexAddress(cfg.WETHAddress) {
		return nil, fmt.Errorf("venue: invalid WETH address %q", cfg.WETHAddress)
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = 400_000
	}
	if cfg.SlippageBps <= 0 {
		cfg.SlippageBps = 300
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 2 * time.Minute
	}
	if cfg.SwapDeadline <= 0 {
		cfg.SwapDeadline = 5 * time.Minute
	}

	routerABI, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("venue: parsing router ABI: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("venue: parsing erc20 ABI: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("venue: dialing RPC %s: %w", cfg.RPCURL, err)
	}

	return &Router{
		client:    client,
		wallet:    wallet,
		cfg:       cfg,
		router:    common.HexToAddress(cfg.RouterAddress),
		weth:      common.HexToAddress(cfg.WETHAddress),
		routerABI: routerABI,
		erc20ABI:  erc20ABI,
		logger:    logger.With(slog.String("component", "venue_router")),
	}, nil
}

// Name implements domain.ExecutionVenue.
func (r *Router) Name() string { return "router" }

// Close releases the RPC connection.
func (r *Router) Close() {
	r.client.Close()
}

// SubmitBuy swaps sizeBase native coins for the snapshot's token.
func (r *Router) SubmitBuy(ctx context.Context, snap domain.MarketSnapshot, sizeBase float64) (domain.TradeReceipt, error) {
	if !common.IsHexAddress(snap.TokenAddress) {
		return domain.TradeReceipt{}, fmt.Errorf("venue: %w: unusable token address %q", domain.ErrVenueRejected, snap.TokenAddress)
	}
	token := common.HexToAddress(snap.TokenAddress)

	amountIn := ethToWei(sizeBase)
	if amountIn.Sign() <= 0 {
		return domain.TradeReceipt{}, fmt.Errorf("venue: %w: non-positive trade size %v", domain.ErrVenueRejected, sizeBase)
	}

	path := []common.Address{r.weth, token}
	minOut, err := r.quoteMin(ctx, amountIn, path)
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: quoting buy for %s: %w", snap.Symbol, err)
	}

	data, err := r.routerABI.Pack("swapExactETHForTokensSupportingFeeOnTransferTokens",
		minOut, path, r.wallet.Address(), r.deadline())
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: packing buy calldata: %w", err)
	}

	r.logger.Info("submitting buy swap",
		slog.String("symbol", snap.Symbol),
		slog.String("token", snap.TokenAddress),
		slog.Float64("size_base", sizeBase),
		slog.String("min_out", minOut.String()),
	)

	return r.sendAndConfirm(ctx, r.router, amountIn, data)
}

// SubmitSell swaps the wallet's entire balance of the position's token back to
// the native coin, approving the router first when needed.
func (r *Router) SubmitSell(ctx context.Context, pos domain.Position, snap domain.MarketSnapshot) (domain.TradeReceipt, error) {
	if !common.IsHexAddress(pos.TokenAddress) {
		return domain.TradeReceipt{}, fmt.Errorf("venue: %w: unusable token address %q", domain.ErrVenueRejected, pos.TokenAddress)
	}
	token := common.HexToAddress(pos.TokenAddress)

	balance, err := r.tokenBalance(ctx, token)
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: reading %s balance: %w", pos.Symbol, err)
	}
	if balance.Sign() <= 0 {
		return domain.TradeReceipt{}, fmt.Errorf("venue: %w: no %s balance to sell", domain.ErrVenueRejected, pos.Symbol)
	}

	if err := r.ensureAllowance(ctx, token, balance); err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: approving %s: %w", pos.Symbol, err)
	}

	path := []common.Address{token, r.weth}
	minOut, err := r.quoteMin(ctx, balance, path)
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: quoting sell for %s: %w", pos.Symbol, err)
	}

	data, err := r.routerABI.Pack("swapExactTokensForETHSupportingFeeOnTransferTokens",
		balance, minOut, path, r.wallet.Address(), r.deadline())
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("venue: packing sell calldata: %w", err)
	}

	r.logger.Info("submitting sell swap",
		slog.String("symbol", pos.Symbol),
		slog.String("token", pos.TokenAddress),
		slog.String("amount_in", balance.String()),
		slog.String("min_out", minOut.String()),
	)

	return r.sendAndConfirm(ctx, r.router, nil, data)
}

// quoteMin asks the router for the expected output and applies the slippage
// tolerance.
func (r *Router) quoteMin(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	data, err := r.routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("packing getAmountsOut: %w", err)
	}

	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &r.router, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling getAmountsOut: %w", err)
	}

	res, err := r.routerABI.Unpack("getAmountsOut", out)
	if err != nil {
		return nil, fmt.Errorf("decoding getAmountsOut: %w", err)
	}
	amounts, ok := res[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return nil, errors.New("getAmountsOut returned no amounts")
	}

	return applySlippage(amounts[len(amounts)-1], r.cfg.SlippageBps), nil
}

// ensureAllowance approves the router for amount when the current allowance is
// short. The approval is confirmed before returning.
func (r *Router) ensureAllowance(ctx context.Context, token common.Address, amount *big.Int) error {
	data, err := r.erc20ABI.Pack("allowance", r.wallet.Address(), r.router)
	if err != nil {
		return fmt.Errorf("packing allowance: %w", err)
	}
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("reading allowance: %w", err)
	}
	res, err := r.erc20ABI.Unpack("allowance", out)
	if err != nil {
		return fmt.Errorf("decoding allowance: %w", err)
	}
	allowance, ok := res[0].(*big.Int)
	if !ok {
		return errors.New("allowance returned no value")
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	approveData, err := r.erc20ABI.Pack("approve", r.router, amount)
	if err != nil {
		return fmt.Errorf("packing approve: %w", err)
	}

	r.logger.Info("approving router", slog.String("token", token.Hex()), slog.String("amount", amount.String()))
	if _, err := r.sendAndConfirm(ctx, token, nil, approveData); err != nil {
		return err
	}
	return nil
}

// tokenBalance returns the wallet's balance of the given ERC-20 token.
func (r *Router) tokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := r.erc20ABI.Pack("balanceOf", r.wallet.Address())
	if err != nil {
		return nil, fmt.Errorf("packing balanceOf: %w", err)
	}
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling balanceOf: %w", err)
	}
	res, err := r.erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("decoding balanceOf: %w", err)
	}
	balance, ok := res[0].(*big.Int)
	if !ok {
		return nil, errors.New("balanceOf returned no value")
	}
	return balance, nil
}

// sendAndConfirm signs a legacy transaction, broadcasts it, and waits for the
// receipt. A reverted transaction surfaces as ErrVenueRejected.
func (r *Router) sendAndConfirm(ctx context.Context, to common.Address, value *big.Int, data []byte) (domain.TradeReceipt, error) {
	nonce, err := r.client.PendingNonceAt(ctx, r.wallet.Address())
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("fetching nonce: %w", err)
	}
	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("fetching gas price: %w", err)
	}
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      r.cfg.GasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := r.wallet.SignTx(tx)
	if err != nil {
		return domain.TradeReceipt{}, err
	}
	if err := r.client.SendTransaction(ctx, signed); err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("broadcasting tx: %w", err)
	}

	hash := signed.Hash()
	r.logger.Info("transaction broadcast", slog.String("tx", hash.Hex()), slog.Uint64("nonce", nonce))

	receipt, err := r.waitMined(ctx, hash)
	if err != nil {
		return domain.TradeReceipt{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return domain.TradeReceipt{}, fmt.Errorf("venue: %w: tx %s reverted", domain.ErrVenueRejected, hash.Hex())
	}

	return domain.TradeReceipt{
		TxHash:      hash.Hex(),
		Venue:       "router",
		Simulated:   false,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// waitMined polls for the transaction receipt until it lands or the confirm
// timeout expires.
func (r *Router) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := r.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			r.logger.Warn("receipt poll failed", slog.String("tx", hash.Hex()), slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for tx %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Router) deadline() *big.Int {
	return big.NewInt(time.Now().Add(r.cfg.SwapDeadline).Unix())
}

// applySlippage discounts amount by bps basis points.
func applySlippage(amount *big.Int, bps int64) *big.Int {
	discounted := new(big.Int).Mul(amount, big.NewInt(10_000-bps))
	return discounted.Div(discounted, big.NewInt(10_000))
}

// ethToWei converts a float amount of the native coin to wei, truncating any
// sub-wei remainder.
func ethToWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(weiPerEth)).Int(nil)
	return wei
}
