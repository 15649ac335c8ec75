package venue

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

func TestSimulatorReceipts(t *testing.T) {
	sim := NewSimulator(slog.New(slog.DiscardHandler))
	snap := domain.MarketSnapshot{Symbol: "PEPE", PriceUSD: 0.004, MarketCapUSD: 5000}

	buy, err := sim.SubmitBuy(context.Background(), snap, 0.1)
	if err != nil {
		t.Fatalf("SubmitBuy() error = %v", err)
	}
	if !buy.Simulated {
		t.Error("buy receipt not marked simulated")
	}
	if buy.Venue != "sim" {
		t.Errorf("buy venue = %q, want sim", buy.Venue)
	}
	if !strings.HasPrefix(buy.TxHash, "sim-") {
		t.Errorf("buy tx hash = %q, want sim- prefix", buy.TxHash)
	}

	pos := domain.Position{Symbol: "PEPE", EntryPrice: 0.004}
	sell, err := sim.SubmitSell(context.Background(), pos, snap)
	if err != nil {
		t.Fatalf("SubmitSell() error = %v", err)
	}
	if !sell.Simulated || sell.Venue != "sim" {
		t.Errorf("sell receipt = %+v", sell)
	}
	if sell.TxHash == buy.TxHash {
		t.Error("buy and sell share a tx hash")
	}
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"three percent", 10_000, 300, 9_700},
		{"zero tolerance", 10_000, 0, 10_000},
		{"rounds down", 999, 100, 989},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applySlippage(big.NewInt(tt.amount), tt.bps)
			if got.Int64() != tt.want {
				t.Errorf("applySlippage(%d, %d) = %v, want %d", tt.amount, tt.bps, got, tt.want)
			}
		})
	}
}

func TestEthToWei(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"one", 1, "1000000000000000000"},
		{"tenth", 0.1, "100000000000000000"},
		{"zero", 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ethToWei(tt.amount).String(); got != tt.want {
				t.Errorf("ethToWei(%v) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestRouterABIPacks(t *testing.T) {
	routerABI, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		t.Fatalf("parsing router ABI: %v", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		t.Fatalf("parsing erc20 ABI: %v", err)
	}

	weth := common.HexToAddress("0x4200000000000000000000000000000000000006")
	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	data, err := routerABI.Pack("swapExactETHForTokensSupportingFeeOnTransferTokens",
		big.NewInt(1), []common.Address{weth, token}, to, big.NewInt(1_900_000_000))
	if err != nil {
		t.Fatalf("packing buy: %v", err)
	}
	if len(data) < 4 {
		t.Fatal("buy calldata missing selector")
	}

	data, err = routerABI.Pack("swapExactTokensForETHSupportingFeeOnTransferTokens",
		big.NewInt(5), big.NewInt(1), []common.Address{token, weth}, to, big.NewInt(1_900_000_000))
	if err != nil {
		t.Fatalf("packing sell: %v", err)
	}
	if len(data) < 4 {
		t.Fatal("sell calldata missing selector")
	}

	if _, err := routerABI.Pack("getAmountsOut", big.NewInt(5), []common.Address{weth, token}); err != nil {
		t.Fatalf("packing getAmountsOut: %v", err)
	}
	if _, err := erc20ABI.Pack("balanceOf", to); err != nil {
		t.Fatalf("packing balanceOf: %v", err)
	}
	if _, err := erc20ABI.Pack("approve", to, big.NewInt(5)); err != nil {
		t.Fatalf("packing approve: %v", err)
	}
	if _, err := erc20ABI.Pack("allowance", to, to); err != nil {
		t.Fatalf("packing allowance: %v", err)
	}
}

func TestNewRouterValidation(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	_, err := NewRouter(context.Background(), RouterConfig{
		RPCURL:        "http://localhost:8545",
		RouterAddress: "not-an-address",
		WETHAddress:   "0x4200000000000000000000000000000000000006",
	}, nil, logger)
	if err == nil {
		t.Error("NewRouter() accepted nil wallet and bad router address")
	}
}
