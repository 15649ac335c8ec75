package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Wallet holds the trading key in memory and signs transactions for a single
// chain. The private key never leaves this type.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewWallet creates a Wallet from a hex-encoded secp256k1 private key and the
// target chain ID (1 for Ethereum mainnet, 8453 for Base).
func NewWallet(privateKeyHex string, chainID int64) (*Wallet, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto/wallet: invalid private key: %w", err)
	}
	if chainID <= 0 {
		return nil, fmt.Errorf("crypto/wallet: invalid chain ID %d", chainID)
	}

	return &Wallet{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
		chainID:    big.NewInt(chainID),
	}, nil
}

// Address returns the Ethereum address derived from the wallet's private key.
func (w *Wallet) Address() common.Address {
	return w.address
}

// ChainID returns a copy of the chain ID the wallet signs for.
func (w *Wallet) ChainID() *big.Int {
	return new(big.Int).Set(w.chainID)
}

// SignTx signs the transaction with the wallet key using the newest signer
// supported on the configured chain.
func (w *Wallet) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("crypto/wallet: signing transaction: %w", err)
	}
	return signed, nil
}
