package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxSender is the slice of ethclient the wallet needs to broadcast.
type TxSender interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
}

// Wallet is the platform's custodial signing key. Signing is serialized
// per account: two in-flight payouts must not race for the same nonce.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	sender  TxSender

	mu sync.Mutex
}

// NewWallet parses the custodial key and binds it to a chain and
// sender.
func NewWallet(hexKey string, chainID int64, sender TxSender) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid custodial private key: %w", err)
	}
	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		sender:  sender,
	}, nil
}

// Address returns the custodial account address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Lock takes the per-account signing lock. The payout executor holds
// it across its status re-check, broadcast and status flip so only one
// payout per custodial account is in flight at a time.
func (w *Wallet) Lock() {
	w.mu.Lock()
}

func (w *Wallet) Unlock() {
	w.mu.Unlock()
}

// SendNative signs and broadcasts a plain value transfer. The caller
// must hold the wallet lock.
func (w *Wallet) SendNative(ctx context.Context, to common.Address, amountWei *big.Int) (common.Hash, error) {
	nonce, err := w.sender.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := w.sender.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch gas price: %w", err)
	}

	tx := gethtypes.NewTransaction(nonce, to, amountWei, 21000, gasPrice, nil)

	signed, err := gethtypes.SignTx(tx, gethtypes.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := w.sender.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}

	return signed.Hash(), nil
}
