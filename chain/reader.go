// Package chain is the service's only window onto the blockchain:
// receipt reads for payment verification and custodial broadcasts for
// payouts. Nothing here is cached across requests; receipts are
// re-fetched every time because freshness beats performance at this
// boundary.
package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Reader fetches finalized transaction receipts. ethclient.Client
// satisfies it; tests feed synthetic receipts.
type Reader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
}

// Dial connects to the configured RPC node. The returned client serves
// both as Reader and as the wallet's TxSender.
func Dial(rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC node: %w", err)
	}
	return client, nil
}
