package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// TransferTopic is keccak256("Transfer(address,address,uint256)"), the
// canonical ERC-20 transfer event signature.
var TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// TransferEvent is one decoded ERC-20 transfer log.
type TransferEvent struct {
	Contract common.Address
	From     common.Address
	To       common.Address
	Amount   *big.Int
}

// DecodeTransfer scans receipt logs for the first transfer event
// emitted by the expected asset contract. Address comparison goes
// through common.Address, so checksummed and lowercased forms match.
// Returns nil when no log qualifies.
func DecodeTransfer(logs []*gethtypes.Log, asset common.Address) *TransferEvent {
	for _, l := range logs {
		if l == nil || len(l.Topics) < 3 {
			continue
		}
		if l.Topics[0] != TransferTopic {
			continue
		}
		if l.Address != asset {
			continue
		}
		return &TransferEvent{
			Contract: l.Address,
			From:     common.BytesToAddress(l.Topics[1].Bytes()[12:]),
			To:       common.BytesToAddress(l.Topics[2].Bytes()[12:]),
			Amount:   new(big.Int).SetBytes(l.Data),
		}
	}
	return nil
}
