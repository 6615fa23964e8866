// Package verification checks a claimed funding payment against the
// exact requirement the gate computed. Verification is independent: it
// trusts nothing from the client beyond the transaction reference, and
// re-reads the chain every time. Verifying the same reference twice
// yields the same result; receipts are immutable once finalized.
package verification

import (
	"context"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"bounty-board/chain"
	"bounty-board/logger"
	"bounty-board/metrics"
	"bounty-board/types"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Verifier resolves a transaction reference to accept/reject. It is a
// stateless transformer over the chain reader.
type Verifier struct {
	reader  chain.Reader
	log     logger.Logger
	rec     metrics.Recorder
	timeout time.Duration
}

func NewVerifier(reader chain.Reader, log logger.Logger, rec metrics.Recorder, timeout time.Duration) *Verifier {
	return &Verifier{
		reader:  reader,
		log:     log,
		rec:     rec,
		timeout: timeout,
	}
}

// Verify runs the ordered check chain from the receipt down to exact
// amount equality. A failed check returns an invalid result with its
// reason; only infrastructure trouble (RPC down, malformed
// requirement) returns an error.
func (v *Verifier) Verify(ctx context.Context, txHash string, req types.PaymentRequirements) (*types.VerificationResult, error) {
	if !txHashPattern.MatchString(txHash) {
		return nil, types.NewError(types.CodeValidation, "payment reference is not a transaction hash")
	}

	expected, ok := new(big.Int).SetString(req.MaxAmountRequired, 10)
	if !ok || expected.Sign() < 0 {
		return nil, types.NewError(types.CodeInternal, "requirement amount is not a non-negative integer")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	receipt, err := v.reader.TransactionReceipt(verifyCtx, common.HexToHash(txHash))
	v.rec.ObserveLatency("receipt_fetch", time.Since(start), map[string]string{"outcome": outcomeOf(err)})

	if errors.Is(err, ethereum.NotFound) || (err == nil && receipt == nil) {
		return v.reject(txHash, types.ReasonTransactionNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return v.reject(txHash, types.ReasonTransactionFailed), nil
	}

	transfer := chain.DecodeTransfer(receipt.Logs, common.HexToAddress(req.Asset))
	if transfer == nil {
		return v.reject(txHash, types.ReasonNoTransferFound), nil
	}

	if !strings.EqualFold(transfer.To.Hex(), req.PayTo) {
		return v.reject(txHash, types.ReasonWrongRecipient), nil
	}

	// Exact equality, both directions: overpayment silently donates
	// funds with no refund path, underpayment under-funds the escrow.
	if transfer.Amount.Cmp(expected) != 0 {
		return v.reject(txHash, types.ReasonAmountMismatch), nil
	}

	v.rec.IncCounter("verification", map[string]string{"outcome": "valid"})
	return types.ValidResult(), nil
}

func (v *Verifier) reject(txHash, reason string) *types.VerificationResult {
	v.log.Info("payment rejected", map[string]any{"tx": txHash, "reason": reason})
	v.rec.IncCounter("verification", map[string]string{"outcome": reason})
	return types.Invalid(reason)
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
