// Package settlement disburses escrowed funds. The executor performs
// the one irreversible side effect in the system: a custodial value
// transfer to the winner, coupled to the bounty's single OPEN->PAID
// transition.
package settlement

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"bounty-board/chain"
	"bounty-board/logger"
	"bounty-board/metrics"
	"bounty-board/models"
	"bounty-board/pricing"
	"bounty-board/services"
	"bounty-board/types"
)

// nativeDecimals is the wei exponent of the payout asset.
const nativeDecimals = 18

// PayoutRequest names the bounty, the winning submission and the two
// addresses the preconditions are checked against.
type PayoutRequest struct {
	BountyID      string `json:"bounty_id" validate:"required"`
	SubmissionID  string `json:"submission_id" validate:"required"`
	WinnerAddress string `json:"winner_address" validate:"required"`
	CallerAddress string `json:"creator_address" validate:"required"`
}

// Executor runs the payout precondition chain and, only when every
// check passes, broadcasts from the custodial wallet and flips the
// bounty to PAID.
type Executor struct {
	store  services.RecordStore
	wallet *chain.Wallet
	log    logger.Logger
	rec    metrics.Recorder
}

func NewExecutor(store services.RecordStore, wallet *chain.Wallet, log logger.Logger, rec metrics.Recorder) *Executor {
	return &Executor{store: store, wallet: wallet, log: log, rec: rec}
}

// Execute checks every precondition in order, each a hard stop with a
// distinct error and no mutation, then pays out.
//
// The custodial wallet lock is held across the status re-check, the
// broadcast and the conditional status flip. Two concurrent payout
// calls for the same bounty therefore serialize: the loser re-reads
// PAID inside the lock and stops before any chain interaction. The
// conditional store update backs that up across service instances.
func (e *Executor) Execute(ctx context.Context, req PayoutRequest) (*types.PayoutResult, error) {
	bounty, err := e.store.GetBounty(ctx, req.BountyID)
	if err != nil {
		return nil, err
	}
	if bounty == nil {
		return nil, types.ErrBountyNotFound
	}

	if !strings.EqualFold(bounty.CreatorAddress, req.CallerAddress) {
		return nil, types.ErrNotCreator
	}

	if bounty.Status != models.BountyStatusOpen {
		return nil, types.ErrBountyAlreadyPaid
	}

	sub, err := e.store.GetSubmission(ctx, req.SubmissionID, req.BountyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, types.ErrSubmissionNotFound
	}

	if !strings.EqualFold(sub.HunterAddress, req.WinnerAddress) {
		return nil, types.ErrWinnerMismatch
	}

	prize := bounty.PrizeAmount()
	amountWei, ok := pricing.ParseUnits(prize, nativeDecimals)
	if !ok {
		return nil, types.NewError(types.CodeInternal, "bounty prize amount is malformed")
	}

	e.wallet.Lock()
	defer e.wallet.Unlock()

	// Re-check under the lock: a payout that finished while this one
	// waited must be observed before touching the chain.
	bounty, err = e.store.GetBounty(ctx, req.BountyID)
	if err != nil {
		return nil, err
	}
	if bounty == nil || bounty.Status != models.BountyStatusOpen {
		return nil, types.ErrBountyAlreadyPaid
	}

	winner := strings.ToLower(req.WinnerAddress)

	start := time.Now()
	txHash, err := e.wallet.SendNative(ctx, common.HexToAddress(winner), amountWei)
	e.rec.ObserveLatency("payout_broadcast", time.Since(start), map[string]string{"outcome": outcomeOf(err)})
	if err != nil {
		e.log.Error("payout broadcast failed", map[string]any{"bounty": bounty.ID, "error": err.Error()})
		e.rec.IncCounter("payout", map[string]string{"outcome": "broadcast_failed"})
		return nil, types.NewError(types.CodeExecution,
			"payout transaction failed, custodial wallet may have insufficient funds")
	}

	flipped, err := e.store.UpdateBountyStatus(ctx, bounty.ID,
		models.BountyStatusOpen, models.BountyStatusPaid, winner, txHash.Hex())
	if err != nil || !flipped {
		// Funds already moved; the store failure must not surface as a
		// transaction failure. Record it for the reconciliation worker.
		e.recordInconsistency(ctx, bounty.ID, txHash.Hex(), winner, err)
	} else {
		e.rec.IncCounter("payout", map[string]string{"outcome": "paid"})
	}

	return &types.PayoutResult{
		Success: true,
		TxHash:  txHash.Hex(),
		Winner:  winner,
		Amount:  prize,
	}, nil
}

func (e *Executor) recordInconsistency(ctx context.Context, bountyID, txHash, winner string, cause error) {
	detail := "conditional status update affected no rows"
	if cause != nil {
		detail = cause.Error()
	}

	e.log.Error("payout broadcast succeeded but status update failed", map[string]any{
		"bounty": bountyID,
		"tx":     txHash,
		"detail": detail,
	})
	e.rec.IncCounter("payout", map[string]string{"outcome": "inconsistent"})

	rec := &models.Reconciliation{
		ID:            uuid.NewString(),
		BountyID:      bountyID,
		PayoutTxHash:  txHash,
		WinnerAddress: winner,
		Detail:        detail,
	}
	if err := e.store.CreateReconciliation(ctx, rec); err != nil {
		e.log.Error("failed to record reconciliation", map[string]any{
			"bounty": bountyID, "tx": txHash, "error": err.Error(),
		})
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
