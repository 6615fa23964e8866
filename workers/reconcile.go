// Package workers holds background jobs. The reconciler is the
// out-of-band repair path for payouts whose broadcast succeeded but
// whose bounty status flip did not land.
package workers

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"bounty-board/logger"
	"bounty-board/models"
	"bounty-board/services"
)

type Reconciler struct {
	store services.RecordStore
	log   logger.Logger
}

func NewReconciler(store services.RecordStore, log logger.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Start schedules periodic reconciliation passes. The returned
// scheduler is shut down by the caller on exit.
func (r *Reconciler) Start(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			r.Run(context.Background())
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}

// Run re-drives every open reconciliation: the funds moved, so the
// only acceptable end state is the bounty marked PAID with the winner
// recorded. Rows close when the flip lands or turns out to have landed
// already.
func (r *Reconciler) Run(ctx context.Context) {
	recs, err := r.store.ListOpenReconciliations(ctx)
	if err != nil {
		r.log.Error("reconciliation list failed", map[string]any{"error": err.Error()})
		return
	}

	for _, rec := range recs {
		r.reconcile(ctx, rec)
	}
}

func (r *Reconciler) reconcile(ctx context.Context, rec models.Reconciliation) {
	bounty, err := r.store.GetBounty(ctx, rec.BountyID)
	if err != nil {
		r.log.Error("reconciliation bounty fetch failed", map[string]any{
			"bounty": rec.BountyID, "error": err.Error(),
		})
		return
	}
	if bounty == nil {
		r.log.Warn("reconciliation references missing bounty", map[string]any{
			"bounty": rec.BountyID, "tx": rec.PayoutTxHash,
		})
		return
	}

	if bounty.Status == models.BountyStatusPaid {
		r.close(ctx, rec)
		return
	}

	flipped, err := r.store.UpdateBountyStatus(ctx, rec.BountyID,
		models.BountyStatusOpen, models.BountyStatusPaid, rec.WinnerAddress, rec.PayoutTxHash)
	if err != nil {
		r.log.Error("reconciliation status flip failed", map[string]any{
			"bounty": rec.BountyID, "error": err.Error(),
		})
		return
	}
	if flipped {
		r.log.Info("reconciled payout", map[string]any{
			"bounty": rec.BountyID, "tx": rec.PayoutTxHash, "winner": rec.WinnerAddress,
		})
		r.close(ctx, rec)
	}
}

func (r *Reconciler) close(ctx context.Context, rec models.Reconciliation) {
	if err := r.store.ResolveReconciliation(ctx, rec.ID); err != nil {
		r.log.Error("failed to close reconciliation", map[string]any{
			"id": rec.ID, "error": err.Error(),
		})
	}
}
