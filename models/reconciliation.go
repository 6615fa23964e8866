// models/reconciliation.go
package models

import "time"

// Reconciliation records a payout whose broadcast succeeded but whose
// bounty status update did not land. Funds have already moved, so the
// row is the durable reminder that the store must be repaired; the
// reconciliation worker re-drives the status flip until Resolved.
type Reconciliation struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	BountyID      string     `json:"bounty_id" gorm:"index;not null"`
	PayoutTxHash  string     `json:"payout_tx_hash" gorm:"not null"`
	WinnerAddress string     `json:"winner_address" gorm:"not null"`
	Detail        string     `json:"detail"`
	Resolved      bool       `json:"resolved" gorm:"index;default:false"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
