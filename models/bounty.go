// models/bounty.go
package models

import (
	"time"

	"bounty-board/types"
)

const (
	BountyStatusOpen = "OPEN"
	BountyStatusPaid = "PAID"
)

// Bounty is created only after its funding payment verified. Status
// moves OPEN -> PAID exactly once, driven solely by the payout
// executor, and never reverts.
type Bounty struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	// Ordered prize ladder; rank is the order. Tiers that failed
	// validation at creation time are never stored.
	Prizes []types.PrizeTier `json:"prizes" gorm:"serializer:json"`

	// Legacy single-prize field, kept for bounties created before
	// tiered prizes existed. "MULTI" when Prizes is populated.
	Prize string `json:"prize"`

	CreatorAddress string `json:"creator_address" gorm:"index;not null"` // normalized to lowercase
	Status         string `json:"status" gorm:"index;default:'OPEN'"`
	WinnerAddress  string `json:"winner_address,omitempty"`

	// TxHash is the verified funding transaction. Unique so one paid
	// transaction cannot fund two bounties.
	TxHash string `json:"tx_hash" gorm:"uniqueIndex"`

	// PayoutTxHash is set together with the OPEN->PAID flip.
	PayoutTxHash string `json:"payout_tx_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrizeAmount returns the human-unit amount the winner is owed: the
// rank-1 tier when the ladder exists, else the legacy prize field.
func (b *Bounty) PrizeAmount() string {
	for _, tier := range b.Prizes {
		if tier.Rank == 1 {
			return tier.Amount
		}
	}
	if len(b.Prizes) > 0 {
		return b.Prizes[0].Amount
	}
	return b.Prize
}
