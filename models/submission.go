// models/submission.go
package models

import "time"

// Submission is a hunter's entry against an OPEN bounty. Any address
// may submit while the bounty is OPEN; submissions are immutable once
// the bounty is paid.
type Submission struct {
	ID            string `json:"id" gorm:"primaryKey"`
	BountyID      string `json:"bounty_id" gorm:"index;not null"`
	HunterAddress string `json:"hunter_address" gorm:"index;not null"` // normalized to lowercase
	Content       string `json:"content"`
	Contact       string `json:"contact"`

	// Optional automated review, filled in out-of-band.
	AIScore int    `json:"ai_score,omitempty"`
	AINotes string `json:"ai_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
