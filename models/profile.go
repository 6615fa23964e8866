// models/profile.go
package models

import "time"

// Profile is keyed by lowercased wallet address and upserted freely.
type Profile struct {
	WalletAddress string    `json:"wallet_address" gorm:"primaryKey"`
	Username      string    `json:"username"`
	Bio           string    `json:"bio"`
	Twitter       string    `json:"twitter"`
	Discord       string    `json:"discord"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
