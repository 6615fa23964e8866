// Package services owns durable storage for bounties, submissions and
// profiles. The payment-gating components are stateless; everything
// they persist goes through RecordStore.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bounty-board/models"
)

// RecordStore is the storage contract the gate, the payout executor
// and the handlers are written against. Tests substitute an in-memory
// fake.
type RecordStore interface {
	CreateBounty(ctx context.Context, bounty *models.Bounty) error
	GetBounty(ctx context.Context, id string) (*models.Bounty, error)
	ListBounties(ctx context.Context, status, creator string) ([]models.Bounty, error)

	// UpdateBountyStatus performs the single atomic compare-and-set
	// that makes OPEN->PAID happen at most once: one conditional
	// UPDATE, reporting whether a row actually changed. This is a
	// correctness requirement for concurrent payouts, not an
	// optimization.
	UpdateBountyStatus(ctx context.Context, id, expected, next, winner, payoutTx string) (bool, error)

	CreateSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, id, bountyID string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, bountyID string) ([]models.Submission, error)

	UpsertProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, address string) (*models.Profile, error)

	CreateReconciliation(ctx context.Context, rec *models.Reconciliation) error
	ListOpenReconciliations(ctx context.Context) ([]models.Reconciliation, error)
	ResolveReconciliation(ctx context.Context, id string) error
}

// GormStore is the Postgres-backed RecordStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateBounty(ctx context.Context, bounty *models.Bounty) error {
	return s.db.WithContext(ctx).Create(bounty).Error
}

func (s *GormStore) GetBounty(ctx context.Context, id string) (*models.Bounty, error) {
	var bounty models.Bounty
	err := s.db.WithContext(ctx).First(&bounty, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bounty, nil
}

func (s *GormStore) ListBounties(ctx context.Context, status, creator string) ([]models.Bounty, error) {
	q := s.db.WithContext(ctx).Model(&models.Bounty{}).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if creator != "" {
		q = q.Where("creator_address = ?", creator)
	}

	var bounties []models.Bounty
	if err := q.Find(&bounties).Error; err != nil {
		return nil, err
	}
	return bounties, nil
}

func (s *GormStore) UpdateBountyStatus(ctx context.Context, id, expected, next, winner, payoutTx string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Bounty{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":         next,
			"winner_address": winner,
			"payout_tx_hash": payoutTx,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *GormStore) GetSubmission(ctx context.Context, id, bountyID string) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.WithContext(ctx).First(&sub, "id = ? AND bounty_id = ?", id, bountyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) ListSubmissions(ctx context.Context, bountyID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *GormStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "bio", "twitter", "discord", "updated_at",
		}),
	}).Create(profile).Error
}

func (s *GormStore) GetProfile(ctx context.Context, address string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, "wallet_address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) CreateReconciliation(ctx context.Context, rec *models.Reconciliation) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) ListOpenReconciliations(ctx context.Context) ([]models.Reconciliation, error) {
	var recs []models.Reconciliation
	err := s.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *GormStore) ResolveReconciliation(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.Reconciliation{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved": true, "resolved_at": gorm.Expr("NOW()")}).Error
}
