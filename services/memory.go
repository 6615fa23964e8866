package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"bounty-board/models"
)

// MemoryStore is an in-memory RecordStore with the same semantics as
// the Postgres one: the status update is a compare-and-set under one
// lock, and reusing a funding transaction fails like the unique index
// would. Used by tests and local development.
type MemoryStore struct {
	mu              sync.Mutex
	bounties        map[string]models.Bounty
	submissions     map[string]models.Submission
	profiles        map[string]models.Profile
	reconciliations map[string]models.Reconciliation
	fundingTxs      map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bounties:        make(map[string]models.Bounty),
		submissions:     make(map[string]models.Submission),
		profiles:        make(map[string]models.Profile),
		reconciliations: make(map[string]models.Reconciliation),
		fundingTxs:      make(map[string]bool),
	}
}

func (s *MemoryStore) CreateBounty(_ context.Context, bounty *models.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bounty.TxHash != "" && s.fundingTxs[bounty.TxHash] {
		return gorm.ErrDuplicatedKey
	}

	bounty.CreatedAt = time.Now()
	bounty.UpdatedAt = bounty.CreatedAt
	s.bounties[bounty.ID] = *bounty
	s.fundingTxs[bounty.TxHash] = true
	return nil
}

func (s *MemoryStore) GetBounty(_ context.Context, id string) (*models.Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounty, ok := s.bounties[id]
	if !ok {
		return nil, nil
	}
	return &bounty, nil
}

func (s *MemoryStore) ListBounties(_ context.Context, status, creator string) ([]models.Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Bounty
	for _, b := range s.bounties {
		if status != "" && b.Status != status {
			continue
		}
		if creator != "" && b.CreatorAddress != creator {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateBountyStatus(_ context.Context, id, expected, next, winner, payoutTx string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounty, ok := s.bounties[id]
	if !ok || bounty.Status != expected {
		return false, nil
	}

	bounty.Status = next
	bounty.WinnerAddress = winner
	bounty.PayoutTxHash = payoutTx
	bounty.UpdatedAt = time.Now()
	s.bounties[id] = bounty
	return true, nil
}

func (s *MemoryStore) CreateSubmission(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.CreatedAt = time.Now()
	s.submissions[sub.ID] = *sub
	return nil
}

func (s *MemoryStore) GetSubmission(_ context.Context, id, bountyID string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok || sub.BountyID != bountyID {
		return nil, nil
	}
	return &sub, nil
}

func (s *MemoryStore) ListSubmissions(_ context.Context, bountyID string) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Submission
	for _, sub := range s.submissions {
		if sub.BountyID == bountyID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.WalletAddress]
	if ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = time.Now()
	}
	profile.UpdatedAt = time.Now()
	s.profiles[profile.WalletAddress] = *profile
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, address string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[address]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *MemoryStore) CreateReconciliation(_ context.Context, rec *models.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.CreatedAt = time.Now()
	s.reconciliations[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) ListOpenReconciliations(_ context.Context) ([]models.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reconciliation
	for _, rec := range s.reconciliations {
		if !rec.Resolved {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ResolveReconciliation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.reconciliations[id]
	if !ok {
		return nil
	}
	now := time.Now()
	rec.Resolved = true
	rec.ResolvedAt = &now
	s.reconciliations[id] = rec
	return nil
}
