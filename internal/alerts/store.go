package alerts

import (
	"context"
	"sync"

	"github.com/savegress/budgetwatch/pkg/models"
)

// Store holds pending alerts per user, keyed by (budget, tier). Inserts
// are idempotent: a second alert with the same key is a no-op, so two
// racing evaluations for the same budget cannot produce duplicates. The
// insert-if-absent must be atomic in every backing.
type Store interface {
	Store(ctx context.Context, userID string, alert *models.BudgetAlert) error
	Pending(ctx context.Context, userID string) ([]*models.BudgetAlert, error)
	Clear(ctx context.Context, userID string) error
	Dismiss(ctx context.Context, userID, budgetID string, tier models.AlertTier) error
}

func alertKey(budgetID string, tier models.AlertTier) string {
	return budgetID + ":" + string(tier)
}

// MemoryStore is a process-local Store for single-instance deployments
// and tests. Alerts are re-derivable from ledger state, so losing them
// on restart is acceptable.
type MemoryStore struct {
	mu     sync.Mutex
	byUser map[string]map[string]*models.BudgetAlert
}

// NewMemoryStore creates an empty in-memory alert store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser: make(map[string]map[string]*models.BudgetAlert),
	}
}

// Store inserts the alert unless one with the same (budget, tier) is
// already pending for the user.
func (s *MemoryStore) Store(_ context.Context, userID string, alert *models.BudgetAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.byUser[userID]
	if !ok {
		pending = make(map[string]*models.BudgetAlert)
		s.byUser[userID] = pending
	}

	key := alertKey(alert.BudgetID, alert.Tier)
	if _, exists := pending[key]; exists {
		return nil
	}
	pending[key] = alert
	return nil
}

// Pending returns all held alerts for a user. Order is not significant.
func (s *MemoryStore) Pending(_ context.Context, userID string) ([]*models.BudgetAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.byUser[userID]
	alerts := make([]*models.BudgetAlert, 0, len(pending))
	for _, a := range pending {
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// Clear removes every pending alert for a user.
func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)
	return nil
}

// Dismiss removes a single (budget, tier) alert. Removing the last alert
// removes the user's entry entirely. Dismissing an absent alert is a
// no-op.
func (s *MemoryStore) Dismiss(_ context.Context, userID, budgetID string, tier models.AlertTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.byUser[userID]
	if !ok {
		return nil
	}

	delete(pending, alertKey(budgetID, tier))
	if len(pending) == 0 {
		delete(s.byUser, userID)
	}
	return nil
}
