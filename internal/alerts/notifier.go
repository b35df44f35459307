package alerts

import (
	"context"
	"log"
	"time"

	"github.com/savegress/budgetwatch/pkg/models"
)

// Notifier composes the evaluator and the store into the entry point the
// ledger calls after every expense mutation.
type Notifier struct {
	evaluator *Evaluator
	store     Store
}

// NewNotifier creates a new notifier.
func NewNotifier(evaluator *Evaluator, store Store) *Notifier {
	return &Notifier{
		evaluator: evaluator,
		store:     store,
	}
}

// EvaluateAndStore evaluates the budget covering (user, category, month
// of date) and records a qualifying alert. A 100% alert supersedes any
// pending 90% alert for the same budget. Returns the alert raised by
// this evaluation, or nil. Store failures are logged, never propagated:
// the triggering mutation must succeed regardless.
func (n *Notifier) EvaluateAndStore(ctx context.Context, userID, categoryID string, date time.Time) *models.BudgetAlert {
	alert := n.evaluator.Evaluate(ctx, userID, categoryID, date)
	if alert == nil {
		return nil
	}

	if alert.Tier == models.AlertTierExceeded {
		if err := n.store.Dismiss(ctx, userID, alert.BudgetID, models.AlertTierWarning); err != nil {
			log.Printf("alerts: failed to supersede warning for budget %s: %v", alert.BudgetID, err)
		}
	}

	if err := n.store.Store(ctx, userID, alert); err != nil {
		log.Printf("alerts: failed to store alert for budget %s: %v", alert.BudgetID, err)
	}

	return alert
}

// Pending returns the user's pending alerts.
func (n *Notifier) Pending(ctx context.Context, userID string) ([]*models.BudgetAlert, error) {
	return n.store.Pending(ctx, userID)
}

// DismissAlert removes a single pending alert.
func (n *Notifier) DismissAlert(ctx context.Context, userID, budgetID string, tier models.AlertTier) error {
	return n.store.Dismiss(ctx, userID, budgetID, tier)
}

// ClearAlerts removes all pending alerts for a user.
func (n *Notifier) ClearAlerts(ctx context.Context, userID string) error {
	return n.store.Clear(ctx, userID)
}
