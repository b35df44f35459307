// Package alerts raises and holds budget threshold notifications.
// Alerting is a best-effort side channel: a failed read here produces
// no alert instead of an error, and never blocks the ledger mutation
// that triggered the evaluation.
package alerts

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	thresholdWarning  = decimal.NewFromInt(90)
	thresholdExceeded = decimal.NewFromInt(100)
)

// BudgetSource resolves the budget covering a user's category for the
// month containing the given instant. A nil budget with nil error means
// no budget applies.
type BudgetSource interface {
	FindBudget(ctx context.Context, userID, categoryID string, month time.Time) (*models.Budget, error)
}

// PreferenceSource reports whether a user has budget alerts enabled.
type PreferenceSource interface {
	BudgetAlertsEnabled(ctx context.Context, userID string) (bool, error)
}

// ProgressSource computes the derived spending state of a budget.
type ProgressSource interface {
	Progress(ctx context.Context, b *models.Budget) (*models.BudgetProgress, error)
}

// Evaluator decides whether a recalculated budget crosses an alert
// threshold.
type Evaluator struct {
	budgets  BudgetSource
	prefs    PreferenceSource
	progress ProgressSource
}

// NewEvaluator creates a new alert evaluator.
func NewEvaluator(budgets BudgetSource, prefs PreferenceSource, progress ProgressSource) *Evaluator {
	return &Evaluator{
		budgets:  budgets,
		prefs:    prefs,
		progress: progress,
	}
}

// Evaluate re-derives progress for the budget covering (user, category,
// month of date) and returns the qualifying alert, if any. At most one
// alert is returned per call; a 100% alert supersedes a 90% alert for
// the same evaluation. Repeated evaluation of unchanged state yields the
// same alert, which the store deduplicates.
func (e *Evaluator) Evaluate(ctx context.Context, userID, categoryID string, date time.Time) *models.BudgetAlert {
	enabled, err := e.prefs.BudgetAlertsEnabled(ctx, userID)
	if err != nil {
		log.Printf("alerts: preference lookup failed for user %s: %v", userID, err)
		return nil
	}
	if !enabled {
		return nil
	}

	b, err := e.budgets.FindBudget(ctx, userID, categoryID, date)
	if err != nil {
		log.Printf("alerts: budget lookup failed for user %s: %v", userID, err)
		return nil
	}
	if b == nil {
		return nil
	}

	progress, err := e.progress.Progress(ctx, b)
	if err != nil {
		log.Printf("alerts: progress calculation failed for budget %s: %v", b.ID, err)
		return nil
	}

	switch {
	case progress.Percentage.GreaterThanOrEqual(thresholdExceeded):
		return newAlert(models.AlertTierExceeded, progress, exceededMessage(progress))
	case progress.Percentage.GreaterThanOrEqual(thresholdWarning):
		return newAlert(models.AlertTierWarning, progress, warningMessage(progress))
	default:
		return nil
	}
}

func newAlert(tier models.AlertTier, p *models.BudgetProgress, message string) *models.BudgetAlert {
	return &models.BudgetAlert{
		Tier:         tier,
		BudgetID:     p.BudgetID,
		CategoryName: p.CategoryName,
		Limit:        p.Limit,
		Spending:     p.Spending,
		Percentage:   p.Percentage,
		Message:      message,
		CreatedAt:    time.Now().UTC(),
	}
}

func warningMessage(p *models.BudgetProgress) string {
	return fmt.Sprintf("Warning: You've used %s%% of your %s budget ($%s of $%s)",
		p.Percentage.StringFixed(1), p.CategoryName, p.Spending.StringFixed(2), p.Limit.StringFixed(2))
}

func exceededMessage(p *models.BudgetProgress) string {
	over := p.Spending.Sub(p.Limit)
	return fmt.Sprintf("Alert: You've exceeded your %s budget by $%s (%s%% used)",
		p.CategoryName, over.StringFixed(2), p.Percentage.StringFixed(1))
}
