// Package budget derives spending progress for monthly category budgets.
// Progress is always recomputed from the transaction source on demand;
// nothing here is cached, so concurrent ledger edits can never leave a
// stale percentage behind.
package budget

import (
	"context"
	"time"

	"github.com/savegress/budgetwatch/internal/money"
	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// Tier thresholds. Boundary values belong to the higher tier:
// exactly 70.0 is yellow, exactly 90.0 is red.
var (
	thresholdYellow = decimal.NewFromInt(70)
	thresholdRed    = decimal.NewFromInt(90)
)

// TransactionSource provides read access to a user's expense transactions
// within an inclusive date range.
type TransactionSource interface {
	ExpenseTransactions(ctx context.Context, userID, categoryID string, from, to time.Time) ([]*models.Transaction, error)
}

// Calculator computes budget progress from the transaction source.
type Calculator struct {
	transactions TransactionSource
}

// NewCalculator creates a new progress calculator.
func NewCalculator(src TransactionSource) *Calculator {
	return &Calculator{transactions: src}
}

// MonthRange returns the inclusive bounds of the month containing t:
// first day 00:00:00 through last day 23:59:59.999, UTC.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// NormalizeMonth truncates t to the first of its month, UTC.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Progress computes the derived spending state for a budget.
// Pure read/compute; no side effects.
func (c *Calculator) Progress(ctx context.Context, b *models.Budget) (*models.BudgetProgress, error) {
	start, end := MonthRange(b.Month)

	txns, err := c.transactions.ExpenseTransactions(ctx, b.UserID, b.CategoryID, start, end)
	if err != nil {
		return nil, err
	}

	spending := decimal.Zero
	for _, txn := range txns {
		spending = money.Add(spending, txn.Amount)
	}

	percentage := money.Round(money.Percentage(spending, b.Limit), 1)

	return &models.BudgetProgress{
		BudgetID:     b.ID,
		CategoryName: b.CategoryName,
		Limit:        b.Limit,
		Spending:     spending,
		Remaining:    money.Sub(b.Limit, spending),
		Percentage:   percentage,
		Status:       StatusFor(percentage),
	}, nil
}

// StatusFor maps a spend percentage to its health tier.
func StatusFor(percentage decimal.Decimal) models.BudgetStatus {
	switch {
	case percentage.LessThan(thresholdYellow):
		return models.BudgetStatusGreen
	case percentage.LessThan(thresholdRed):
		return models.BudgetStatusYellow
	default:
		return models.BudgetStatusRed
	}
}
