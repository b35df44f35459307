package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// CreateBudget creates a monthly limit for an expense category. The
// month is normalized to its first day; at most one budget may exist
// per (user, category, month).
func (e *Engine) CreateBudget(_ context.Context, userID, categoryID string, limit decimal.Decimal, month time.Time) (*models.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.visibleCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if c.Type != models.CategoryTypeExpense {
		return nil, ErrNotExpenseCategory
	}
	if limit.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidLimit
	}

	norm := budget.NormalizeMonth(month)
	for _, b := range e.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month.Equal(norm) {
			return nil, ErrDuplicateBudget
		}
	}

	now := time.Now().UTC()
	b := &models.Budget{
		ID:           uuid.NewString(),
		UserID:       userID,
		CategoryID:   categoryID,
		CategoryName: c.Name,
		Limit:        limit,
		Month:        norm,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.budgets[b.ID] = b
	return b, nil
}

// UpdateBudgetLimit changes a budget's limit. Category and month are
// fixed after creation.
func (e *Engine) UpdateBudgetLimit(_ context.Context, userID, id string, limit decimal.Decimal) (*models.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.budgets[id]
	if !ok || b.UserID != userID {
		return nil, ErrBudgetNotFound
	}
	if limit.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidLimit
	}

	b.Limit = limit
	b.UpdatedAt = time.Now().UTC()
	return b, nil
}

// DeleteBudget removes a budget.
func (e *Engine) DeleteBudget(_ context.Context, userID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.budgets[id]
	if !ok || b.UserID != userID {
		return ErrBudgetNotFound
	}
	delete(e.budgets, id)
	return nil
}

// Budget returns one of the user's budgets.
func (e *Engine) Budget(_ context.Context, userID, id string) (*models.Budget, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.budgets[id]
	if !ok || b.UserID != userID {
		return nil, ErrBudgetNotFound
	}
	return b, nil
}

// Budgets returns all of the user's budgets.
func (e *Engine) Budgets(_ context.Context, userID string) []*models.Budget {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []*models.Budget
	for _, b := range e.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// FindBudget resolves the budget covering (user, category, month of the
// given instant). A nil budget with nil error means none applies.
// Implements the evaluator's budget source.
func (e *Engine) FindBudget(_ context.Context, userID, categoryID string, month time.Time) (*models.Budget, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	norm := budget.NormalizeMonth(month)
	for _, b := range e.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month.Equal(norm) {
			return b, nil
		}
	}
	return nil, nil
}
