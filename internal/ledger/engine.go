// Package ledger is the in-memory system of record for categories,
// transactions, budgets, and notification preferences. It implements the
// read interfaces the progress calculator and alert evaluator consume.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/budgetwatch/pkg/models"
)

// Errors
var (
	ErrCategoryNotFound     = errors.New("ledger: category not found")
	ErrTransactionNotFound  = errors.New("ledger: transaction not found")
	ErrBudgetNotFound       = errors.New("ledger: budget not found")
	ErrDuplicateBudget      = errors.New("ledger: budget already exists for this category and month")
	ErrPredefinedCategory   = errors.New("ledger: predefined categories cannot be modified")
	ErrCategoryTypeMismatch = errors.New("ledger: transaction type does not match category type")
	ErrNotExpenseCategory   = errors.New("ledger: budgets require an expense category")
	ErrInvalidAmount        = errors.New("ledger: amount must be positive")
	ErrInvalidLimit         = errors.New("ledger: limit must be positive")
)

// Engine stores all ledger entities behind one lock.
type Engine struct {
	mu           sync.RWMutex
	categories   map[string]*models.Category
	transactions map[string]*models.Transaction
	budgets      map[string]*models.Budget
	prefs        map[string]*models.NotificationPreferences
}

// NewEngine creates a ledger seeded with the system-predefined categories.
func NewEngine() *Engine {
	e := &Engine{
		categories:   make(map[string]*models.Category),
		transactions: make(map[string]*models.Transaction),
		budgets:      make(map[string]*models.Budget),
		prefs:        make(map[string]*models.NotificationPreferences),
	}
	e.seedPredefined()
	return e
}

func (e *Engine) seedPredefined() {
	predefined := []struct {
		name  string
		ctype models.CategoryType
	}{
		{"Food", models.CategoryTypeExpense},
		{"Transport", models.CategoryTypeExpense},
		{"Housing", models.CategoryTypeExpense},
		{"Utilities", models.CategoryTypeExpense},
		{"Entertainment", models.CategoryTypeExpense},
		{"Healthcare", models.CategoryTypeExpense},
		{"Other", models.CategoryTypeExpense},
		{"Salary", models.CategoryTypeIncome},
		{"Other Income", models.CategoryTypeIncome},
	}

	now := time.Now().UTC()
	for _, p := range predefined {
		c := &models.Category{
			ID:         uuid.NewString(),
			Name:       p.name,
			Type:       p.ctype,
			Predefined: true,
			CreatedAt:  now,
		}
		e.categories[c.ID] = c
	}
}

// CreateCategory creates a user-owned category.
func (e *Engine) CreateCategory(_ context.Context, userID, name string, ctype models.CategoryType) (*models.Category, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := &models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      ctype,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	e.categories[c.ID] = c
	return c, nil
}

// Categories returns the predefined categories plus the user's own.
func (e *Engine) Categories(_ context.Context, userID string) []*models.Category {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []*models.Category
	for _, c := range e.categories {
		if c.Predefined || c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// Category returns a category visible to the user.
func (e *Engine) Category(_ context.Context, userID, id string) (*models.Category, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.visibleCategory(userID, id)
}

// visibleCategory must be called with the lock held.
func (e *Engine) visibleCategory(userID, id string) (*models.Category, error) {
	c, ok := e.categories[id]
	if !ok || (!c.Predefined && c.UserID != userID) {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// RenameCategory renames a user-owned category. Predefined categories
// are immutable.
func (e *Engine) RenameCategory(_ context.Context, userID, id, name string) (*models.Category, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.visibleCategory(userID, id)
	if err != nil {
		return nil, err
	}
	if c.Predefined {
		return nil, ErrPredefinedCategory
	}
	c.Name = name

	// Budgets carry the category name for display; keep them in step.
	for _, b := range e.budgets {
		if b.CategoryID == id {
			b.CategoryName = name
		}
	}
	return c, nil
}

// Preferences returns the user's notification preferences. Users without
// stored preferences default to alerts enabled on the in-app channel.
func (e *Engine) Preferences(_ context.Context, userID string) *models.NotificationPreferences {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if p, ok := e.prefs[userID]; ok {
		return p
	}
	return &models.NotificationPreferences{
		UserID:              userID,
		BudgetAlertsEnabled: true,
		Channel:             models.NotificationChannelInApp,
	}
}

// SetPreferences stores the user's notification preferences.
func (e *Engine) SetPreferences(_ context.Context, userID string, p *models.NotificationPreferences) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p.UserID = userID
	e.prefs[userID] = p
}

// BudgetAlertsEnabled reports whether the user receives budget alerts.
func (e *Engine) BudgetAlertsEnabled(ctx context.Context, userID string) (bool, error) {
	return e.Preferences(ctx, userID).BudgetAlertsEnabled, nil
}
