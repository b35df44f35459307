package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// TransactionInput carries the user-editable fields of a transaction.
type TransactionInput struct {
	Type        models.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	CategoryID  string                 `json:"category_id"`
	Date        time.Time              `json:"date"`
	Description string                 `json:"description"`
}

// Touch identifies a (category, month) pair whose budget needs
// re-evaluation after a mutation. Only expense mutations produce
// touches; income never counts against a budget.
type Touch struct {
	CategoryID string
	Date       time.Time
}

func (e *Engine) validateInput(userID string, in *TransactionInput) error {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	c, err := e.visibleCategory(userID, in.CategoryID)
	if err != nil {
		return err
	}
	if models.CategoryType(in.Type) != c.Type {
		return ErrCategoryTypeMismatch
	}
	return nil
}

func expenseTouch(t *models.Transaction) []Touch {
	if t.Type != models.TransactionTypeExpense {
		return nil
	}
	return []Touch{{CategoryID: t.CategoryID, Date: t.Date}}
}

// CreateTransaction records a new transaction and reports the budget
// pairs the caller should re-evaluate.
func (e *Engine) CreateTransaction(_ context.Context, userID string, in *TransactionInput) (*models.Transaction, []Touch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validateInput(userID, in); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.transactions[txn.ID] = txn

	return txn, expenseTouch(txn), nil
}

// UpdateTransaction replaces a transaction's editable fields. When the
// edit moves the transaction across categories or months, both the old
// and the new budget pair need re-evaluation.
func (e *Engine) UpdateTransaction(_ context.Context, userID, id string, in *TransactionInput) (*models.Transaction, []Touch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn, ok := e.transactions[id]
	if !ok || txn.UserID != userID {
		return nil, nil, ErrTransactionNotFound
	}
	if err := e.validateInput(userID, in); err != nil {
		return nil, nil, err
	}

	touches := expenseTouch(txn)

	txn.Type = in.Type
	txn.Amount = in.Amount
	txn.CategoryID = in.CategoryID
	txn.Date = in.Date
	txn.Description = in.Description
	txn.UpdatedAt = time.Now().UTC()

	for _, t := range expenseTouch(txn) {
		if !containsTouch(touches, t) {
			touches = append(touches, t)
		}
	}
	return txn, touches, nil
}

// DeleteTransaction removes a transaction and reports the budget pair
// that lost spending.
func (e *Engine) DeleteTransaction(_ context.Context, userID, id string) ([]Touch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn, ok := e.transactions[id]
	if !ok || txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	delete(e.transactions, id)
	return expenseTouch(txn), nil
}

func containsTouch(touches []Touch, t Touch) bool {
	for _, have := range touches {
		if have.CategoryID == t.CategoryID && budget.NormalizeMonth(have.Date).Equal(budget.NormalizeMonth(t.Date)) {
			return true
		}
	}
	return false
}

// Transaction returns one of the user's transactions.
func (e *Engine) Transaction(_ context.Context, userID, id string) (*models.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, ok := e.transactions[id]
	if !ok || txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// TransactionFilter defines filters for transaction queries.
type TransactionFilter struct {
	Type       models.TransactionType
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// Transactions returns the user's transactions matching the filter.
func (e *Engine) Transactions(_ context.Context, userID string, filter TransactionFilter) []*models.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []*models.Transaction
	for _, txn := range e.transactions {
		if txn.UserID != userID {
			continue
		}
		if !matchesFilter(txn, filter) {
			continue
		}
		out = append(out, txn)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

func matchesFilter(txn *models.Transaction, filter TransactionFilter) bool {
	if filter.Type != "" && txn.Type != filter.Type {
		return false
	}
	if filter.CategoryID != "" && txn.CategoryID != filter.CategoryID {
		return false
	}
	if filter.StartDate != nil && txn.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && txn.Date.After(*filter.EndDate) {
		return false
	}
	return true
}

// ExpenseTransactions returns the user's expense transactions for a
// category within the inclusive date range. Implements the calculator's
// transaction source.
func (e *Engine) ExpenseTransactions(ctx context.Context, userID, categoryID string, from, to time.Time) ([]*models.Transaction, error) {
	return e.Transactions(ctx, userID, TransactionFilter{
		Type:       models.TransactionTypeExpense,
		CategoryID: categoryID,
		StartDate:  &from,
		EndDate:    &to,
	}), nil
}
