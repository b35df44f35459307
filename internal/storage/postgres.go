// Package storage provides the Postgres read-side repository for
// deployments where the surrounding web application's relational store
// is the system of record and budgetwatch only evaluates against it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/pkg/models"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a pool and verifies the connection.
func New(databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Repository implements the calculator's and evaluator's read
// interfaces over Postgres.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over the pool.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// ExpenseTransactions returns a user's expense transactions for a
// category within the inclusive date range.
func (r *Repository) ExpenseTransactions(ctx context.Context, userID, categoryID string, from, to time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, type, amount, category_id, occurred_on, COALESCE(description, ''), created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		  AND category_id = $2
		  AND type = 'EXPENSE'
		  AND occurred_on BETWEEN $3 AND $4`,
		userID, categoryID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query expense transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &txn.CategoryID,
			&txn.Date, &txn.Description, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}

// FindBudget resolves the budget covering (user, category, month of the
// given instant). A nil budget with nil error means none applies.
func (r *Repository) FindBudget(ctx context.Context, userID, categoryID string, month time.Time) (*models.Budget, error) {
	norm := budget.NormalizeMonth(month)

	var b models.Budget
	err := r.db.pool.QueryRow(ctx, `
		SELECT b.id, b.user_id, b.category_id, c.name, b.limit_amount, b.month, b.created_at, b.updated_at
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = $1 AND b.category_id = $2 AND b.month = $3`,
		userID, categoryID, norm).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Limit, &b.Month, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query budget: %w", err)
	}
	return &b, nil
}

// BudgetAlertsEnabled reports whether the user receives budget alerts.
// Users without a stored preference row default to enabled.
func (r *Repository) BudgetAlertsEnabled(ctx context.Context, userID string) (bool, error) {
	var enabled bool
	err := r.db.pool.QueryRow(ctx,
		`SELECT budget_alerts_enabled FROM notification_preferences WHERE user_id = $1`,
		userID).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("query preferences: %w", err)
	}
	return enabled, nil
}
