package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryType represents the type of a category
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "EXPENSE"
	CategoryTypeIncome  CategoryType = "INCOME"
)

// Category represents a transaction category
type Category struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       CategoryType `json:"type"`
	Predefined bool         `json:"predefined"`
	UserID     string       `json:"user_id,omitempty"` // empty for system-predefined categories
	CreatedAt  time.Time    `json:"created_at"`
}

// TransactionType represents the type of a transaction
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeIncome  TransactionType = "INCOME"
)

// Transaction represents a single ledger entry
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"category_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Budget represents a monthly spending limit for one expense category.
// Month is always normalized to the first of the month, UTC.
type Budget struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Limit        decimal.Decimal `json:"limit"`
	Month        time.Time       `json:"month"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BudgetStatus represents the health tier of a budget
type BudgetStatus string

const (
	BudgetStatusGreen  BudgetStatus = "green"  // < 70%
	BudgetStatusYellow BudgetStatus = "yellow" // 70% - < 90%
	BudgetStatusRed    BudgetStatus = "red"    // >= 90%
)

// BudgetProgress is the derived spending state of a budget for its month.
// It is recomputed on demand and never persisted.
type BudgetProgress struct {
	BudgetID     string          `json:"budget_id"`
	CategoryName string          `json:"category_name"`
	Limit        decimal.Decimal `json:"limit"`
	Spending     decimal.Decimal `json:"spending"`
	Remaining    decimal.Decimal `json:"remaining"` // negative when overspent
	Percentage   decimal.Decimal `json:"percentage"`
	Status       BudgetStatus    `json:"status"`
}

// AlertTier represents the threshold an alert was raised at
type AlertTier string

const (
	AlertTierWarning  AlertTier = "90%"
	AlertTierExceeded AlertTier = "100%"
)

// BudgetAlert is a transient threshold notification held until the user
// dismisses or consumes it.
type BudgetAlert struct {
	Tier         AlertTier       `json:"tier"`
	BudgetID     string          `json:"budget_id"`
	CategoryName string          `json:"category_name"`
	Limit        decimal.Decimal `json:"limit"`
	Spending     decimal.Decimal `json:"spending"`
	Percentage   decimal.Decimal `json:"percentage"`
	Message      string          `json:"message"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NotificationChannel represents how notifications reach the user
type NotificationChannel string

const (
	NotificationChannelInApp NotificationChannel = "in_app"
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelPush  NotificationChannel = "push"
)

// NotificationPreferences holds a user's notification settings. The
// alert evaluator only reads BudgetAlertsEnabled; the rest is carried
// for the presentation layer.
type NotificationPreferences struct {
	UserID              string              `json:"user_id"`
	BudgetAlertsEnabled bool                `json:"budget_alerts_enabled"`
	DailyReminder       bool                `json:"daily_reminder"`
	ReminderTime        string              `json:"reminder_time,omitempty"` // "HH:MM"
	Channel             NotificationChannel `json:"channel"`
}
