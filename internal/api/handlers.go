package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savegress/budgetwatch/internal/alerts"
	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/internal/ledger"
	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	ledger   *ledger.Engine
	calc     *budget.Calculator
	notifier *alerts.Notifier
}

// NewHandlers creates new handlers
func NewHandlers(eng *ledger.Engine, calc *budget.Calculator, notifier *alerts.Notifier) *Handlers {
	return &Handlers{
		ledger:   eng,
		calc:     calc,
		notifier: notifier,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "budgetwatch",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Category handlers

type categoryRequest struct {
	Name string              `json:"name"`
	Type models.CategoryType `json:"type"`
}

// ListCategories lists the predefined categories plus the user's own
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.ledger.Categories(r.Context(), UserID(r.Context())))
}

// CreateCategory creates a user-owned category
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Type != models.CategoryTypeExpense && req.Type != models.CategoryTypeIncome {
		respondError(w, http.StatusBadRequest, "Type must be EXPENSE or INCOME")
		return
	}

	c, err := h.ledger.CreateCategory(r.Context(), UserID(r.Context()), req.Name, req.Type)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

// GetCategory gets a category by ID
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Category(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

// RenameCategory renames a user-owned category
func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	c, err := h.ledger.RenameCategory(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

// Transaction handlers

// mutationResponse carries the mutated transaction together with the
// alert the mutation raised, if any.
type mutationResponse struct {
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Alert       *models.BudgetAlert `json:"alert,omitempty"`
}

// ListTransactions lists the user's transactions
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.TransactionFilter{Limit: 100}

	if txnType := r.URL.Query().Get("type"); txnType != "" {
		filter.Type = models.TransactionType(txnType)
	}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		filter.CategoryID = categoryID
	}

	respond(w, http.StatusOK, h.ledger.Transactions(r.Context(), UserID(r.Context()), filter))
}

// CreateTransaction creates a transaction and evaluates the affected
// budget
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in ledger.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := UserID(r.Context())
	txn, touches, err := h.ledger.CreateTransaction(r.Context(), userID, &in)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	alert := h.evaluateTouches(r.Context(), userID, touches)
	respond(w, http.StatusCreated, mutationResponse{Transaction: txn, Alert: alert})
}

// GetTransaction gets a transaction by ID
func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.Transaction(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, txn)
}

// UpdateTransaction updates a transaction and evaluates every affected
// budget
func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in ledger.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := UserID(r.Context())
	txn, touches, err := h.ledger.UpdateTransaction(r.Context(), userID, chi.URLParam(r, "id"), &in)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	alert := h.evaluateTouches(r.Context(), userID, touches)
	respond(w, http.StatusOK, mutationResponse{Transaction: txn, Alert: alert})
}

// DeleteTransaction deletes a transaction and re-evaluates the budget
// that lost spending
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	touches, err := h.ledger.DeleteTransaction(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	alert := h.evaluateTouches(r.Context(), userID, touches)
	respond(w, http.StatusOK, mutationResponse{Alert: alert})
}

// evaluateTouches runs the alert pipeline for each affected
// (category, month) pair. Alerting is best-effort; it can only add an
// alert to the response, never fail the mutation.
func (h *Handlers) evaluateTouches(ctx context.Context, userID string, touches []ledger.Touch) *models.BudgetAlert {
	var last *models.BudgetAlert
	for _, t := range touches {
		if alert := h.notifier.EvaluateAndStore(ctx, userID, t.CategoryID, t.Date); alert != nil {
			last = alert
		}
	}
	return last
}

// Budget handlers

type budgetRequest struct {
	CategoryID string          `json:"category_id"`
	Limit      decimal.Decimal `json:"limit"`
	Month      string          `json:"month"` // "2006-01"
}

// ListBudgets lists the user's budgets
func (h *Handlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.ledger.Budgets(r.Context(), UserID(r.Context())))
}

// CreateBudget creates a monthly budget for an expense category
func (h *Handlers) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Month must be in YYYY-MM format")
		return
	}

	b, err := h.ledger.CreateBudget(r.Context(), UserID(r.Context()), req.CategoryID, req.Limit, month)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusCreated, b)
}

// GetBudget gets a budget by ID
func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Budget(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

// UpdateBudget changes a budget's limit; category and month are fixed
func (h *Handlers) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit decimal.Decimal `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.ledger.UpdateBudgetLimit(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.Limit)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

// DeleteBudget deletes a budget
func (h *Handlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteBudget(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetBudgetProgress computes the budget's current spending state
func (h *Handlers) GetBudgetProgress(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Budget(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	progress, err := h.calc.Progress(r.Context(), b)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}
	respond(w, http.StatusOK, progress)
}

// Alert handlers

// ListAlerts returns the user's pending alerts
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	pending, err := h.notifier.Pending(r.Context(), UserID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load alerts")
		return
	}
	respond(w, http.StatusOK, pending)
}

// ClearAlerts removes all pending alerts for the user
func (h *Handlers) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.ClearAlerts(r.Context(), UserID(r.Context())); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear alerts")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// DismissAlert removes a single pending alert. The tier URL segment is
// "90" or "100".
func (h *Handlers) DismissAlert(w http.ResponseWriter, r *http.Request) {
	var tier models.AlertTier
	switch chi.URLParam(r, "tier") {
	case "90":
		tier = models.AlertTierWarning
	case "100":
		tier = models.AlertTierExceeded
	default:
		respondError(w, http.StatusBadRequest, "Tier must be 90 or 100")
		return
	}

	if err := h.notifier.DismissAlert(r.Context(), UserID(r.Context()), chi.URLParam(r, "budgetID"), tier); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to dismiss alert")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// Preference handlers

// GetPreferences returns the user's notification preferences
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.ledger.Preferences(r.Context(), UserID(r.Context())))
}

// PutPreferences stores the user's notification preferences
func (h *Handlers) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.ledger.SetPreferences(r.Context(), UserID(r.Context()), &prefs)
	respond(w, http.StatusOK, prefs)
}

// Helper functions

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrCategoryNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrBudgetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDuplicateBudget):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
