package alerts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/savegress/budgetwatch/internal/budget"
	"github.com/savegress/budgetwatch/pkg/models"
)

// fakeLedger implements the budget, preference, and transaction sources
// over a mutable in-memory slice, standing in for the real ledger.
type fakeLedger struct {
	budgets []*models.Budget
	txns    []*models.Transaction
	enabled bool
}

func (f *fakeLedger) FindBudget(_ context.Context, userID, categoryID string, month time.Time) (*models.Budget, error) {
	norm := budget.NormalizeMonth(month)
	for _, b := range f.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month.Equal(norm) {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) BudgetAlertsEnabled(context.Context, string) (bool, error) {
	return f.enabled, nil
}

func (f *fakeLedger) ExpenseTransactions(_ context.Context, userID, categoryID string, from, to time.Time) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, txn := range f.txns {
		if txn.UserID != userID || txn.CategoryID != categoryID || txn.Type != models.TransactionTypeExpense {
			continue
		}
		if txn.Date.Before(from) || txn.Date.After(to) {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (f *fakeLedger) addExpense(amount string, date time.Time) {
	f.txns = append(f.txns, &models.Transaction{
		ID:         "txn-" + amount,
		UserID:     "user-1",
		Type:       models.TransactionTypeExpense,
		Amount:     dec(amount),
		CategoryID: "cat-food",
		Date:       date,
	})
}

func newScenario() (*fakeLedger, *Notifier, *MemoryStore) {
	ledger := &fakeLedger{
		enabled: true,
		budgets: []*models.Budget{{
			ID:           "bdg-food",
			UserID:       "user-1",
			CategoryID:   "cat-food",
			CategoryName: "Food",
			Limit:        dec("100.00"),
			Month:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	store := NewMemoryStore()
	evaluator := NewEvaluator(ledger, ledger, budget.NewCalculator(ledger))
	return ledger, NewNotifier(evaluator, store), store
}

func TestNotifier_EndToEnd(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()

	// $60 of a $100 budget: 60%, no alert.
	ledger.addExpense("60.00", day)
	if alert := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day); alert != nil {
		t.Fatalf("expected no alert at 60%%, got %+v", alert)
	}

	// +$35 = $95, 95%: warning alert.
	ledger.addExpense("35.00", day)
	alert := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)
	if alert == nil || alert.Tier != models.AlertTierWarning {
		t.Fatalf("expected warning alert at 95%%, got %+v", alert)
	}
	if !strings.Contains(alert.Message, "95.0%") {
		t.Errorf("expected message to contain 95.0%%, got %q", alert.Message)
	}

	pending, _ := notifier.Pending(ctx, "user-1")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending alert, got %d", len(pending))
	}

	// +$10 = $105, 105%: exceeded alert supersedes the warning.
	ledger.addExpense("10.00", day)
	alert = notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)
	if alert == nil || alert.Tier != models.AlertTierExceeded {
		t.Fatalf("expected exceeded alert at 105%%, got %+v", alert)
	}

	pending, _ = notifier.Pending(ctx, "user-1")
	if len(pending) != 1 {
		t.Fatalf("expected the warning to be superseded, got %d alerts", len(pending))
	}
	if pending[0].Tier != models.AlertTierExceeded {
		t.Errorf("expected only the exceeded alert to remain, got tier %s", pending[0].Tier)
	}
}

func TestNotifier_Idempotent(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()
	ledger.addExpense("95.00", day)

	first := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)
	second := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)

	if first == nil || second == nil {
		t.Fatal("expected both evaluations to produce an alert")
	}
	if first.Tier != second.Tier || first.BudgetID != second.BudgetID || first.Message != second.Message {
		t.Errorf("expected semantically identical alerts, got %+v and %+v", first, second)
	}

	pending, _ := notifier.Pending(ctx, "user-1")
	if len(pending) != 1 {
		t.Errorf("expected dedup to leave exactly 1 entry, got %d", len(pending))
	}
}

func TestNotifier_DisabledSuppressesEverything(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()
	ledger.enabled = false
	ledger.addExpense("500.00", day)

	if alert := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day); alert != nil {
		t.Fatalf("expected no alert with alerts disabled, got %+v", alert)
	}

	pending, _ := notifier.Pending(ctx, "user-1")
	if len(pending) != 0 {
		t.Errorf("expected pending to stay empty, got %d", len(pending))
	}
}

func TestNotifier_NoBudgetNoAlert(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()
	ledger.addExpense("95.00", day)

	// Category with no budget attached.
	if alert := notifier.EvaluateAndStore(ctx, "user-1", "cat-travel", day); alert != nil {
		t.Fatalf("expected no alert for unbudgeted category, got %+v", alert)
	}
}

func TestNotifier_NoReAlertAfterDipAndRecross(t *testing.T) {
	// Once a (budget, tier) alert is pending, crossing the threshold
	// again does not create a new entry until it is dismissed.
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()

	ledger.addExpense("95.00", day)
	notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)

	// Spending drops below 90% (transaction deleted), then recrosses.
	ledger.txns = nil
	ledger.addExpense("50.00", day)
	if alert := notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day); alert != nil {
		t.Fatalf("expected no alert at 50%%, got %+v", alert)
	}

	ledger.addExpense("45.00", day)
	notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)

	pending, _ := notifier.Pending(ctx, "user-1")
	if len(pending) != 1 {
		t.Errorf("expected dedup to hold a single warning across the recross, got %d", len(pending))
	}
}

func TestNotifier_DismissAlert(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ledger, notifier, _ := newScenario()
	ledger.addExpense("95.00", day)
	notifier.EvaluateAndStore(ctx, "user-1", "cat-food", day)

	if err := notifier.DismissAlert(ctx, "user-1", "bdg-food", models.AlertTierWarning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, _ := notifier.Pending(ctx, "user-1")
	if len(pending) != 0 {
		t.Errorf("expected no pending alerts after dismissal, got %d", len(pending))
	}
}
