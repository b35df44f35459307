package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/savegress/budgetwatch/pkg/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// stubSource returns a fixed set of transactions, recording the range it
// was queried with.
type stubSource struct {
	txns []*models.Transaction
	err  error

	gotFrom time.Time
	gotTo   time.Time
}

func (s *stubSource) ExpenseTransactions(_ context.Context, _, _ string, from, to time.Time) ([]*models.Transaction, error) {
	s.gotFrom = from
	s.gotTo = to
	if s.err != nil {
		return nil, s.err
	}
	return s.txns, nil
}

func expense(amount string, date time.Time) *models.Transaction {
	return &models.Transaction{
		ID:     "txn-" + amount,
		Type:   models.TransactionTypeExpense,
		Amount: dec(amount),
		Date:   date,
	}
}

func januaryBudget(limit string) *models.Budget {
	return &models.Budget{
		ID:           "bdg-1",
		UserID:       "user-1",
		CategoryID:   "cat-food",
		CategoryName: "Food",
		Limit:        dec(limit),
		Month:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(time.Date(2024, time.January, 15, 12, 30, 0, 0, time.UTC))

	wantFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC)

	if !from.Equal(wantFrom) {
		t.Errorf("expected start %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantTo) {
		t.Errorf("expected end %v, got %v", wantTo, to)
	}
}

func TestMonthRange_February(t *testing.T) {
	// Leap year
	_, to := MonthRange(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	if to.Day() != 29 {
		t.Errorf("expected leap February to end on day 29, got %d", to.Day())
	}

	_, to = MonthRange(time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC))
	if to.Day() != 28 {
		t.Errorf("expected February to end on day 28, got %d", to.Day())
	}
}

func TestNormalizeMonth(t *testing.T) {
	got := NormalizeMonth(time.Date(2024, time.March, 17, 9, 45, 2, 0, time.UTC))
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCalculator_Progress(t *testing.T) {
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	src := &stubSource{txns: []*models.Transaction{
		expense("60.00", jan),
		expense("35.00", jan),
	}}
	calc := NewCalculator(src)

	progress, err := calc.Progress(context.Background(), januaryBudget("100.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !progress.Spending.Equal(dec("95.00")) {
		t.Errorf("expected spending 95.00, got %s", progress.Spending)
	}
	if !progress.Remaining.Equal(dec("5.00")) {
		t.Errorf("expected remaining 5.00, got %s", progress.Remaining)
	}
	if !progress.Percentage.Equal(dec("95.0")) {
		t.Errorf("expected percentage 95.0, got %s", progress.Percentage)
	}
	if progress.Status != models.BudgetStatusRed {
		t.Errorf("expected status red, got %s", progress.Status)
	}
	if progress.CategoryName != "Food" {
		t.Errorf("expected category Food, got %s", progress.CategoryName)
	}
}

func TestCalculator_Progress_QueriesMonthBounds(t *testing.T) {
	src := &stubSource{}
	calc := NewCalculator(src)

	if _, err := calc.Progress(context.Background(), januaryBudget("100.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFrom := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC)
	if !src.gotFrom.Equal(wantFrom) || !src.gotTo.Equal(wantTo) {
		t.Errorf("expected query range [%v, %v], got [%v, %v]", wantFrom, wantTo, src.gotFrom, src.gotTo)
	}
}

func TestCalculator_Progress_ExactCentSum(t *testing.T) {
	jan := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	txns := make([]*models.Transaction, 1000)
	for i := range txns {
		txns[i] = expense("0.01", jan)
	}
	calc := NewCalculator(&stubSource{txns: txns})

	progress, err := calc.Progress(context.Background(), januaryBudget("10.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !progress.Spending.Equal(dec("10.00")) {
		t.Errorf("expected spending exactly 10.00, got %s", progress.Spending)
	}
	if !progress.Remaining.IsZero() {
		t.Errorf("expected remaining exactly 0, got %s", progress.Remaining)
	}
	if !progress.Percentage.Equal(dec("100.0")) {
		t.Errorf("expected percentage 100.0, got %s", progress.Percentage)
	}
}

func TestCalculator_Progress_Overspend(t *testing.T) {
	jan := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	calc := NewCalculator(&stubSource{txns: []*models.Transaction{expense("105.00", jan)}})

	progress, err := calc.Progress(context.Background(), januaryBudget("100.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !progress.Remaining.Equal(dec("-5.00")) {
		t.Errorf("expected remaining -5.00, got %s", progress.Remaining)
	}
	if !progress.Percentage.Equal(dec("105.0")) {
		t.Errorf("expected percentage 105.0, got %s", progress.Percentage)
	}
	if progress.Status != models.BudgetStatusRed {
		t.Errorf("expected status red, got %s", progress.Status)
	}
}

func TestCalculator_Progress_ZeroLimit(t *testing.T) {
	jan := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	calc := NewCalculator(&stubSource{txns: []*models.Transaction{expense("50.00", jan)}})

	progress, err := calc.Progress(context.Background(), januaryBudget("0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !progress.Percentage.IsZero() {
		t.Errorf("expected 0%% for zero limit, got %s", progress.Percentage)
	}
}

func TestCalculator_Progress_SourceError(t *testing.T) {
	calc := NewCalculator(&stubSource{err: errors.New("store unreachable")})

	if _, err := calc.Progress(context.Background(), januaryBudget("100.00")); err == nil {
		t.Error("expected error to propagate from transaction source")
	}
}

func TestStatusFor_Boundaries(t *testing.T) {
	cases := []struct {
		pct  string
		want models.BudgetStatus
	}{
		{"0", models.BudgetStatusGreen},
		{"69.9", models.BudgetStatusGreen},
		{"70.0", models.BudgetStatusYellow},
		{"89.9", models.BudgetStatusYellow},
		{"90.0", models.BudgetStatusRed},
		{"100", models.BudgetStatusRed},
		{"150", models.BudgetStatusRed},
	}

	for _, c := range cases {
		if got := StatusFor(dec(c.pct)); got != c.want {
			t.Errorf("StatusFor(%s): expected %s, got %s", c.pct, c.want, got)
		}
	}
}
