package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"fintrack/internal/fin"
	"fintrack/internal/service/repayment"
	"fintrack/internal/storage/memory"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("INR", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func setup(t *testing.T) (*memory.Store, Service, uuid.UUID) {
	t.Helper()
	store := memory.New()
	user := fin.User{ID: uuid.New()}
	store.SeedUser(user)
	return store, New(store, "INR"), user.ID
}

func TestSummary_Totals(t *testing.T) {
	store, svc, userID := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	store.CreateIncome(ctx, fin.Income{ID: uuid.New(), UserID: userID, Date: now, Source: "Salary", Amount: amt(t, 50000)})
	store.CreateIncome(ctx, fin.Income{ID: uuid.New(), UserID: userID, Date: now, Source: "Gift", Amount: amt(t, 2000)})
	store.CreateExpense(ctx, fin.Expense{ID: uuid.New(), UserID: userID, Date: now, Category: "Food", Amount: amt(t, 7000), PaymentMethod: "Card"})
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "Asha", amt(t, 3000), nil, ""))
	store.CreateLoan(ctx, fin.NewLoan(userID, now, "HomeBank", amt(t, 100000), amt(t, 5000), "24 months", ""))

	// A borrowed repayment deliberately counts against loan outstanding too.
	rsvc := repayment.New(store, store)
	if _, _, err := rsvc.Submit(ctx, repayment.SubmitInput{
		UserID: userID, Date: now, Type: fin.RepaymentTypeBorrowed,
		PaidTo: "Asha", Amount: amt(t, 1000),
	}); err != nil {
		t.Fatalf("submit repayment: %v", err)
	}

	sum, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	checks := []struct {
		name string
		got  money.Amount
		want int64
	}{
		{"income", sum.Income, 52000},
		{"expenses", sum.Expenses, 7000},
		{"borrowed", sum.Borrowed, 3000},
		{"repaid", sum.Repaid, 1000},
		{"loans", sum.Loans, 100000},
		{"loan_outstanding", sum.LoanOutstanding, 99000},
		{"net_balance", sum.NetBalance, 45000},
	}
	for _, c := range checks {
		if got, _ := c.got.MinorUnits(); got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, got)
		}
	}
}

func TestSummary_UpcomingWindow(t *testing.T) {
	store, svc, userID := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inWindow := now.Add(10 * 24 * time.Hour)
	later := now.Add(25 * 24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	beyond := now.Add(45 * 24 * time.Hour)

	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "Later", amt(t, 500), &later, ""))
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "Soon", amt(t, 1000), &inWindow, ""))
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "Overdue", amt(t, 300), &past, ""))
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "FarOut", amt(t, 900), &beyond, ""))
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "NoDue", amt(t, 200), nil, ""))

	sum, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Upcoming) != 2 {
		t.Fatalf("expected 2 upcoming entries, got %d: %+v", len(sum.Upcoming), sum.Upcoming)
	}
	if sum.Upcoming[0].Label != "Repayment to Soon" || sum.Upcoming[1].Label != "Repayment to Later" {
		t.Fatalf("upcoming not sorted by due date ascending: %+v", sum.Upcoming)
	}
	if due, _ := sum.Upcoming[0].AmountDue.MinorUnits(); due != 1000 {
		t.Fatalf("expected outstanding 1000 due, got %d", due)
	}
}

func TestSummary_UpcomingReflectsPartialRepayment(t *testing.T) {
	store, svc, userID := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()
	due := now.Add(5 * 24 * time.Hour)

	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, now, "Asha", amt(t, 1000), &due, ""))
	rsvc := repayment.New(store, store)
	if _, _, err := rsvc.Submit(ctx, repayment.SubmitInput{
		UserID: userID, Date: now, Type: fin.RepaymentTypeBorrowed,
		PaidTo: "Asha", Amount: amt(t, 400),
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	sum, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Upcoming) != 1 {
		t.Fatalf("expected 1 upcoming, got %d", len(sum.Upcoming))
	}
	if got, _ := sum.Upcoming[0].AmountDue.MinorUnits(); got != 600 {
		t.Fatalf("amount due must be outstanding, not principal: got %d", got)
	}
}

func TestTransactions_SignsAndOrder(t *testing.T) {
	store, svc, userID := setup(t)
	ctx := context.Background()

	d1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	store.CreateIncome(ctx, fin.Income{ID: uuid.New(), UserID: userID, Date: d1, Source: "Salary", Amount: amt(t, 500)})
	store.CreateExpense(ctx, fin.Expense{ID: uuid.New(), UserID: userID, Date: d2, Category: "Food", Amount: amt(t, 200), PaymentMethod: "Cash"})
	store.CreateBorrowed(ctx, fin.NewBorrowed(userID, d3, "Asha", amt(t, 1000), nil, ""))

	txs, err := svc.Transactions(ctx, userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Kind != fin.KindBorrowed || txs[1].Kind != fin.KindExpense || txs[2].Kind != fin.KindIncome {
		t.Fatalf("transactions not date-descending: %+v", txs)
	}
	if got, _ := txs[2].Amount.MinorUnits(); got != 500 {
		t.Fatalf("income must be positive, got %d", got)
	}
	if got, _ := txs[1].Amount.MinorUnits(); got != -200 {
		t.Fatalf("expense must be negative, got %d", got)
	}
	if got, _ := txs[0].Amount.MinorUnits(); got != 1000 {
		t.Fatalf("borrowed principal must be positive, got %d", got)
	}
	if txs[0].Category != "Personal" {
		t.Fatalf("borrowed category must default to Personal, got %q", txs[0].Category)
	}
	if txs[2].Mode != "N/A" {
		t.Fatalf("non-payment rows carry mode N/A, got %q", txs[2].Mode)
	}
}

func TestTransactions_RepaymentRow(t *testing.T) {
	store, svc, userID := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	store.CreateLoan(ctx, fin.NewLoan(userID, now.Add(-time.Hour), "HomeBank", amt(t, 5000), amt(t, 500), "10 months", ""))
	rsvc := repayment.New(store, store)
	if _, _, err := rsvc.Submit(ctx, repayment.SubmitInput{
		UserID: userID, Date: now, Type: fin.RepaymentTypeLoan,
		PaidTo: "HomeBank", Amount: amt(t, 500), Mode: "NetBanking",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	txs, err := svc.Transactions(ctx, userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected loan + repayment rows, got %d", len(txs))
	}
	rep := txs[0]
	if rep.Kind != fin.KindRepayment {
		t.Fatalf("expected repayment newest, got %s", rep.Kind)
	}
	if got, _ := rep.Amount.MinorUnits(); got != -500 {
		t.Fatalf("repayment must be negative, got %d", got)
	}
	if rep.Category != "Loan" || rep.Mode != "NetBanking" {
		t.Fatalf("unexpected repayment row: %+v", rep)
	}
}
