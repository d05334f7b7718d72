package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("INR", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func TestListOrder_DateDescThenCreation(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := uuid.New()

	d := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	older := fin.Income{ID: uuid.New(), UserID: userID, Date: d.Add(-24 * time.Hour), Source: "old", Amount: amt(t, 1)}
	first := fin.Income{ID: uuid.New(), UserID: userID, Date: d, Source: "first", Amount: amt(t, 2)}
	second := fin.Income{ID: uuid.New(), UserID: userID, Date: d, Source: "second", Amount: amt(t, 3)}
	for _, in := range []fin.Income{older, first, second} {
		if _, err := store.CreateIncome(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := store.IncomesByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].Source != "first" || got[1].Source != "second" || got[2].Source != "old" {
		t.Fatalf("wrong order: %s, %s, %s", got[0].Source, got[1].Source, got[2].Source)
	}
}

func TestFirstPendingBorrowed_CreationOrderAndStatus(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := uuid.New()

	first := fin.NewBorrowed(userID, time.Now(), "Asha", amt(t, 100), nil, "")
	second := fin.NewBorrowed(userID, time.Now(), "Asha", amt(t, 200), nil, "")
	store.CreateBorrowed(ctx, first)
	store.CreateBorrowed(ctx, second)

	got, found, err := store.FirstPendingBorrowed(ctx, userID, "Asha")
	if err != nil || !found {
		t.Fatalf("expected match, found=%v err=%v", found, err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected earliest-created record, got %s", got.ID)
	}

	first.Status = fin.StatusPaid
	if _, err := store.UpdateBorrowed(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, found, _ = store.FirstPendingBorrowed(ctx, userID, "Asha")
	if !found || got.ID != second.ID {
		t.Fatalf("paid record must be skipped, got %v found=%v", got.ID, found)
	}

	_, found, _ = store.FirstPendingBorrowed(ctx, userID, "Unknown")
	if found {
		t.Fatal("no match expected for unknown name")
	}
}

func TestByIDAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := uuid.New()

	l := fin.NewLoan(userID, time.Now(), "HomeBank", amt(t, 1000), amt(t, 100), "12 months", "")
	store.CreateLoan(ctx, l)

	got, err := store.LoanByID(ctx, l.ID)
	if err != nil || got.Provider != "HomeBank" {
		t.Fatalf("get: %v %+v", err, got)
	}
	if err := store.DeleteLoan(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoanByID(ctx, l.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteLoan(ctx, l.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("double delete expected not found, got %v", err)
	}
}
