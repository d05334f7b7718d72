package sqlite

import (
	"context"
	"errors"
	"path/filepath"
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

func openStore(t *testing.T) (*Store, uuid.UUID) {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	user := fin.User{ID: uuid.New()}
	if err := s.SeedUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return s, user.ID
}

func TestIncomeRoundtrip(t *testing.T) {
	s, userID := openStore(t)
	ctx := context.Background()

	in := fin.Income{ID: uuid.New(), UserID: userID, Date: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), Source: "Salary", Amount: amt(t, 50000), Notes: "may"}
	if _, err := s.CreateIncome(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.IncomeByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Source != in.Source || got.Notes != in.Notes || !got.Date.Equal(in.Date) {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if units, _ := got.Amount.MinorUnits(); units != 50000 {
		t.Fatalf("amount mismatch: %d", units)
	}
	if got.Amount.Curr().Code() != "INR" {
		t.Fatalf("currency mismatch: %s", got.Amount.Curr().Code())
	}

	in.Source = "Bonus"
	if _, err := s.UpdateIncome(ctx, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.IncomeByID(ctx, in.ID)
	if got.Source != "Bonus" {
		t.Fatalf("update not persisted: %q", got.Source)
	}

	if err := s.DeleteIncome(ctx, in.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.IncomeByID(ctx, in.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBorrowedRoundtripAndFirstPending(t *testing.T) {
	s, userID := openStore(t)
	ctx := context.Background()

	due := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	first := fin.NewBorrowed(userID, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "Asha", amt(t, 1000), &due, "")
	second := fin.NewBorrowed(userID, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), "Asha", amt(t, 2000), nil, "")
	if _, err := s.CreateBorrowed(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := s.CreateBorrowed(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, found, err := s.FirstPendingBorrowed(ctx, userID, "Asha")
	if err != nil || !found {
		t.Fatalf("first pending: found=%v err=%v", found, err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected earliest-created pending record")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date mismatch: %v", got.DueDate)
	}

	got.Status = fin.StatusPaid
	got.RepaidAmount = amt(t, 1000)
	if _, err := s.UpdateBorrowed(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	next, found, _ := s.FirstPendingBorrowed(ctx, userID, "Asha")
	if !found || next.ID != second.ID {
		t.Fatalf("paid record must be skipped")
	}

	list, err := s.BorrowedByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("list not date-descending: %+v", list)
	}
}

func TestRepaymentRelatedID(t *testing.T) {
	s, userID := openStore(t)
	ctx := context.Background()

	related := uuid.New()
	r := fin.Repayment{
		ID: uuid.New(), UserID: userID, Date: time.Now().UTC(),
		Type: fin.RepaymentTypeLoan, PaidTo: "HomeBank",
		Amount: amt(t, 500), Mode: "NetBanking", RelatedID: related,
	}
	if _, err := s.CreateRepayment(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.RepaymentByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RelatedID != related || got.Type != fin.RepaymentTypeLoan {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	// Legacy rows without a link come back with a nil RelatedID.
	r2 := fin.Repayment{ID: uuid.New(), UserID: userID, Date: time.Now().UTC(), Type: fin.RepaymentTypeBorrowed, PaidTo: "Asha", Amount: amt(t, 100)}
	if _, err := s.CreateRepayment(ctx, r2); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ = s.RepaymentByID(ctx, r2.ID)
	if got.RelatedID != uuid.Nil {
		t.Fatalf("expected nil related id, got %s", got.RelatedID)
	}
}

func TestReady(t *testing.T) {
	s, _ := openStore(t)
	if err := s.Ready(context.Background()); err != nil {
		t.Fatalf("ready: %v", err)
	}
}
