// Package report computes the read-only aggregate views: the dashboard
// summary and the unified transaction ledger. Both are pure functions of
// stored data; nothing here writes.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// upcomingWindow is how far ahead the dashboard looks for due payments.
const upcomingWindow = 30 * 24 * time.Hour

// Repo defines the read operations needed by the aggregators.
type Repo interface {
	IncomesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Income, error)
	ExpensesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error)
	BorrowedByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error)
	LoansByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error)
	RepaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error)
}

// Upcoming is a due payment inside the dashboard lookahead window.
type Upcoming struct {
	Type      string
	Label     string
	DueDate   time.Time
	AmountDue money.Amount
}

// Summary is the dashboard payload. Repaid sums repayments of both types,
// and LoanOutstanding subtracts that undifferentiated total from the loan
// principal sum; the cross-category subtraction is deliberate policy.
type Summary struct {
	Income          money.Amount
	Expenses        money.Amount
	Borrowed        money.Amount
	Repaid          money.Amount
	Loans           money.Amount
	LoanOutstanding money.Amount
	NetBalance      money.Amount
	Upcoming        []Upcoming
}

// Transaction is one row of the unified ledger. Amount carries the sign
// convention: income, borrowed and loan principal are money in (positive),
// expenses and repayments are money out (negative).
type Transaction struct {
	ID           uuid.UUID
	Date         time.Time
	Type         string
	Counterparty string
	Category     string
	Mode         string
	Amount       money.Amount
	Notes        string
	Kind         fin.Kind
}

// Service exposes the aggregate views.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID) (Summary, error)
	Transactions(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
}

type service struct {
	repo Repo
	// currency used when a total has no records to take a currency from
	currency string
}

// New constructs the report service. Totals are denominated in the given
// default currency when the user has no records of a kind.
func New(repo Repo, currency string) Service { return &service{repo: repo, currency: currency} }

type snapshot struct {
	incomes    []fin.Income
	expenses   []fin.Expense
	borrowed   []fin.Borrowed
	loans      []fin.Loan
	repayments []fin.Repayment
}

// fetchAll pulls the five collections concurrently. Reads are side-effect
// free, so latest-committed consistency per collection is enough.
func (s *service) fetchAll(ctx context.Context, userID uuid.UUID) (snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { var err error; snap.incomes, err = s.repo.IncomesByUserID(ctx, userID); return err })
	g.Go(func() error { var err error; snap.expenses, err = s.repo.ExpensesByUserID(ctx, userID); return err })
	g.Go(func() error { var err error; snap.borrowed, err = s.repo.BorrowedByUserID(ctx, userID); return err })
	g.Go(func() error { var err error; snap.loans, err = s.repo.LoansByUserID(ctx, userID); return err })
	g.Go(func() error { var err error; snap.repayments, err = s.repo.RepaymentsByUserID(ctx, userID); return err })
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// Summary computes the dashboard totals and the upcoming-due list.
func (s *service) Summary(ctx context.Context, userID uuid.UUID) (Summary, error) {
	if userID == uuid.Nil {
		return Summary{}, errs.ErrInvalid
	}
	snap, err := s.fetchAll(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	var incomeMinor, expenseMinor, borrowedMinor, repaidMinor, loanMinor int64
	for _, v := range snap.incomes {
		u, _ := v.Amount.MinorUnits()
		incomeMinor += u
	}
	for _, v := range snap.expenses {
		u, _ := v.Amount.MinorUnits()
		expenseMinor += u
	}
	for _, v := range snap.borrowed {
		u, _ := v.Amount.MinorUnits()
		borrowedMinor += u
	}
	for _, v := range snap.repayments {
		u, _ := v.Amount.MinorUnits()
		repaidMinor += u
	}
	for _, v := range snap.loans {
		u, _ := v.Amount.MinorUnits()
		loanMinor += u
	}

	now := time.Now()
	horizon := now.Add(upcomingWindow)
	upcoming := make([]Upcoming, 0)
	for _, b := range snap.borrowed {
		if b.DueDate == nil {
			continue
		}
		due := *b.DueDate
		if due.Before(now) || due.After(horizon) {
			continue
		}
		upcoming = append(upcoming, Upcoming{
			Type:      "Repayment",
			Label:     "Repayment to " + b.PersonName,
			DueDate:   due,
			AmountDue: b.Outstanding(),
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].DueDate.Before(upcoming[j].DueDate) })

	return Summary{
		Income:          s.amount(incomeMinor),
		Expenses:        s.amount(expenseMinor),
		Borrowed:        s.amount(borrowedMinor),
		Repaid:          s.amount(repaidMinor),
		Loans:           s.amount(loanMinor),
		LoanOutstanding: s.amount(loanMinor - repaidMinor),
		NetBalance:      s.amount(incomeMinor - expenseMinor),
		Upcoming:        upcoming,
	}, nil
}

// Transactions merges the five collections into one signed, date-descending
// ledger. Ties keep input order (stable sort).
func (s *service) Transactions(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	snap, err := s.fetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, len(snap.incomes)+len(snap.expenses)+len(snap.borrowed)+len(snap.loans)+len(snap.repayments))
	for _, v := range snap.incomes {
		out = append(out, Transaction{
			ID: v.ID, Date: v.Date, Type: "Income", Counterparty: v.Source,
			Category: v.Source, Mode: "N/A", Amount: v.Amount, Notes: v.Notes, Kind: fin.KindIncome,
		})
	}
	for _, v := range snap.expenses {
		out = append(out, Transaction{
			ID: v.ID, Date: v.Date, Type: "Expense", Counterparty: v.Category,
			Category: v.Category, Mode: v.PaymentMethod, Amount: negate(v.Amount), Notes: v.Notes, Kind: fin.KindExpense,
		})
	}
	for _, v := range snap.borrowed {
		out = append(out, Transaction{
			ID: v.ID, Date: v.Date, Type: "Borrowed", Counterparty: v.PersonName,
			Category: "Personal", Mode: "N/A", Amount: v.Amount, Notes: v.Notes, Kind: fin.KindBorrowed,
		})
	}
	for _, v := range snap.loans {
		out = append(out, Transaction{
			ID: v.ID, Date: v.Date, Type: "Loan", Counterparty: v.Provider,
			Category: "Loan", Mode: "N/A", Amount: v.Amount, Notes: v.Notes, Kind: fin.KindLoan,
		})
	}
	for _, v := range snap.repayments {
		out = append(out, Transaction{
			ID: v.ID, Date: v.Date, Type: "Repayment", Counterparty: v.PaidTo,
			Category: string(v.Type), Mode: v.Mode, Amount: negate(v.Amount), Notes: v.Notes, Kind: fin.KindRepayment,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *service) amount(minor int64) money.Amount {
	v, err := money.NewAmountFromMinorUnits(s.currency, minor)
	if err != nil {
		v, _ = money.NewAmountFromMinorUnits("USD", minor)
	}
	return v
}

// negate flips an amount to the money-out side of the ledger.
func negate(a money.Amount) money.Amount {
	units, _ := a.MinorUnits()
	v, err := money.NewAmountFromMinorUnits(a.Curr().Code(), -units)
	if err != nil {
		return a
	}
	return v
}
