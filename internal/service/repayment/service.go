// Package repayment implements the reconciliation flow: a submitted
// repayment is applied against the matching outstanding borrowed or loan
// record, the record's repaid amount and status are recomputed, and the
// repayment itself is appended to the ledger.
package repayment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// Repo defines read operations needed by the service.
type Repo interface {
	BorrowedByID(ctx context.Context, id uuid.UUID) (fin.Borrowed, error)
	LoanByID(ctx context.Context, id uuid.UUID) (fin.Loan, error)
	FirstPendingBorrowed(ctx context.Context, userID uuid.UUID, personName string) (fin.Borrowed, bool, error)
	FirstPendingLoan(ctx context.Context, userID uuid.UUID, provider string) (fin.Loan, bool, error)
	BorrowedByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error)
	LoansByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error)
	RepaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error)
	UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error)
	CreateRepayment(ctx context.Context, r fin.Repayment) (fin.Repayment, error)
}

// SubmitInput carries a repayment submission.
type SubmitInput struct {
	UserID uuid.UUID
	Date   time.Time
	Type   fin.RepaymentType
	PaidTo string
	Amount money.Amount
	Mode   string
	Notes  string
	// RelatedID, when set, selects the exact source record instead of the
	// first pending name match. Disambiguates duplicate counterparty names.
	RelatedID uuid.UUID
}

// Summary describes the source record after a repayment was applied.
type Summary struct {
	Type   fin.RepaymentType
	Name   string
	Total  money.Amount
	Repaid money.Amount
	Status fin.Status
}

// Option is a pending record offered in the repayment dropdown.
type Option struct {
	ID      uuid.UUID
	Name    string
	Total   money.Amount
	Repaid  money.Amount
	Balance money.Amount
}

// Options groups pending records by kind.
type Options struct {
	Borrowed []Option
	Loans    []Option
}

// HistoryEntry is one repayment applied to a record, newest first.
type HistoryEntry struct {
	Date   time.Time
	Amount money.Amount
	Mode   string
	Notes  string
}

// RecordHistory is a borrowed/loan record with its repayment history
// replayed from the ledger. Paid and Remaining are derived from the
// history; Status is reported as stored on the record. The two can diverge
// if repayments were written out of band.
type RecordHistory struct {
	ID           uuid.UUID
	Name         string
	Date         time.Time
	Total        money.Amount
	Paid         money.Amount
	Remaining    money.Amount
	Status       fin.Status
	LastPaidDate *time.Time
	History      []HistoryEntry
}

// Records groups record histories by kind.
type Records struct {
	Borrowed []RecordHistory
	Loans    []RecordHistory
}

// Service exposes the reconciliation operations.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (fin.Repayment, Summary, error)
	List(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error)
	PendingOptions(ctx context.Context, userID uuid.UUID) (Options, error)
	RecordsWithHistory(ctx context.Context, userID uuid.UUID) (Records, error)
}

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the repayment service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// Submit applies a repayment against the matching pending record.
//
// The update of the source record and the insert of the repayment are two
// separate writes with no cross-record transaction; a failure between them
// leaves the repaid amount bumped without a ledger entry. Expected
// concurrency is a single household user, so the window is accepted rather
// than guarded.
func (s *service) Submit(ctx context.Context, in SubmitInput) (fin.Repayment, Summary, error) {
	var none Summary
	if in.UserID == uuid.Nil {
		return fin.Repayment{}, none, fmt.Errorf("user_id is required: %w", errs.ErrInvalid)
	}
	if units, _ := in.Amount.MinorUnits(); units <= 0 {
		return fin.Repayment{}, none, fmt.Errorf("amount must be greater than zero: %w", errs.ErrInvalidAmount)
	}
	if in.PaidTo == "" {
		return fin.Repayment{}, none, fmt.Errorf("paid_to is required: %w", errs.ErrInvalid)
	}
	if !in.Type.Valid() {
		return fin.Repayment{}, none, fmt.Errorf("repayment_type must be Borrowed or Loan: %w", errs.ErrInvalid)
	}

	var (
		relatedID uuid.UUID
		summary   Summary
	)
	switch in.Type {
	case fin.RepaymentTypeBorrowed:
		rec, err := s.resolveBorrowed(ctx, in)
		if err != nil {
			return fin.Repayment{}, none, err
		}
		newRepaid, err := rec.RepaidAmount.Add(in.Amount)
		if err != nil {
			return fin.Repayment{}, none, fmt.Errorf("currency mismatch: %w", errs.ErrInvalid)
		}
		rec.RepaidAmount = newRepaid
		rec.Status = fin.StatusFor(newRepaid, rec.Amount)
		if _, err := s.writer.UpdateBorrowed(ctx, rec); err != nil {
			return fin.Repayment{}, none, err
		}
		relatedID = rec.ID
		summary = Summary{Type: in.Type, Name: in.PaidTo, Total: rec.Amount, Repaid: newRepaid, Status: rec.Status}
	case fin.RepaymentTypeLoan:
		rec, err := s.resolveLoan(ctx, in)
		if err != nil {
			return fin.Repayment{}, none, err
		}
		newRepaid, err := rec.RepaidAmount.Add(in.Amount)
		if err != nil {
			return fin.Repayment{}, none, fmt.Errorf("currency mismatch: %w", errs.ErrInvalid)
		}
		rec.RepaidAmount = newRepaid
		rec.Status = fin.StatusFor(newRepaid, rec.Amount)
		if _, err := s.writer.UpdateLoan(ctx, rec); err != nil {
			return fin.Repayment{}, none, err
		}
		relatedID = rec.ID
		summary = Summary{Type: in.Type, Name: in.PaidTo, Total: rec.Amount, Repaid: newRepaid, Status: rec.Status}
	}

	rep := fin.Repayment{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Date:      in.Date,
		Type:      in.Type,
		PaidTo:    in.PaidTo,
		Amount:    in.Amount,
		Mode:      in.Mode,
		Notes:     in.Notes,
		RelatedID: relatedID,
	}
	saved, err := s.writer.CreateRepayment(ctx, rep)
	if err != nil {
		return fin.Repayment{}, none, err
	}
	return saved, summary, nil
}

func (s *service) resolveBorrowed(ctx context.Context, in SubmitInput) (fin.Borrowed, error) {
	if in.RelatedID != uuid.Nil {
		rec, err := s.repo.BorrowedByID(ctx, in.RelatedID)
		if err != nil {
			return fin.Borrowed{}, err
		}
		if rec.UserID != in.UserID {
			return fin.Borrowed{}, errs.ErrForbidden
		}
		if rec.Status != fin.StatusPending {
			return fin.Borrowed{}, noActiveRecord(in.Type, in.PaidTo)
		}
		return rec, nil
	}
	rec, found, err := s.repo.FirstPendingBorrowed(ctx, in.UserID, in.PaidTo)
	if err != nil {
		return fin.Borrowed{}, err
	}
	if !found {
		return fin.Borrowed{}, noActiveRecord(in.Type, in.PaidTo)
	}
	return rec, nil
}

func (s *service) resolveLoan(ctx context.Context, in SubmitInput) (fin.Loan, error) {
	if in.RelatedID != uuid.Nil {
		rec, err := s.repo.LoanByID(ctx, in.RelatedID)
		if err != nil {
			return fin.Loan{}, err
		}
		if rec.UserID != in.UserID {
			return fin.Loan{}, errs.ErrForbidden
		}
		if rec.Status != fin.StatusPending {
			return fin.Loan{}, noActiveRecord(in.Type, in.PaidTo)
		}
		return rec, nil
	}
	rec, found, err := s.repo.FirstPendingLoan(ctx, in.UserID, in.PaidTo)
	if err != nil {
		return fin.Loan{}, err
	}
	if !found {
		return fin.Loan{}, noActiveRecord(in.Type, in.PaidTo)
	}
	return rec, nil
}

func noActiveRecord(t fin.RepaymentType, paidTo string) error {
	return fmt.Errorf("no active %s record found for %s: %w", strings.ToLower(string(t)), paidTo, errs.ErrNotFound)
}

// List returns all repayments for a user, newest first.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.RepaymentsByUserID(ctx, userID)
}

// PendingOptions lists the records a repayment can currently be applied to.
// Paid records never appear here.
func (s *service) PendingOptions(ctx context.Context, userID uuid.UUID) (Options, error) {
	if userID == uuid.Nil {
		return Options{}, errs.ErrInvalid
	}
	borrowed, err := s.repo.BorrowedByUserID(ctx, userID)
	if err != nil {
		return Options{}, err
	}
	loans, err := s.repo.LoansByUserID(ctx, userID)
	if err != nil {
		return Options{}, err
	}
	out := Options{Borrowed: make([]Option, 0), Loans: make([]Option, 0)}
	for _, b := range borrowed {
		if b.Status != fin.StatusPending {
			continue
		}
		out.Borrowed = append(out.Borrowed, Option{ID: b.ID, Name: b.PersonName, Total: b.Amount, Repaid: b.RepaidAmount, Balance: b.Outstanding()})
	}
	for _, l := range loans {
		if l.Status != fin.StatusPending {
			continue
		}
		out.Loans = append(out.Loans, Option{ID: l.ID, Name: l.Provider, Total: l.Amount, Repaid: l.RepaidAmount, Balance: l.Outstanding()})
	}
	return out, nil
}

// RecordsWithHistory rebuilds per-record repayment history by replaying the
// repayment ledger. Repayments are matched to a record by (type,
// counterparty name); the stored status is reported as-is.
func (s *service) RecordsWithHistory(ctx context.Context, userID uuid.UUID) (Records, error) {
	if userID == uuid.Nil {
		return Records{}, errs.ErrInvalid
	}
	borrowed, err := s.repo.BorrowedByUserID(ctx, userID)
	if err != nil {
		return Records{}, err
	}
	loans, err := s.repo.LoansByUserID(ctx, userID)
	if err != nil {
		return Records{}, err
	}
	// Newest first from the store; history order follows.
	repayments, err := s.repo.RepaymentsByUserID(ctx, userID)
	if err != nil {
		return Records{}, err
	}

	out := Records{Borrowed: make([]RecordHistory, 0, len(borrowed)), Loans: make([]RecordHistory, 0, len(loans))}
	for _, b := range borrowed {
		out.Borrowed = append(out.Borrowed, buildHistory(b.ID, b.PersonName, b.Date, b.Amount, b.Status, fin.RepaymentTypeBorrowed, repayments))
	}
	for _, l := range loans {
		out.Loans = append(out.Loans, buildHistory(l.ID, l.Provider, l.Date, l.Amount, l.Status, fin.RepaymentTypeLoan, repayments))
	}
	return out, nil
}

func buildHistory(id uuid.UUID, name string, date time.Time, total money.Amount, status fin.Status, t fin.RepaymentType, repayments []fin.Repayment) RecordHistory {
	history := make([]HistoryEntry, 0)
	var paidMinor int64
	var lastPaid *time.Time
	for _, r := range repayments {
		if r.Type != t || r.PaidTo != name {
			continue
		}
		units, _ := r.Amount.MinorUnits()
		paidMinor += units
		if lastPaid == nil {
			d := r.Date
			lastPaid = &d
		}
		history = append(history, HistoryEntry{Date: r.Date, Amount: r.Amount, Mode: r.Mode, Notes: r.Notes})
	}
	curr := total.Curr().Code()
	paid, _ := money.NewAmountFromMinorUnits(curr, paidMinor)
	totalMinor, _ := total.MinorUnits()
	remaining, _ := money.NewAmountFromMinorUnits(curr, totalMinor-paidMinor)
	return RecordHistory{
		ID:           id,
		Name:         name,
		Date:         date,
		Total:        total,
		Paid:         paid,
		Remaining:    remaining,
		Status:       status,
		LastPaidDate: lastPaid,
		History:      history,
	}
}
