// Package records implements CRUD over the five record collections with a
// uniform ownership rule: any read or write that is not scoped to the owner
// at the query level re-checks ownership before returning or mutating.
package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// Repo defines read operations needed by the service.
type Repo interface {
	IncomesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Income, error)
	IncomeByID(ctx context.Context, id uuid.UUID) (fin.Income, error)
	ExpensesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error)
	ExpenseByID(ctx context.Context, id uuid.UUID) (fin.Expense, error)
	BorrowedByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error)
	BorrowedByID(ctx context.Context, id uuid.UUID) (fin.Borrowed, error)
	LoansByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error)
	LoanByID(ctx context.Context, id uuid.UUID) (fin.Loan, error)
	RepaymentByID(ctx context.Context, id uuid.UUID) (fin.Repayment, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateIncome(ctx context.Context, in fin.Income) (fin.Income, error)
	UpdateIncome(ctx context.Context, in fin.Income) (fin.Income, error)
	DeleteIncome(ctx context.Context, id uuid.UUID) error
	CreateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error)
	UpdateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	CreateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error)
	UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error)
	DeleteBorrowed(ctx context.Context, id uuid.UUID) error
	CreateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error)
	UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error)
	DeleteLoan(ctx context.Context, id uuid.UUID) error
	DeleteRepayment(ctx context.Context, id uuid.UUID) error
}

// Service exposes record CRUD and unified-ledger deletion.
type Service interface {
	CreateIncome(ctx context.Context, in fin.Income) (fin.Income, error)
	ListIncome(ctx context.Context, userID uuid.UUID) ([]fin.Income, error)
	GetIncome(ctx context.Context, userID, id uuid.UUID) (fin.Income, error)
	UpdateIncome(ctx context.Context, in fin.Income) (fin.Income, error)
	DeleteIncome(ctx context.Context, userID, id uuid.UUID) error

	CreateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error)
	ListExpense(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error)
	GetExpense(ctx context.Context, userID, id uuid.UUID) (fin.Expense, error)
	UpdateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error)
	DeleteExpense(ctx context.Context, userID, id uuid.UUID) error

	CreateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error)
	ListBorrowed(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error)
	GetBorrowed(ctx context.Context, userID, id uuid.UUID) (fin.Borrowed, error)
	UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error)
	DeleteBorrowed(ctx context.Context, userID, id uuid.UUID) error

	CreateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error)
	ListLoans(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error)
	GetLoan(ctx context.Context, userID, id uuid.UUID) (fin.Loan, error)
	UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error)
	DeleteLoan(ctx context.Context, userID, id uuid.UUID) error

	// DeleteTransaction removes a record of any kind from the unified view
	// after re-verifying ownership against the underlying collection.
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID, kind fin.Kind) error
}

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the records service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func requireField(name, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required: %w", name, errs.ErrInvalid)
	}
	return nil
}

func requirePositive(name string, v interface{ MinorUnits() (int64, bool) }) error {
	units, _ := v.MinorUnits()
	if units <= 0 {
		return fmt.Errorf("%s must be greater than zero: %w", name, errs.ErrInvalidAmount)
	}
	return nil
}

// --- Income ---

func (s *service) validateIncome(in fin.Income) error {
	if in.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required: %w", errs.ErrInvalid)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("date is required: %w", errs.ErrInvalid)
	}
	if err := requireField("source", in.Source); err != nil {
		return err
	}
	return requirePositive("amount", in.Amount)
}

func (s *service) CreateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	if err := s.validateIncome(in); err != nil {
		return fin.Income{}, err
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	return s.writer.CreateIncome(ctx, in)
}

func (s *service) ListIncome(ctx context.Context, userID uuid.UUID) ([]fin.Income, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.IncomesByUserID(ctx, userID)
}

func (s *service) GetIncome(ctx context.Context, userID, id uuid.UUID) (fin.Income, error) {
	stored, err := s.repo.IncomeByID(ctx, id)
	if err != nil {
		return fin.Income{}, err
	}
	if stored.UserID != userID {
		return fin.Income{}, errs.ErrForbidden
	}
	return stored, nil
}

func (s *service) UpdateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	stored, err := s.GetIncome(ctx, in.UserID, in.ID)
	if err != nil {
		return fin.Income{}, err
	}
	if err := s.validateIncome(in); err != nil {
		return fin.Income{}, err
	}
	stored.Date = in.Date
	stored.Source = in.Source
	stored.Amount = in.Amount
	stored.Notes = in.Notes
	return s.writer.UpdateIncome(ctx, stored)
}

func (s *service) DeleteIncome(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetIncome(ctx, userID, id); err != nil {
		return err
	}
	return s.writer.DeleteIncome(ctx, id)
}

// --- Expense ---

func (s *service) validateExpense(e fin.Expense) error {
	if e.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required: %w", errs.ErrInvalid)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required: %w", errs.ErrInvalid)
	}
	if err := requireField("category", e.Category); err != nil {
		return err
	}
	if err := requireField("payment_method", e.PaymentMethod); err != nil {
		return err
	}
	return requirePositive("amount", e.Amount)
}

func (s *service) CreateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error) {
	if err := s.validateExpense(e); err != nil {
		return fin.Expense{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return s.writer.CreateExpense(ctx, e)
}

func (s *service) ListExpense(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ExpensesByUserID(ctx, userID)
}

func (s *service) GetExpense(ctx context.Context, userID, id uuid.UUID) (fin.Expense, error) {
	stored, err := s.repo.ExpenseByID(ctx, id)
	if err != nil {
		return fin.Expense{}, err
	}
	if stored.UserID != userID {
		return fin.Expense{}, errs.ErrForbidden
	}
	return stored, nil
}

func (s *service) UpdateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error) {
	stored, err := s.GetExpense(ctx, e.UserID, e.ID)
	if err != nil {
		return fin.Expense{}, err
	}
	if err := s.validateExpense(e); err != nil {
		return fin.Expense{}, err
	}
	stored.Date = e.Date
	stored.Category = e.Category
	stored.Amount = e.Amount
	stored.PaymentMethod = e.PaymentMethod
	stored.Notes = e.Notes
	return s.writer.UpdateExpense(ctx, stored)
}

func (s *service) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetExpense(ctx, userID, id); err != nil {
		return err
	}
	return s.writer.DeleteExpense(ctx, id)
}

// --- Borrowed ---

func (s *service) validateBorrowed(b fin.Borrowed) error {
	if b.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required: %w", errs.ErrInvalid)
	}
	if b.Date.IsZero() {
		return fmt.Errorf("date is required: %w", errs.ErrInvalid)
	}
	if err := requireField("person_name", b.PersonName); err != nil {
		return err
	}
	return requirePositive("amount", b.Amount)
}

func (s *service) CreateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	if err := s.validateBorrowed(b); err != nil {
		return fin.Borrowed{}, err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return s.writer.CreateBorrowed(ctx, b)
}

func (s *service) ListBorrowed(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.BorrowedByUserID(ctx, userID)
}

func (s *service) GetBorrowed(ctx context.Context, userID, id uuid.UUID) (fin.Borrowed, error) {
	stored, err := s.repo.BorrowedByID(ctx, id)
	if err != nil {
		return fin.Borrowed{}, err
	}
	if stored.UserID != userID {
		return fin.Borrowed{}, errs.ErrForbidden
	}
	return stored, nil
}

// UpdateBorrowed replaces the user-entered fields; RepaidAmount and Status
// stay reconciler-owned and are carried over from the stored record.
func (s *service) UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	stored, err := s.GetBorrowed(ctx, b.UserID, b.ID)
	if err != nil {
		return fin.Borrowed{}, err
	}
	if err := s.validateBorrowed(b); err != nil {
		return fin.Borrowed{}, err
	}
	stored.Date = b.Date
	stored.PersonName = b.PersonName
	stored.Amount = b.Amount
	stored.DueDate = b.DueDate
	stored.Notes = b.Notes
	return s.writer.UpdateBorrowed(ctx, stored)
}

func (s *service) DeleteBorrowed(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetBorrowed(ctx, userID, id); err != nil {
		return err
	}
	return s.writer.DeleteBorrowed(ctx, id)
}

// --- Loan ---

func (s *service) validateLoan(l fin.Loan) error {
	if l.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required: %w", errs.ErrInvalid)
	}
	if l.Date.IsZero() {
		return fmt.Errorf("date is required: %w", errs.ErrInvalid)
	}
	if err := requireField("provider", l.Provider); err != nil {
		return err
	}
	if err := requireField("tenure", l.Tenure); err != nil {
		return err
	}
	if err := requirePositive("amount", l.Amount); err != nil {
		return err
	}
	return requirePositive("emi", l.EMI)
}

func (s *service) CreateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error) {
	if err := s.validateLoan(l); err != nil {
		return fin.Loan{}, err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return s.writer.CreateLoan(ctx, l)
}

func (s *service) ListLoans(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.LoansByUserID(ctx, userID)
}

func (s *service) GetLoan(ctx context.Context, userID, id uuid.UUID) (fin.Loan, error) {
	stored, err := s.repo.LoanByID(ctx, id)
	if err != nil {
		return fin.Loan{}, err
	}
	if stored.UserID != userID {
		return fin.Loan{}, errs.ErrForbidden
	}
	return stored, nil
}

// UpdateLoan replaces the user-entered fields; RepaidAmount and Status stay
// reconciler-owned and are carried over from the stored record.
func (s *service) UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error) {
	stored, err := s.GetLoan(ctx, l.UserID, l.ID)
	if err != nil {
		return fin.Loan{}, err
	}
	if err := s.validateLoan(l); err != nil {
		return fin.Loan{}, err
	}
	stored.Date = l.Date
	stored.Provider = l.Provider
	stored.Amount = l.Amount
	stored.EMI = l.EMI
	stored.Tenure = l.Tenure
	stored.Notes = l.Notes
	return s.writer.UpdateLoan(ctx, stored)
}

func (s *service) DeleteLoan(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetLoan(ctx, userID, id); err != nil {
		return err
	}
	return s.writer.DeleteLoan(ctx, id)
}

// --- Unified ledger ---

// DeleteTransaction deletes a record by (id, kind). Deleting a repayment
// does not roll the repaid amount back on its source record; the stored
// status and the replayed history may diverge afterwards.
func (s *service) DeleteTransaction(ctx context.Context, userID, id uuid.UUID, kind fin.Kind) error {
	switch kind {
	case fin.KindIncome:
		return s.DeleteIncome(ctx, userID, id)
	case fin.KindExpense:
		return s.DeleteExpense(ctx, userID, id)
	case fin.KindBorrowed:
		return s.DeleteBorrowed(ctx, userID, id)
	case fin.KindLoan:
		return s.DeleteLoan(ctx, userID, id)
	case fin.KindRepayment:
		stored, err := s.repo.RepaymentByID(ctx, id)
		if err != nil {
			return err
		}
		if stored.UserID != userID {
			return errs.ErrForbidden
		}
		return s.writer.DeleteRepayment(ctx, id)
	default:
		return fmt.Errorf("unknown record kind %q: %w", kind, errs.ErrInvalid)
	}
}
