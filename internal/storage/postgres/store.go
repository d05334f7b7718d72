package postgres

// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the HTTP/API and
// services.
//
// It is intentionally small and explicit. Migrations that create the
// expected schema live under db/migrations. This package focuses on mapping
// between the domain entities and SQL rows and running the necessary
// statements.

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// SeedUser inserts a user for quick local testing. Idempotent per ID.
func (s *Store) SeedUser(ctx context.Context, u fin.User) error {
	_, err := s.pool.Exec(ctx, `insert into users (id, email) values ($1, $2) on conflict (id) do nothing`, u.ID, u.Email)
	return err
}

func amount(currency string, minor int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(currency, minor)
}

// --- Income ---

func (s *Store) CreateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	units, _ := in.Amount.MinorUnits()
	_, err := s.pool.Exec(ctx, `
		insert into incomes (id, user_id, date, source, amount_minor, currency, notes)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, in.ID, in.UserID, in.Date, in.Source, units, in.Amount.Curr().Code(), in.Notes)
	if err != nil {
		return fin.Income{}, err
	}
	return in, nil
}

func scanIncome(row pgx.Row) (fin.Income, error) {
	var (
		v        fin.Income
		minor    int64
		currency string
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Date, &v.Source, &minor, &currency, &v.Notes); err != nil {
		return fin.Income{}, err
	}
	var err error
	v.Amount, err = amount(currency, minor)
	return v, err
}

func (s *Store) IncomesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Income, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, date, source, amount_minor, currency, notes
		from incomes where user_id = $1 order by date desc, seq asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fin.Income, 0)
	for rows.Next() {
		v, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) IncomeByID(ctx context.Context, id uuid.UUID) (fin.Income, error) {
	v, err := scanIncome(s.pool.QueryRow(ctx, `
		select id, user_id, date, source, amount_minor, currency, notes from incomes where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Income{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	units, _ := in.Amount.MinorUnits()
	tag, err := s.pool.Exec(ctx, `
		update incomes set date=$2, source=$3, amount_minor=$4, currency=$5, notes=$6 where id=$1
	`, in.ID, in.Date, in.Source, units, in.Amount.Curr().Code(), in.Notes)
	if err != nil {
		return fin.Income{}, err
	}
	if tag.RowsAffected() == 0 {
		return fin.Income{}, errs.ErrNotFound
	}
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "incomes", id)
}

// --- Expense ---

func (s *Store) CreateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error) {
	units, _ := e.Amount.MinorUnits()
	_, err := s.pool.Exec(ctx, `
		insert into expenses (id, user_id, date, category, amount_minor, currency, payment_method, notes)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.UserID, e.Date, e.Category, units, e.Amount.Curr().Code(), e.PaymentMethod, e.Notes)
	if err != nil {
		return fin.Expense{}, err
	}
	return e, nil
}

func scanExpense(row pgx.Row) (fin.Expense, error) {
	var (
		v        fin.Expense
		minor    int64
		currency string
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Date, &v.Category, &minor, &currency, &v.PaymentMethod, &v.Notes); err != nil {
		return fin.Expense{}, err
	}
	var err error
	v.Amount, err = amount(currency, minor)
	return v, err
}

func (s *Store) ExpensesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, date, category, amount_minor, currency, payment_method, notes
		from expenses where user_id = $1 order by date desc, seq asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fin.Expense, 0)
	for rows.Next() {
		v, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ExpenseByID(ctx context.Context, id uuid.UUID) (fin.Expense, error) {
	v, err := scanExpense(s.pool.QueryRow(ctx, `
		select id, user_id, date, category, amount_minor, currency, payment_method, notes from expenses where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Expense{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error) {
	units, _ := e.Amount.MinorUnits()
	tag, err := s.pool.Exec(ctx, `
		update expenses set date=$2, category=$3, amount_minor=$4, currency=$5, payment_method=$6, notes=$7 where id=$1
	`, e.ID, e.Date, e.Category, units, e.Amount.Curr().Code(), e.PaymentMethod, e.Notes)
	if err != nil {
		return fin.Expense{}, err
	}
	if tag.RowsAffected() == 0 {
		return fin.Expense{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "expenses", id)
}

// --- Borrowed ---

const borrowedCols = `id, user_id, date, person_name, amount_minor, currency, due_date, notes, repaid_minor, status`

func (s *Store) CreateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	units, _ := b.Amount.MinorUnits()
	repaid, _ := b.RepaidAmount.MinorUnits()
	_, err := s.pool.Exec(ctx, `
		insert into borrowed (`+borrowedCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, b.ID, b.UserID, b.Date, b.PersonName, units, b.Amount.Curr().Code(), b.DueDate, b.Notes, repaid, b.Status)
	if err != nil {
		return fin.Borrowed{}, err
	}
	return b, nil
}

func scanBorrowed(row pgx.Row) (fin.Borrowed, error) {
	var (
		v             fin.Borrowed
		minor, repaid int64
		currency      string
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Date, &v.PersonName, &minor, &currency, &v.DueDate, &v.Notes, &repaid, &v.Status); err != nil {
		return fin.Borrowed{}, err
	}
	var err error
	if v.Amount, err = amount(currency, minor); err != nil {
		return fin.Borrowed{}, err
	}
	v.RepaidAmount, err = amount(currency, repaid)
	return v, err
}

func (s *Store) BorrowedByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error) {
	rows, err := s.pool.Query(ctx, `
		select `+borrowedCols+` from borrowed where user_id = $1 order by date desc, seq asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fin.Borrowed, 0)
	for rows.Next() {
		v, err := scanBorrowed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) BorrowedByID(ctx context.Context, id uuid.UUID) (fin.Borrowed, error) {
	v, err := scanBorrowed(s.pool.QueryRow(ctx, `
		select `+borrowedCols+` from borrowed where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Borrowed{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	units, _ := b.Amount.MinorUnits()
	repaid, _ := b.RepaidAmount.MinorUnits()
	tag, err := s.pool.Exec(ctx, `
		update borrowed set date=$2, person_name=$3, amount_minor=$4, currency=$5, due_date=$6, notes=$7, repaid_minor=$8, status=$9 where id=$1
	`, b.ID, b.Date, b.PersonName, units, b.Amount.Curr().Code(), b.DueDate, b.Notes, repaid, b.Status)
	if err != nil {
		return fin.Borrowed{}, err
	}
	if tag.RowsAffected() == 0 {
		return fin.Borrowed{}, errs.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteBorrowed(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "borrowed", id)
}

// FirstPendingBorrowed picks the oldest-created pending record matching the
// person name.
func (s *Store) FirstPendingBorrowed(ctx context.Context, userID uuid.UUID, personName string) (fin.Borrowed, bool, error) {
	v, err := scanBorrowed(s.pool.QueryRow(ctx, `
		select `+borrowedCols+` from borrowed
		where user_id = $1 and person_name = $2 and status = $3
		order by seq asc limit 1
	`, userID, personName, fin.StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Borrowed{}, false, nil
	}
	if err != nil {
		return fin.Borrowed{}, false, err
	}
	return v, true, nil
}

// --- Loan ---

const loanCols = `id, user_id, date, provider, amount_minor, emi_minor, currency, tenure, notes, repaid_minor, status`

func (s *Store) CreateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error) {
	units, _ := l.Amount.MinorUnits()
	emi, _ := l.EMI.MinorUnits()
	repaid, _ := l.RepaidAmount.MinorUnits()
	_, err := s.pool.Exec(ctx, `
		insert into loans (`+loanCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, l.ID, l.UserID, l.Date, l.Provider, units, emi, l.Amount.Curr().Code(), l.Tenure, l.Notes, repaid, l.Status)
	if err != nil {
		return fin.Loan{}, err
	}
	return l, nil
}

func scanLoan(row pgx.Row) (fin.Loan, error) {
	var (
		v                  fin.Loan
		minor, emi, repaid int64
		currency           string
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Date, &v.Provider, &minor, &emi, &currency, &v.Tenure, &v.Notes, &repaid, &v.Status); err != nil {
		return fin.Loan{}, err
	}
	var err error
	if v.Amount, err = amount(currency, minor); err != nil {
		return fin.Loan{}, err
	}
	if v.EMI, err = amount(currency, emi); err != nil {
		return fin.Loan{}, err
	}
	v.RepaidAmount, err = amount(currency, repaid)
	return v, err
}

func (s *Store) LoansByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error) {
	rows, err := s.pool.Query(ctx, `
		select `+loanCols+` from loans where user_id = $1 order by date desc, seq asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fin.Loan, 0)
	for rows.Next() {
		v, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) LoanByID(ctx context.Context, id uuid.UUID) (fin.Loan, error) {
	v, err := scanLoan(s.pool.QueryRow(ctx, `
		select `+loanCols+` from loans where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Loan{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error) {
	units, _ := l.Amount.MinorUnits()
	emi, _ := l.EMI.MinorUnits()
	repaid, _ := l.RepaidAmount.MinorUnits()
	tag, err := s.pool.Exec(ctx, `
		update loans set date=$2, provider=$3, amount_minor=$4, emi_minor=$5, currency=$6, tenure=$7, notes=$8, repaid_minor=$9, status=$10 where id=$1
	`, l.ID, l.Date, l.Provider, units, emi, l.Amount.Curr().Code(), l.Tenure, l.Notes, repaid, l.Status)
	if err != nil {
		return fin.Loan{}, err
	}
	if tag.RowsAffected() == 0 {
		return fin.Loan{}, errs.ErrNotFound
	}
	return l, nil
}

func (s *Store) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "loans", id)
}

// FirstPendingLoan picks the oldest-created pending record matching the
// provider name.
func (s *Store) FirstPendingLoan(ctx context.Context, userID uuid.UUID, provider string) (fin.Loan, bool, error) {
	v, err := scanLoan(s.pool.QueryRow(ctx, `
		select `+loanCols+` from loans
		where user_id = $1 and provider = $2 and status = $3
		order by seq asc limit 1
	`, userID, provider, fin.StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Loan{}, false, nil
	}
	if err != nil {
		return fin.Loan{}, false, err
	}
	return v, true, nil
}

// --- Repayment ---

const repaymentCols = `id, user_id, date, repayment_type, paid_to, amount_minor, currency, mode, notes, related_id`

func (s *Store) CreateRepayment(ctx context.Context, r fin.Repayment) (fin.Repayment, error) {
	units, _ := r.Amount.MinorUnits()
	var related *uuid.UUID
	if r.RelatedID != uuid.Nil {
		related = &r.RelatedID
	}
	_, err := s.pool.Exec(ctx, `
		insert into repayments (`+repaymentCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, r.ID, r.UserID, r.Date, r.Type, r.PaidTo, units, r.Amount.Curr().Code(), r.Mode, r.Notes, related)
	if err != nil {
		return fin.Repayment{}, err
	}
	return r, nil
}

func scanRepayment(row pgx.Row) (fin.Repayment, error) {
	var (
		v        fin.Repayment
		minor    int64
		currency string
		related  *uuid.UUID
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Date, &v.Type, &v.PaidTo, &minor, &currency, &v.Mode, &v.Notes, &related); err != nil {
		return fin.Repayment{}, err
	}
	if related != nil {
		v.RelatedID = *related
	}
	var err error
	v.Amount, err = amount(currency, minor)
	return v, err
}

func (s *Store) RepaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error) {
	rows, err := s.pool.Query(ctx, `
		select `+repaymentCols+` from repayments where user_id = $1 order by date desc, seq asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fin.Repayment, 0)
	for rows.Next() {
		v, err := scanRepayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) RepaymentByID(ctx context.Context, id uuid.UUID) (fin.Repayment, error) {
	v, err := scanRepayment(s.pool.QueryRow(ctx, `
		select `+repaymentCols+` from repayments where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fin.Repayment{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) DeleteRepayment(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "repayments", id)
}

// deleteByID removes one row from the named table. Table names are fixed
// constants within this package, never user input.
func (s *Store) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `delete from `+table+` where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
