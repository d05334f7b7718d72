// Package sqlite implements the repository and writer interfaces on a local
// SQLite file. Dates are stored as RFC 3339 text, amounts as integer minor
// units alongside their currency code. List queries order by date descending
// with rowid as the tiebreaker, so records created later sort after earlier
// ones on the same day; pending-record matching picks the oldest row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	_ "modernc.org/sqlite"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// Store is a SQLite-backed implementation of the service repositories.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies
// migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Ready reports whether the database is reachable.
func (s *Store) Ready(ctx context.Context) error { return s.db.PingContext(ctx) }

// SeedUser registers a user for local dev.
func (s *Store) SeedUser(ctx context.Context, u fin.User) error {
	var email any
	if u.Email != nil {
		email = *u.Email
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO users (id, email) VALUES (?, ?)`, u.ID.String(), email)
	return err
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func decodeAmount(currency string, minor int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(currency, minor)
}

// --- Income ---

func (s *Store) CreateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	units, _ := in.Amount.MinorUnits()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, date, source, amount_minor, currency, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID.String(), in.UserID.String(), encodeTime(in.Date), in.Source, units, in.Amount.Curr().Code(), in.Notes)
	if err != nil {
		return fin.Income{}, fmt.Errorf("insert income: %w", err)
	}
	return in, nil
}

func scanIncome(sc interface{ Scan(...any) error }) (fin.Income, error) {
	var (
		v              fin.Income
		id, userID     string
		date, currency string
		minor          int64
	)
	if err := sc.Scan(&id, &userID, &date, &v.Source, &minor, &currency, &v.Notes); err != nil {
		return fin.Income{}, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return fin.Income{}, err
	}
	if v.UserID, err = uuid.Parse(userID); err != nil {
		return fin.Income{}, err
	}
	if v.Date, err = decodeTime(date); err != nil {
		return fin.Income{}, err
	}
	if v.Amount, err = decodeAmount(currency, minor); err != nil {
		return fin.Income{}, err
	}
	return v, nil
}

func (s *Store) IncomesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, source, amount_minor, currency, notes FROM incomes WHERE user_id = ? ORDER BY date DESC, rowid ASC`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
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
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, source, amount_minor, currency, notes FROM incomes WHERE id = ?`, id.String())
	v, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fin.Income{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateIncome(ctx context.Context, in fin.Income) (fin.Income, error) {
	units, _ := in.Amount.MinorUnits()
	res, err := s.db.ExecContext(ctx,
		`UPDATE incomes SET date = ?, source = ?, amount_minor = ?, currency = ?, notes = ? WHERE id = ?`,
		encodeTime(in.Date), in.Source, units, in.Amount.Curr().Code(), in.Notes, in.ID.String())
	if err != nil {
		return fin.Income{}, fmt.Errorf("update income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, date, category, amount_minor, currency, payment_method, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID.String(), encodeTime(e.Date), e.Category, units, e.Amount.Curr().Code(), e.PaymentMethod, e.Notes)
	if err != nil {
		return fin.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func scanExpense(sc interface{ Scan(...any) error }) (fin.Expense, error) {
	var (
		v              fin.Expense
		id, userID     string
		date, currency string
		minor          int64
	)
	if err := sc.Scan(&id, &userID, &date, &v.Category, &minor, &currency, &v.PaymentMethod, &v.Notes); err != nil {
		return fin.Expense{}, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return fin.Expense{}, err
	}
	if v.UserID, err = uuid.Parse(userID); err != nil {
		return fin.Expense{}, err
	}
	if v.Date, err = decodeTime(date); err != nil {
		return fin.Expense{}, err
	}
	if v.Amount, err = decodeAmount(currency, minor); err != nil {
		return fin.Expense{}, err
	}
	return v, nil
}

func (s *Store) ExpensesByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, category, amount_minor, currency, payment_method, notes FROM expenses WHERE user_id = ? ORDER BY date DESC, rowid ASC`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
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
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, category, amount_minor, currency, payment_method, notes FROM expenses WHERE id = ?`, id.String())
	v, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fin.Expense{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateExpense(ctx context.Context, e fin.Expense) (fin.Expense, error) {
	units, _ := e.Amount.MinorUnits()
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, category = ?, amount_minor = ?, currency = ?, payment_method = ?, notes = ? WHERE id = ?`,
		encodeTime(e.Date), e.Category, units, e.Amount.Curr().Code(), e.PaymentMethod, e.Notes, e.ID.String())
	if err != nil {
		return fin.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fin.Expense{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "expenses", id)
}

// --- Borrowed ---

func (s *Store) CreateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	units, _ := b.Amount.MinorUnits()
	repaid, _ := b.RepaidAmount.MinorUnits()
	var due any
	if b.DueDate != nil {
		due = encodeTime(*b.DueDate)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO borrowed (id, user_id, date, person_name, amount_minor, currency, due_date, notes, repaid_minor, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID.String(), encodeTime(b.Date), b.PersonName, units, b.Amount.Curr().Code(), due, b.Notes, repaid, string(b.Status))
	if err != nil {
		return fin.Borrowed{}, fmt.Errorf("insert borrowed: %w", err)
	}
	return b, nil
}

func scanBorrowed(sc interface{ Scan(...any) error }) (fin.Borrowed, error) {
	var (
		v              fin.Borrowed
		id, userID     string
		date, currency string
		due            sql.NullString
		minor, repaid  int64
		status         string
	)
	if err := sc.Scan(&id, &userID, &date, &v.PersonName, &minor, &currency, &due, &v.Notes, &repaid, &status); err != nil {
		return fin.Borrowed{}, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return fin.Borrowed{}, err
	}
	if v.UserID, err = uuid.Parse(userID); err != nil {
		return fin.Borrowed{}, err
	}
	if v.Date, err = decodeTime(date); err != nil {
		return fin.Borrowed{}, err
	}
	if due.Valid {
		d, err := decodeTime(due.String)
		if err != nil {
			return fin.Borrowed{}, err
		}
		v.DueDate = &d
	}
	if v.Amount, err = decodeAmount(currency, minor); err != nil {
		return fin.Borrowed{}, err
	}
	if v.RepaidAmount, err = decodeAmount(currency, repaid); err != nil {
		return fin.Borrowed{}, err
	}
	v.Status = fin.Status(status)
	return v, nil
}

const borrowedCols = `id, user_id, date, person_name, amount_minor, currency, due_date, notes, repaid_minor, status`

func (s *Store) BorrowedByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Borrowed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+borrowedCols+` FROM borrowed WHERE user_id = ? ORDER BY date DESC, rowid ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list borrowed: %w", err)
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+borrowedCols+` FROM borrowed WHERE id = ?`, id.String())
	v, err := scanBorrowed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fin.Borrowed{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateBorrowed(ctx context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	units, _ := b.Amount.MinorUnits()
	repaid, _ := b.RepaidAmount.MinorUnits()
	var due any
	if b.DueDate != nil {
		due = encodeTime(*b.DueDate)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE borrowed SET date = ?, person_name = ?, amount_minor = ?, currency = ?, due_date = ?, notes = ?, repaid_minor = ?, status = ? WHERE id = ?`,
		encodeTime(b.Date), b.PersonName, units, b.Amount.Curr().Code(), due, b.Notes, repaid, string(b.Status), b.ID.String())
	if err != nil {
		return fin.Borrowed{}, fmt.Errorf("update borrowed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+borrowedCols+` FROM borrowed WHERE user_id = ? AND person_name = ? AND status = ? ORDER BY rowid ASC LIMIT 1`,
		userID.String(), personName, string(fin.StatusPending))
	v, err := scanBorrowed(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loans (`+loanCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.UserID.String(), encodeTime(l.Date), l.Provider, units, emi, l.Amount.Curr().Code(), l.Tenure, l.Notes, repaid, string(l.Status))
	if err != nil {
		return fin.Loan{}, fmt.Errorf("insert loan: %w", err)
	}
	return l, nil
}

func scanLoan(sc interface{ Scan(...any) error }) (fin.Loan, error) {
	var (
		v                  fin.Loan
		id, userID         string
		date, currency     string
		minor, emi, repaid int64
		status             string
	)
	if err := sc.Scan(&id, &userID, &date, &v.Provider, &minor, &emi, &currency, &v.Tenure, &v.Notes, &repaid, &status); err != nil {
		return fin.Loan{}, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return fin.Loan{}, err
	}
	if v.UserID, err = uuid.Parse(userID); err != nil {
		return fin.Loan{}, err
	}
	if v.Date, err = decodeTime(date); err != nil {
		return fin.Loan{}, err
	}
	if v.Amount, err = decodeAmount(currency, minor); err != nil {
		return fin.Loan{}, err
	}
	if v.EMI, err = decodeAmount(currency, emi); err != nil {
		return fin.Loan{}, err
	}
	if v.RepaidAmount, err = decodeAmount(currency, repaid); err != nil {
		return fin.Loan{}, err
	}
	v.Status = fin.Status(status)
	return v, nil
}

func (s *Store) LoansByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanCols+` FROM loans WHERE user_id = ? ORDER BY date DESC, rowid ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+loanCols+` FROM loans WHERE id = ?`, id.String())
	v, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fin.Loan{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateLoan(ctx context.Context, l fin.Loan) (fin.Loan, error) {
	units, _ := l.Amount.MinorUnits()
	emi, _ := l.EMI.MinorUnits()
	repaid, _ := l.RepaidAmount.MinorUnits()
	res, err := s.db.ExecContext(ctx,
		`UPDATE loans SET date = ?, provider = ?, amount_minor = ?, emi_minor = ?, currency = ?, tenure = ?, notes = ?, repaid_minor = ?, status = ? WHERE id = ?`,
		encodeTime(l.Date), l.Provider, units, emi, l.Amount.Curr().Code(), l.Tenure, l.Notes, repaid, string(l.Status), l.ID.String())
	if err != nil {
		return fin.Loan{}, fmt.Errorf("update loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanCols+` FROM loans WHERE user_id = ? AND provider = ? AND status = ? ORDER BY rowid ASC LIMIT 1`,
		userID.String(), provider, string(fin.StatusPending))
	v, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	related := ""
	if r.RelatedID != uuid.Nil {
		related = r.RelatedID.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO repayments (`+repaymentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID.String(), encodeTime(r.Date), string(r.Type), r.PaidTo, units, r.Amount.Curr().Code(), r.Mode, r.Notes, related)
	if err != nil {
		return fin.Repayment{}, fmt.Errorf("insert repayment: %w", err)
	}
	return r, nil
}

func scanRepayment(sc interface{ Scan(...any) error }) (fin.Repayment, error) {
	var (
		v                       fin.Repayment
		id, userID              string
		date, currency, related string
		rtype                   string
		minor                   int64
	)
	if err := sc.Scan(&id, &userID, &date, &rtype, &v.PaidTo, &minor, &currency, &v.Mode, &v.Notes, &related); err != nil {
		return fin.Repayment{}, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return fin.Repayment{}, err
	}
	if v.UserID, err = uuid.Parse(userID); err != nil {
		return fin.Repayment{}, err
	}
	if v.Date, err = decodeTime(date); err != nil {
		return fin.Repayment{}, err
	}
	if v.Amount, err = decodeAmount(currency, minor); err != nil {
		return fin.Repayment{}, err
	}
	v.Type = fin.RepaymentType(rtype)
	if related != "" {
		if v.RelatedID, err = uuid.Parse(related); err != nil {
			return fin.Repayment{}, err
		}
	}
	return v, nil
}

func (s *Store) RepaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]fin.Repayment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+repaymentCols+` FROM repayments WHERE user_id = ? ORDER BY date DESC, rowid ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+repaymentCols+` FROM repayments WHERE id = ?`, id.String())
	v, err := scanRepayment(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
