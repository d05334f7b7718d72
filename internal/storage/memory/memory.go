package memory

// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing
// us to plug in a real DB later.
import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/errs"
	"fintrack/internal/fin"
)

// Store is an in-memory implementation of the repository+writer interfaces
// used by the services. It is guarded by an RWMutex for concurrent
// reads/writes. A creation sequence number per record keeps list order
// stable when dates tie and makes "first pending match" deterministic
// (creation order, matching the original store behaviour).
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]struct{}
	incomes    map[uuid.UUID]fin.Income
	expenses   map[uuid.UUID]fin.Expense
	borrowed   map[uuid.UUID]fin.Borrowed
	loans      map[uuid.UUID]fin.Loan
	repayments map[uuid.UUID]fin.Repayment
	seqByID    map[uuid.UUID]uint64
	seq        uint64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]struct{}),
		incomes:    make(map[uuid.UUID]fin.Income),
		expenses:   make(map[uuid.UUID]fin.Expense),
		borrowed:   make(map[uuid.UUID]fin.Borrowed),
		loans:      make(map[uuid.UUID]fin.Loan),
		repayments: make(map[uuid.UUID]fin.Repayment),
		seqByID:    make(map[uuid.UUID]uint64),
	}
}

// SeedUser registers a user for local dev/tests.
func (s *Store) SeedUser(u fin.User) { s.mu.Lock(); s.users[u.ID] = struct{}{}; s.mu.Unlock() }

// Reset drops all state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.users = map[uuid.UUID]struct{}{}
	s.incomes = map[uuid.UUID]fin.Income{}
	s.expenses = map[uuid.UUID]fin.Expense{}
	s.borrowed = map[uuid.UUID]fin.Borrowed{}
	s.loans = map[uuid.UUID]fin.Loan{}
	s.repayments = map[uuid.UUID]fin.Repayment{}
	s.seqByID = map[uuid.UUID]uint64{}
	s.mu.Unlock()
}

func (s *Store) nextSeqLocked(id uuid.UUID) {
	s.seq++
	s.seqByID[id] = s.seq
}

// --- Income ---

func (s *Store) CreateIncome(_ context.Context, in fin.Income) (fin.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes[in.ID] = in
	s.nextSeqLocked(in.ID)
	return in, nil
}

// IncomesByUserID returns a user's income records sorted by date descending.
func (s *Store) IncomesByUserID(_ context.Context, userID uuid.UUID) ([]fin.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fin.Income, 0)
	for _, v := range s.incomes {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seqByID[out[i].ID] < s.seqByID[out[j].ID]
	})
	return out, nil
}

// IncomeByID returns a record by ID regardless of owner; callers must apply
// the ownership check before acting on the result.
func (s *Store) IncomeByID(_ context.Context, id uuid.UUID) (fin.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.incomes[id]
	if !ok {
		return fin.Income{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateIncome(_ context.Context, in fin.Income) (fin.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incomes[in.ID]; !ok {
		return fin.Income{}, errs.ErrNotFound
	}
	s.incomes[in.ID] = in
	return in, nil
}

func (s *Store) DeleteIncome(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incomes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.incomes, id)
	delete(s.seqByID, id)
	return nil
}

// --- Expense ---

func (s *Store) CreateExpense(_ context.Context, e fin.Expense) (fin.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	s.nextSeqLocked(e.ID)
	return e, nil
}

func (s *Store) ExpensesByUserID(_ context.Context, userID uuid.UUID) ([]fin.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fin.Expense, 0)
	for _, v := range s.expenses {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seqByID[out[i].ID] < s.seqByID[out[j].ID]
	})
	return out, nil
}

func (s *Store) ExpenseByID(_ context.Context, id uuid.UUID) (fin.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.expenses[id]
	if !ok {
		return fin.Expense{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateExpense(_ context.Context, e fin.Expense) (fin.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return fin.Expense{}, errs.ErrNotFound
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.expenses, id)
	delete(s.seqByID, id)
	return nil
}

// --- Borrowed ---

func (s *Store) CreateBorrowed(_ context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.borrowed[b.ID] = b
	s.nextSeqLocked(b.ID)
	return b, nil
}

func (s *Store) BorrowedByUserID(_ context.Context, userID uuid.UUID) ([]fin.Borrowed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fin.Borrowed, 0)
	for _, v := range s.borrowed {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seqByID[out[i].ID] < s.seqByID[out[j].ID]
	})
	return out, nil
}

func (s *Store) BorrowedByID(_ context.Context, id uuid.UUID) (fin.Borrowed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.borrowed[id]
	if !ok {
		return fin.Borrowed{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateBorrowed(_ context.Context, b fin.Borrowed) (fin.Borrowed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.borrowed[b.ID]; !ok {
		return fin.Borrowed{}, errs.ErrNotFound
	}
	s.borrowed[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBorrowed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.borrowed[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.borrowed, id)
	delete(s.seqByID, id)
	return nil
}

// FirstPendingBorrowed returns the oldest-created pending borrowed record
// matching the person name, if any.
func (s *Store) FirstPendingBorrowed(_ context.Context, userID uuid.UUID, personName string) (fin.Borrowed, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best fin.Borrowed
	found := false
	for _, v := range s.borrowed {
		if v.UserID != userID || v.PersonName != personName || v.Status != fin.StatusPending {
			continue
		}
		if !found || s.seqByID[v.ID] < s.seqByID[best.ID] {
			best = v
			found = true
		}
	}
	return best, found, nil
}

// --- Loan ---

func (s *Store) CreateLoan(_ context.Context, l fin.Loan) (fin.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[l.ID] = l
	s.nextSeqLocked(l.ID)
	return l, nil
}

func (s *Store) LoansByUserID(_ context.Context, userID uuid.UUID) ([]fin.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fin.Loan, 0)
	for _, v := range s.loans {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seqByID[out[i].ID] < s.seqByID[out[j].ID]
	})
	return out, nil
}

func (s *Store) LoanByID(_ context.Context, id uuid.UUID) (fin.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.loans[id]
	if !ok {
		return fin.Loan{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateLoan(_ context.Context, l fin.Loan) (fin.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[l.ID]; !ok {
		return fin.Loan{}, errs.ErrNotFound
	}
	s.loans[l.ID] = l
	return l, nil
}

func (s *Store) DeleteLoan(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.loans, id)
	delete(s.seqByID, id)
	return nil
}

// FirstPendingLoan returns the oldest-created pending loan record matching
// the provider name, if any.
func (s *Store) FirstPendingLoan(_ context.Context, userID uuid.UUID, provider string) (fin.Loan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best fin.Loan
	found := false
	for _, v := range s.loans {
		if v.UserID != userID || v.Provider != provider || v.Status != fin.StatusPending {
			continue
		}
		if !found || s.seqByID[v.ID] < s.seqByID[best.ID] {
			best = v
			found = true
		}
	}
	return best, found, nil
}

// --- Repayment ---

func (s *Store) CreateRepayment(_ context.Context, r fin.Repayment) (fin.Repayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repayments[r.ID] = r
	s.nextSeqLocked(r.ID)
	return r, nil
}

func (s *Store) RepaymentsByUserID(_ context.Context, userID uuid.UUID) ([]fin.Repayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fin.Repayment, 0)
	for _, v := range s.repayments {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seqByID[out[i].ID] < s.seqByID[out[j].ID]
	})
	return out, nil
}

func (s *Store) RepaymentByID(_ context.Context, id uuid.UUID) (fin.Repayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.repayments[id]
	if !ok {
		return fin.Repayment{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) DeleteRepayment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repayments[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.repayments, id)
	delete(s.seqByID, id)
	return nil
}
