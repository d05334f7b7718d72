package fin

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
)

// Status tracks whether a borrowed or loan record still has an outstanding
// balance. A record is Paid once its repaid amount reaches the principal.
type Status string

const (
	// StatusPending marks a record with outstanding balance remaining.
	StatusPending Status = "Pending"
	// StatusPaid marks a record whose repaid amount covers the principal.
	StatusPaid Status = "Paid"
)

// RepaymentType selects which collection a repayment settles against.
type RepaymentType string

const (
	// RepaymentTypeBorrowed settles against a borrowed-money record.
	RepaymentTypeBorrowed RepaymentType = "Borrowed"
	// RepaymentTypeLoan settles against a loan record.
	RepaymentTypeLoan RepaymentType = "Loan"
)

// Valid reports whether t is one of the two known repayment types.
func (t RepaymentType) Valid() bool {
	return t == RepaymentTypeBorrowed || t == RepaymentTypeLoan
}

// Kind identifies one of the five record collections. It doubles as the
// source discriminator in the unified transaction view.
type Kind string

const (
	KindIncome    Kind = "income"
	KindExpense   Kind = "expense"
	KindBorrowed  Kind = "borrowed"
	KindLoan      Kind = "loan"
	KindRepayment Kind = "repayment"
)

// ParseKind maps a path/query token to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindIncome, KindExpense, KindBorrowed, KindLoan, KindRepayment:
		return Kind(s), true
	}
	return "", false
}

// User captures the owner of tracker data. Authentication happens upstream;
// the service only ever sees the opaque ID.
type User struct {
	ID    uuid.UUID
	Email *string
}

// Income is money received: salary, gifts, refunds.
type Income struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Date   time.Time
	Source string
	Amount money.Amount
	Notes  string
}

// Expense is money spent directly.
type Expense struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Date          time.Time
	Category      string
	Amount        money.Amount
	PaymentMethod string
	Notes         string
}

// Borrowed is money taken from a person, to be repaid. RepaidAmount and
// Status are maintained by the repayment reconciler; everything else is
// user-entered.
type Borrowed struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Date         time.Time
	PersonName   string
	Amount       money.Amount
	DueDate      *time.Time
	Notes        string
	RepaidAmount money.Amount
	Status       Status
}

// Outstanding returns principal minus repaid so far.
func (b Borrowed) Outstanding() money.Amount {
	v, err := b.Amount.Sub(b.RepaidAmount)
	if err != nil {
		return b.Amount
	}
	return v
}

// Loan is money taken from an institution with an EMI schedule.
type Loan struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Date         time.Time
	Provider     string
	Amount       money.Amount
	EMI          money.Amount
	Tenure       string
	Notes        string
	RepaidAmount money.Amount
	Status       Status
}

// Outstanding returns principal minus repaid so far.
func (l Loan) Outstanding() money.Amount {
	v, err := l.Amount.Sub(l.RepaidAmount)
	if err != nil {
		return l.Amount
	}
	return v
}

// Repayment is an immutable ledger event recording money paid back against
// a borrowed or loan record. It never mutates its source record directly;
// reconciliation at creation time does.
type Repayment struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Date   time.Time
	Type   RepaymentType
	PaidTo string
	Amount money.Amount
	Mode   string
	Notes  string
	// RelatedID links the repayment to the source record it was applied to.
	// Resolved once at creation; uuid.Nil on records predating the link.
	RelatedID uuid.UUID
}

// NewBorrowed builds a borrowed record with the reconciler-owned fields at
// their defaults: nothing repaid, status Pending.
func NewBorrowed(userID uuid.UUID, date time.Time, personName string, amount money.Amount, dueDate *time.Time, notes string) Borrowed {
	return Borrowed{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		PersonName:   personName,
		Amount:       amount,
		DueDate:      dueDate,
		Notes:        notes,
		RepaidAmount: ZeroAmount(amount.Curr().Code()),
		Status:       StatusPending,
	}
}

// NewLoan builds a loan record with the reconciler-owned fields at their
// defaults: nothing repaid, status Pending.
func NewLoan(userID uuid.UUID, date time.Time, provider string, amount, emi money.Amount, tenure, notes string) Loan {
	return Loan{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		Provider:     provider,
		Amount:       amount,
		EMI:          emi,
		Tenure:       tenure,
		Notes:        notes,
		RepaidAmount: ZeroAmount(amount.Curr().Code()),
		Status:       StatusPending,
	}
}

// ZeroAmount returns a zero value in the given currency.
func ZeroAmount(currency string) money.Amount {
	z, err := money.NewAmountFromMinorUnits(currency, 0)
	if err != nil {
		z, _ = money.NewAmountFromMinorUnits("USD", 0)
	}
	return z
}

// StatusFor resolves the status invariant: Paid iff repaid >= principal.
// Over-payment is accepted and still resolves to Paid.
func StatusFor(repaid, principal money.Amount) Status {
	r, _ := repaid.MinorUnits()
	p, _ := principal.MinorUnits()
	if r >= p {
		return StatusPaid
	}
	return StatusPending
}
