package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"fintrack/internal/fin"
	"fintrack/internal/service/repayment"
	"fintrack/internal/service/report"
)

// Amounts cross the wire as integer minor units with an optional currency;
// requests without a currency use the server default.

type incomeRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"`
	Source      string    `json:"source"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type incomeResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"`
	Source      string    `json:"source"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Notes       string    `json:"notes,omitempty"`
}

func toIncomeResponse(in fin.Income) incomeResponse {
	units, _ := in.Amount.MinorUnits()
	return incomeResponse{
		ID: in.ID, UserID: in.UserID, Date: in.Date, Source: in.Source,
		AmountMinor: units, Currency: in.Amount.Curr().Code(), Notes: in.Notes,
	}
}

type expenseRequest struct {
	UserID        uuid.UUID `json:"user_id"`
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes,omitempty"`
}

type expenseResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes,omitempty"`
}

func toExpenseResponse(e fin.Expense) expenseResponse {
	units, _ := e.Amount.MinorUnits()
	return expenseResponse{
		ID: e.ID, UserID: e.UserID, Date: e.Date, Category: e.Category,
		AmountMinor: units, Currency: e.Amount.Curr().Code(),
		PaymentMethod: e.PaymentMethod, Notes: e.Notes,
	}
}

type borrowedRequest struct {
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	PersonName  string     `json:"person_name"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type borrowedResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	PersonName  string     `json:"person_name"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	RepaidMinor int64      `json:"repaid_minor"`
	Status      fin.Status `json:"status"`
	Notes       string     `json:"notes,omitempty"`
}

func toBorrowedResponse(b fin.Borrowed) borrowedResponse {
	units, _ := b.Amount.MinorUnits()
	repaid, _ := b.RepaidAmount.MinorUnits()
	return borrowedResponse{
		ID: b.ID, UserID: b.UserID, Date: b.Date, PersonName: b.PersonName,
		AmountMinor: units, Currency: b.Amount.Curr().Code(), DueDate: b.DueDate,
		RepaidMinor: repaid, Status: b.Status, Notes: b.Notes,
	}
}

type loanRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"`
	Provider    string    `json:"provider"`
	AmountMinor int64     `json:"amount_minor"`
	EMIMinor    int64     `json:"emi_minor"`
	Currency    string    `json:"currency,omitempty"`
	Tenure      string    `json:"tenure"`
	Notes       string    `json:"notes,omitempty"`
}

type loanResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	Provider    string     `json:"provider"`
	AmountMinor int64      `json:"amount_minor"`
	EMIMinor    int64      `json:"emi_minor"`
	Currency    string     `json:"currency"`
	Tenure      string     `json:"tenure"`
	RepaidMinor int64      `json:"repaid_minor"`
	Status      fin.Status `json:"status"`
	Notes       string     `json:"notes,omitempty"`
}

func toLoanResponse(l fin.Loan) loanResponse {
	units, _ := l.Amount.MinorUnits()
	emi, _ := l.EMI.MinorUnits()
	repaid, _ := l.RepaidAmount.MinorUnits()
	return loanResponse{
		ID: l.ID, UserID: l.UserID, Date: l.Date, Provider: l.Provider,
		AmountMinor: units, EMIMinor: emi, Currency: l.Amount.Curr().Code(),
		Tenure: l.Tenure, RepaidMinor: repaid, Status: l.Status, Notes: l.Notes,
	}
}

// Repayments

type submitRepaymentRequest struct {
	UserID        uuid.UUID `json:"user_id"`
	Date          time.Time `json:"date"`
	RepaymentType string    `json:"repayment_type"`
	PaidTo        string    `json:"paid_to"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency,omitempty"`
	Mode          string    `json:"mode"`
	Notes         string    `json:"notes,omitempty"`
	// RelatedID pins the repayment to one source record when the same
	// counterparty has several pending entries.
	RelatedID uuid.UUID `json:"related_id,omitempty"`
}

type repaymentResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Date          time.Time `json:"date"`
	RepaymentType string    `json:"repayment_type"`
	PaidTo        string    `json:"paid_to"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	Mode          string    `json:"mode"`
	Notes         string    `json:"notes,omitempty"`
	RelatedID     uuid.UUID `json:"related_id,omitempty"`
}

func toRepaymentResponse(r fin.Repayment) repaymentResponse {
	units, _ := r.Amount.MinorUnits()
	return repaymentResponse{
		ID: r.ID, UserID: r.UserID, Date: r.Date, RepaymentType: string(r.Type),
		PaidTo: r.PaidTo, AmountMinor: units, Currency: r.Amount.Curr().Code(),
		Mode: r.Mode, Notes: r.Notes, RelatedID: r.RelatedID,
	}
}

type updatedRecordResponse struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	TotalMinor  int64      `json:"total_minor"`
	RepaidMinor int64      `json:"repaid_minor"`
	Status      fin.Status `json:"status"`
}

type submitRepaymentResponse struct {
	Repayment     repaymentResponse     `json:"repayment"`
	UpdatedRecord updatedRecordResponse `json:"updated_record"`
}

type repaymentOptionResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TotalMinor   int64     `json:"total_minor"`
	RepaidMinor  int64     `json:"repaid_minor"`
	BalanceMinor int64     `json:"balance_minor"`
}

type repaymentOptionsResponse struct {
	Borrowed []repaymentOptionResponse `json:"borrowed"`
	Loans    []repaymentOptionResponse `json:"loans"`
}

func toOptionResponse(o repayment.Option) repaymentOptionResponse {
	total, _ := o.Total.MinorUnits()
	repaid, _ := o.Repaid.MinorUnits()
	balance, _ := o.Balance.MinorUnits()
	return repaymentOptionResponse{ID: o.ID, Name: o.Name, TotalMinor: total, RepaidMinor: repaid, BalanceMinor: balance}
}

type historyEntryResponse struct {
	Date        time.Time `json:"date"`
	AmountMinor int64     `json:"amount_minor"`
	Mode        string    `json:"mode"`
	Notes       string    `json:"notes,omitempty"`
}

type recordHistoryResponse struct {
	ID             uuid.UUID              `json:"id"`
	Name           string                 `json:"name"`
	Date           time.Time              `json:"date"`
	TotalMinor     int64                  `json:"total_minor"`
	PaidMinor      int64                  `json:"paid_minor"`
	RemainingMinor int64                  `json:"remaining_minor"`
	Status         fin.Status             `json:"status"`
	LastPaidDate   *time.Time             `json:"last_paid_date,omitempty"`
	History        []historyEntryResponse `json:"history"`
}

type repaymentRecordsResponse struct {
	Borrowed []recordHistoryResponse `json:"borrowed"`
	Loans    []recordHistoryResponse `json:"loans"`
}

func toRecordHistoryResponse(h repayment.RecordHistory) recordHistoryResponse {
	total, _ := h.Total.MinorUnits()
	paid, _ := h.Paid.MinorUnits()
	remaining, _ := h.Remaining.MinorUnits()
	history := make([]historyEntryResponse, 0, len(h.History))
	for _, e := range h.History {
		units, _ := e.Amount.MinorUnits()
		history = append(history, historyEntryResponse{Date: e.Date, AmountMinor: units, Mode: e.Mode, Notes: e.Notes})
	}
	return recordHistoryResponse{
		ID: h.ID, Name: h.Name, Date: h.Date, TotalMinor: total, PaidMinor: paid,
		RemainingMinor: remaining, Status: h.Status, LastPaidDate: h.LastPaidDate, History: history,
	}
}

// Aggregates

type upcomingResponse struct {
	Type           string    `json:"type"`
	Label          string    `json:"label"`
	DueDate        time.Time `json:"due_date"`
	AmountDueMinor int64     `json:"amount_due_minor"`
}

type dashboardResponse struct {
	Currency             string             `json:"currency"`
	IncomeMinor          int64              `json:"income_minor"`
	ExpensesMinor        int64              `json:"expenses_minor"`
	BorrowedMinor        int64              `json:"borrowed_minor"`
	RepaidMinor          int64              `json:"repaid_minor"`
	LoansMinor           int64              `json:"loans_minor"`
	LoanOutstandingMinor int64              `json:"loan_outstanding_minor"`
	NetBalanceMinor      int64              `json:"net_balance_minor"`
	Upcoming             []upcomingResponse `json:"upcoming"`
}

func toDashboardResponse(sum report.Summary, currency string) dashboardResponse {
	income, _ := sum.Income.MinorUnits()
	expenses, _ := sum.Expenses.MinorUnits()
	borrowed, _ := sum.Borrowed.MinorUnits()
	repaid, _ := sum.Repaid.MinorUnits()
	loans, _ := sum.Loans.MinorUnits()
	outstanding, _ := sum.LoanOutstanding.MinorUnits()
	net, _ := sum.NetBalance.MinorUnits()
	upcoming := make([]upcomingResponse, 0, len(sum.Upcoming))
	for _, u := range sum.Upcoming {
		due, _ := u.AmountDue.MinorUnits()
		upcoming = append(upcoming, upcomingResponse{Type: u.Type, Label: u.Label, DueDate: u.DueDate, AmountDueMinor: due})
	}
	return dashboardResponse{
		Currency: currency, IncomeMinor: income, ExpensesMinor: expenses,
		BorrowedMinor: borrowed, RepaidMinor: repaid, LoansMinor: loans,
		LoanOutstandingMinor: outstanding, NetBalanceMinor: net, Upcoming: upcoming,
	}
}

type transactionResponse struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	Type         string    `json:"type"`
	Counterparty string    `json:"counterparty"`
	Category     string    `json:"category"`
	Mode         string    `json:"mode"`
	AmountMinor  int64     `json:"amount_minor"`
	Currency     string    `json:"currency"`
	Notes        string    `json:"notes,omitempty"`
	Kind         fin.Kind  `json:"kind"`
}

func toTransactionResponse(t report.Transaction) transactionResponse {
	units, _ := t.Amount.MinorUnits()
	return transactionResponse{
		ID: t.ID, Date: t.Date, Type: t.Type, Counterparty: t.Counterparty,
		Category: t.Category, Mode: t.Mode, AmountMinor: units,
		Currency: t.Amount.Curr().Code(), Notes: t.Notes, Kind: t.Kind,
	}
}

// amountFromMinor builds a money amount, falling back to the server
// currency when the request omits one.
func (s *Server) amountFromMinor(currency string, minor int64) (money.Amount, error) {
	if currency == "" {
		currency = s.currency
	}
	return money.NewAmountFromMinorUnits(currency, minor)
}
