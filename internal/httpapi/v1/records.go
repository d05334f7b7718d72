package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fintrack/internal/fin"
)

func userIDFromQuery(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return uuid.Nil, errors.New("user_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid user_id")
	}
	return id, nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid id")
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON: " + err.Error())
	}
	return nil
}

// --- Income ---

func (s *Server) incomeFromRequest(req incomeRequest, id uuid.UUID) (fin.Income, error) {
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		return fin.Income{}, errors.New("invalid currency")
	}
	return fin.Income{ID: id, UserID: req.UserID, Date: req.Date, Source: req.Source, Amount: amt, Notes: req.Notes}, nil
}

func (s *Server) postIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	in, err := s.incomeFromRequest(req, uuid.Nil)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.CreateIncome(r.Context(), in)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toIncomeResponse(saved))
}

func (s *Server) listIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := s.recordsSvc.ListIncome(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]incomeResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toIncomeResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := s.recordsSvc.GetIncome(r.Context(), userID, id)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toIncomeResponse(v))
}

func (s *Server) updateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	in, err := s.incomeFromRequest(req, id)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.UpdateIncome(r.Context(), in)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toIncomeResponse(saved))
}

func (s *Server) deleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.recordsSvc.DeleteIncome(r.Context(), userID, id); err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"message": "Income deleted"})
}

// --- Expense ---

func (s *Server) expenseFromRequest(req expenseRequest, id uuid.UUID) (fin.Expense, error) {
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		return fin.Expense{}, errors.New("invalid currency")
	}
	return fin.Expense{ID: id, UserID: req.UserID, Date: req.Date, Category: req.Category, Amount: amt, PaymentMethod: req.PaymentMethod, Notes: req.Notes}, nil
}

func (s *Server) postExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	e, err := s.expenseFromRequest(req, uuid.Nil)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.CreateExpense(r.Context(), e)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toExpenseResponse(saved))
}

func (s *Server) listExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := s.recordsSvc.ListExpense(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toExpenseResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := s.recordsSvc.GetExpense(r.Context(), userID, id)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toExpenseResponse(v))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	e, err := s.expenseFromRequest(req, id)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.UpdateExpense(r.Context(), e)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toExpenseResponse(saved))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.recordsSvc.DeleteExpense(r.Context(), userID, id); err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// --- Borrowed ---

func (s *Server) borrowedFromRequest(req borrowedRequest) (fin.Borrowed, error) {
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		return fin.Borrowed{}, errors.New("invalid currency")
	}
	return fin.NewBorrowed(req.UserID, req.Date, req.PersonName, amt, req.DueDate, req.Notes), nil
}

func (s *Server) postBorrowed(w http.ResponseWriter, r *http.Request) {
	var req borrowedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	b, err := s.borrowedFromRequest(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.CreateBorrowed(r.Context(), b)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toBorrowedResponse(saved))
}

func (s *Server) listBorrowed(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := s.recordsSvc.ListBorrowed(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]borrowedResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toBorrowedResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getBorrowed(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := s.recordsSvc.GetBorrowed(r.Context(), userID, id)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBorrowedResponse(v))
}

func (s *Server) updateBorrowed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req borrowedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		badRequest(w, "invalid currency")
		return
	}
	b := fin.Borrowed{ID: id, UserID: req.UserID, Date: req.Date, PersonName: req.PersonName, Amount: amt, DueDate: req.DueDate, Notes: req.Notes}
	saved, err := s.recordsSvc.UpdateBorrowed(r.Context(), b)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBorrowedResponse(saved))
}

func (s *Server) deleteBorrowed(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.recordsSvc.DeleteBorrowed(r.Context(), userID, id); err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
}

// --- Loans ---

func (s *Server) loanFromRequest(req loanRequest) (fin.Loan, error) {
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		return fin.Loan{}, errors.New("invalid currency")
	}
	emi, err := s.amountFromMinor(req.Currency, req.EMIMinor)
	if err != nil {
		return fin.Loan{}, errors.New("invalid currency")
	}
	return fin.NewLoan(req.UserID, req.Date, req.Provider, amt, emi, req.Tenure, req.Notes), nil
}

func (s *Server) postLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	l, err := s.loanFromRequest(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.recordsSvc.CreateLoan(r.Context(), l)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toLoanResponse(saved))
}

func (s *Server) listLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := s.recordsSvc.ListLoans(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]loanResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toLoanResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := s.recordsSvc.GetLoan(r.Context(), userID, id)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toLoanResponse(v))
}

func (s *Server) updateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
	if err != nil {
		badRequest(w, "invalid currency")
		return
	}
	emi, err := s.amountFromMinor(req.Currency, req.EMIMinor)
	if err != nil {
		badRequest(w, "invalid currency")
		return
	}
	l := fin.Loan{ID: id, UserID: req.UserID, Date: req.Date, Provider: req.Provider, Amount: amt, EMI: emi, Tenure: req.Tenure, Notes: req.Notes}
	saved, err := s.recordsSvc.UpdateLoan(r.Context(), l)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toLoanResponse(saved))
}

func (s *Server) deleteLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.recordsSvc.DeleteLoan(r.Context(), userID, id); err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"message": "Loan deleted"})
}
