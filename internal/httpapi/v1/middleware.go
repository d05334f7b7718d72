package v1

import (
	"context"
	"net/http"

	"fintrack/internal/fin"
	"fintrack/internal/service/repayment"
)

type ctxKey string

const ctxKeySubmitRepayment ctxKey = "validatedSubmitRepayment"

// validateSubmitRepayment parses the POST /v1/repayment body, converts it to
// the service input and stores it in the request context for the handler.
func (s *Server) validateSubmitRepayment() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req submitRepaymentRequest
			if err := decodeJSON(r, &req); err != nil {
				badRequest(w, err.Error())
				return
			}
			amt, err := s.amountFromMinor(req.Currency, req.AmountMinor)
			if err != nil {
				badRequest(w, "invalid currency")
				return
			}
			in := repayment.SubmitInput{
				UserID:    req.UserID,
				Date:      req.Date,
				Type:      fin.RepaymentType(req.RepaymentType),
				PaidTo:    req.PaidTo,
				Amount:    amt,
				Mode:      req.Mode,
				Notes:     req.Notes,
				RelatedID: req.RelatedID,
			}
			ctx := context.WithValue(r.Context(), ctxKeySubmitRepayment, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
