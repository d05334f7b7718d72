package v1

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"fintrack/internal/fin"
)

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sum, err := s.reportSvc.Summary(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toDashboardResponse(sum, s.currency))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	txs, err := s.reportSvc.Transactions(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, out)
}

// deleteTransaction removes a record from the unified ledger given its id
// and kind. The kind names the underlying collection.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
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
	kind, ok := fin.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		badRequest(w, "invalid kind")
		return
	}
	if err := s.recordsSvc.DeleteTransaction(r.Context(), userID, id, kind); err != nil {
		s.svcError(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
