package v1

import (
	"net/http"

	"fintrack/internal/service/repayment"
)

func (s *Server) postRepayment(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ctxKeySubmitRepayment).(repayment.SubmitInput)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	saved, summary, err := s.repaymentSvc.Submit(r.Context(), in)
	if err != nil {
		s.svcError(w, err)
		return
	}
	repaymentsApplied.WithLabelValues(string(summary.Type), string(summary.Status)).Inc()
	total, _ := summary.Total.MinorUnits()
	repaid, _ := summary.Repaid.MinorUnits()
	toJSON(w, http.StatusCreated, submitRepaymentResponse{
		Repayment: toRepaymentResponse(saved),
		UpdatedRecord: updatedRecordResponse{
			Type:        string(summary.Type),
			Name:        summary.Name,
			TotalMinor:  total,
			RepaidMinor: repaid,
			Status:      summary.Status,
		},
	})
}

func (s *Server) listRepayments(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := s.repaymentSvc.List(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := make([]repaymentResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toRepaymentResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

// repaymentOptions returns only records a repayment can still be applied to.
func (s *Server) repaymentOptions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	opts, err := s.repaymentSvc.PendingOptions(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := repaymentOptionsResponse{
		Borrowed: make([]repaymentOptionResponse, 0, len(opts.Borrowed)),
		Loans:    make([]repaymentOptionResponse, 0, len(opts.Loans)),
	}
	for _, o := range opts.Borrowed {
		out.Borrowed = append(out.Borrowed, toOptionResponse(o))
	}
	for _, o := range opts.Loans {
		out.Loans = append(out.Loans, toOptionResponse(o))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) repaymentRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	recs, err := s.repaymentSvc.RecordsWithHistory(r.Context(), userID)
	if err != nil {
		s.svcError(w, err)
		return
	}
	out := repaymentRecordsResponse{
		Borrowed: make([]recordHistoryResponse, 0, len(recs.Borrowed)),
		Loans:    make([]recordHistoryResponse, 0, len(recs.Loans)),
	}
	for _, h := range recs.Borrowed {
		out.Borrowed = append(out.Borrowed, toRecordHistoryResponse(h))
	}
	for _, h := range recs.Loans {
		out.Loans = append(out.Loans, toRecordHistoryResponse(h))
	}
	toJSON(w, http.StatusOK, out)
}
