package v1

import (
	"errors"
	"net/http"

	"fintrack/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// svcError maps service errors onto HTTP statuses using the errs sentinels.
// Validation and ownership failures keep their descriptive message; anything
// unexpected collapses to a generic 500.
func (s *Server) svcError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidAmount):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_amount")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, errs.ErrNotFound):
		msg := err.Error()
		if msg == errs.ErrNotFound.Error() {
			msg = "Record not found"
		}
		writeErr(w, http.StatusNotFound, msg, "not_found")
	case errors.Is(err, errs.ErrForbidden):
		writeErr(w, http.StatusForbidden, "Not authorized", "forbidden")
	default:
		s.log.Error("request failed", "err", err)
		writeErr(w, http.StatusInternalServerError, "Server error", "server_error")
	}
}
