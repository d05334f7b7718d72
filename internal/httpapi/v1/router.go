// Package v1 wires the HTTP surface of the tracker service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/service/records"
	"fintrack/internal/service/repayment"
	"fintrack/internal/service/report"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	recordsSvc   records.Service
	repaymentSvc repayment.Service
	reportSvc    report.Service
	store        Store
	currency     string
	log          *slog.Logger
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The currency
// is used for amounts submitted without one.
func New(store Store, logger *slog.Logger, currency string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if mw := authJWTFromEnv(); mw != nil {
		r.Use(mw)
	}

	s := &Server{
		recordsSvc:   records.New(store, store),
		repaymentSvc: repayment.New(store, store),
		reportSvc:    report.New(store, currency),
		store:        store,
		currency:     currency,
		rt:           r,
		log:          logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Income
	s.rt.Post("/v1/income", s.postIncome)
	s.rt.Get("/v1/income", s.listIncome)
	s.rt.Get("/v1/income/{id}", s.getIncome)
	s.rt.Put("/v1/income/{id}", s.updateIncome)
	s.rt.Delete("/v1/income/{id}", s.deleteIncome)
	// Expense
	s.rt.Post("/v1/expense", s.postExpense)
	s.rt.Get("/v1/expense", s.listExpense)
	s.rt.Get("/v1/expense/{id}", s.getExpense)
	s.rt.Put("/v1/expense/{id}", s.updateExpense)
	s.rt.Delete("/v1/expense/{id}", s.deleteExpense)
	// Borrowed money
	s.rt.Post("/v1/borrowed", s.postBorrowed)
	s.rt.Get("/v1/borrowed", s.listBorrowed)
	s.rt.Get("/v1/borrowed/{id}", s.getBorrowed)
	s.rt.Put("/v1/borrowed/{id}", s.updateBorrowed)
	s.rt.Delete("/v1/borrowed/{id}", s.deleteBorrowed)
	// Loans
	s.rt.Post("/v1/loan", s.postLoan)
	s.rt.Get("/v1/loan", s.listLoans)
	s.rt.Get("/v1/loan/{id}", s.getLoan)
	s.rt.Put("/v1/loan/{id}", s.updateLoan)
	s.rt.Delete("/v1/loan/{id}", s.deleteLoan)
	// Repayments and reconciliation
	s.rt.With(s.validateSubmitRepayment()).Post("/v1/repayment", s.postRepayment)
	s.rt.Get("/v1/repayment", s.listRepayments)
	s.rt.Get("/v1/repayment/options", s.repaymentOptions)
	s.rt.Get("/v1/repayment/records", s.repaymentRecords)
	// Aggregates
	s.rt.Get("/v1/dashboard", s.getDashboard)
	s.rt.Get("/v1/transactions", s.listTransactions)
	s.rt.Delete("/v1/transactions/{id}/{kind}", s.deleteTransaction)
	// Operational (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
