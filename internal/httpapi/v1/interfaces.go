package v1

import (
	"context"

	"fintrack/internal/service/records"
	"fintrack/internal/service/repayment"
	"fintrack/internal/service/report"
)

// Store is the union of repository and writer operations the API needs.
// The memory, sqlite and postgres stores all satisfy it.
type Store interface {
	records.Repo
	records.Writer
	repayment.Repo
	repayment.Writer
	report.Repo
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
