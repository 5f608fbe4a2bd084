package posting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSaleNotFound indicates the sale does not exist for the tenant.
	ErrSaleNotFound = errors.New("posting: sale not found")
	// ErrInvalidState indicates the sale is not in draft.
	ErrInvalidState = errors.New("posting: sale is not in draft")
	// ErrConfigurationIncomplete indicates unresolved required account roles.
	ErrConfigurationIncomplete = errors.New("posting: account mapping incomplete")
	// ErrEmptyDocument indicates the sale has no lines.
	ErrEmptyDocument = errors.New("posting: sale has no lines")
)

// transient SQLSTATE classes and codes: serialization failure, deadlock,
// lock timeout, and connection exceptions. The transaction guarantees no
// partial state survives, so these are safe to retry.
func transientCode(code string) bool {
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return len(code) >= 2 && code[:2] == "08"
}

// IsTransient reports whether the error is a retriable storage failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCode(pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
