package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/apperr"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/metrics"
)

// Bound on re-executions of a conflicting transaction before degrading to
// WriteFailed.
const maxTxAttempts = 3

// isWriteConflict reports whether err is a transient conflict between
// concurrent transactions (serialization failure or deadlock), which is safe
// to resolve by re-running the whole transaction.
func isWriteConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// runInTransaction executes work atomically: every datastore operation inside
// work must go through the supplied tx handle. On error the transaction is
// rolled back and nothing is persisted. Transient write conflicts re-run work
// from scratch, so work must not leak side effects outside the transaction.
func runInTransaction(ctx context.Context, db *gorm.DB, logg *logger.Logger, work func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(work)
		if err == nil {
			return nil
		}
		if !apperr.Retriable(err) && !isWriteConflict(err) {
			return err
		}
		if attempt < maxTxAttempts {
			metrics.TransactionRetries.Inc()
			logg.Warn("transaction hit write conflict, retrying", "attempt", attempt)
		}
	}
	return apperr.WriteFailed("transaction", err)
}
