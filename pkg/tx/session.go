package tx

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/rowbind/rowbind/pkg/logger"
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// Session is the execution engine's ambient transaction frame, seen through
// an explicit object rather than thread-local state. A session is
// single-threaded per logical unit of work; the decorator reads and
// conditionally establishes the frame but never owns it.
type Session interface {
	// InTransaction reports whether the session has an active transaction.
	InTransaction() bool
	// IsolationLevel returns the active transaction's isolation level.
	// Meaningful only while InTransaction is true.
	IsolationLevel() IsolationLevel
	// RunInTransaction begins a transaction at the given level, runs fn
	// inside it, and commits on normal return or rolls back on error.
	RunInTransaction(ctx context.Context, level IsolationLevel, fn func(ctx context.Context) error) error
}

// SQLSession adapts a database/sql handle to the Session contract.
type SQLSession struct {
	db     *sql.DB
	tx     *sql.Tx
	level  IsolationLevel
	logger *zap.Logger
}

// NewSQLSession creates a session over a database handle.
func NewSQLSession(db *sql.DB) *SQLSession {
	return &SQLSession{
		db:     db,
		logger: logger.Get().With(zap.String("component", "sql_session")),
	}
}

// InTransaction reports whether a transaction is active.
func (s *SQLSession) InTransaction() bool {
	return s.tx != nil
}

// IsolationLevel returns the active transaction's level.
func (s *SQLSession) IsolationLevel() IsolationLevel {
	return s.level
}

// Tx exposes the active transaction for query execution inside the wrapped
// call. Nil outside a transaction.
func (s *SQLSession) Tx() *sql.Tx {
	return s.tx
}

// RunInTransaction implements Session over database/sql. Rollback errors on
// an already-failed call are logged, not returned; the call's own error is
// the one the caller needs.
func (s *SQLSession) RunInTransaction(ctx context.Context, level IsolationLevel, fn func(ctx context.Context) error) error {
	if s.tx != nil {
		return rowbinderrors.New(rowbinderrors.ErrorTypeQuery,
			"session already has an active transaction")
	}

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: level.sqlIsolation()})
	if err != nil {
		return rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "failed to begin transaction")
	}

	s.tx = sqlTx
	s.level = level
	defer func() {
		s.tx = nil
		s.level = LevelUnspecified
	}()

	if err := fn(ctx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "failed to commit transaction")
	}
	return nil
}
