package tx

import (
	"context"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// Fn is a unit of work executed against a session.
type Fn func(ctx context.Context, session Session) error

// Decorator wraps a unit of work with additional behavior.
type Decorator func(Fn) Fn

// Transactional returns a decorator that runs the wrapped call in a
// transaction at the declared isolation level, collapsing nested
// transactional calls into the outer transaction:
//
//   - No active transaction: begin one at the declared level (engine default
//     when unspecified), commit on normal return, roll back on error.
//   - Active transaction and the declared level is unspecified or equal to
//     the current level: invoke directly, no new transaction boundary.
//   - Active transaction at a different specified level: fail before any
//     work executes. Isolation is never silently upgraded or downgraded.
func Transactional(level IsolationLevel) Decorator {
	return func(fn Fn) Fn {
		return func(ctx context.Context, session Session) error {
			if session.InTransaction() {
				current := session.IsolationLevel()
				if level == LevelUnspecified || level == current {
					// The outermost transactional call owns the isolation
					// level and the commit/rollback decision.
					return fn(ctx, session)
				}
				return rowbinderrors.Newf(rowbinderrors.ErrorTypeIsolationConflict,
					"nested transactional call requested isolation %s, but already running at %s",
					level, current).
					WithDetail("requested", level.String()).
					WithDetail("current", current.String())
			}

			return session.RunInTransaction(ctx, level, func(ctx context.Context) error {
				return fn(ctx, session)
			})
		}
	}
}

// Decorate applies decorators right to left, so the first decorator is the
// outermost. Mirrors annotation-driven dispatch: the declared isolation level
// is bound at setup time, not discovered at call time.
func Decorate(fn Fn, decorators ...Decorator) Fn {
	for i := len(decorators) - 1; i >= 0; i-- {
		fn = decorators[i](fn)
	}
	return fn
}
