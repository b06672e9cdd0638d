// Package tx provides the declarative transaction decorator: calls declared
// transactional are collapsed into a single outer transaction, with isolation
// level consistency enforced across nesting. The decorated call either joins
// the session's active transaction or establishes one; the outermost call
// that opened the transaction decides commit versus rollback.
package tx

import (
	"database/sql"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// IsolationLevel is the degree of transactional visibility requested for a
// unit of work. LevelUnspecified joins whatever the session provides.
type IsolationLevel int

const (
	// LevelUnspecified defers to the engine default, or joins any active
	// transaction without constraint.
	LevelUnspecified IsolationLevel = iota
	// LevelReadUncommitted allows dirty reads.
	LevelReadUncommitted
	// LevelReadCommitted sees only committed data.
	LevelReadCommitted
	// LevelRepeatableRead guarantees stable reads within the transaction.
	LevelRepeatableRead
	// LevelSerializable provides full serializable isolation.
	LevelSerializable
)

var levelNames = map[IsolationLevel]string{
	LevelUnspecified:     "unspecified",
	LevelReadUncommitted: "read_uncommitted",
	LevelReadCommitted:   "read_committed",
	LevelRepeatableRead:  "repeatable_read",
	LevelSerializable:    "serializable",
}

// String returns the level's canonical name.
func (l IsolationLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseIsolationLevel parses a canonical level name.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelUnspecified, rowbinderrors.Newf(rowbinderrors.ErrorTypeConfig,
		"unknown isolation level %q", s)
}

// sqlIsolation maps a level onto database/sql's isolation constants.
func (l IsolationLevel) sqlIsolation() sql.IsolationLevel {
	switch l {
	case LevelReadUncommitted:
		return sql.LevelReadUncommitted
	case LevelReadCommitted:
		return sql.LevelReadCommitted
	case LevelRepeatableRead:
		return sql.LevelRepeatableRead
	case LevelSerializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}
