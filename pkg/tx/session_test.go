package tx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// in-memory sqlite: a second connection would see a different database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE events (id INTEGER PRIMARY KEY, note TEXT)`)
	require.NoError(t, err)

	return db
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n))
	return n
}

func TestSQLSessionCommit(t *testing.T) {
	db := newTestDB(t)
	session := NewSQLSession(db)

	fn := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		sqlSession := s.(*SQLSession)
		assert.True(t, sqlSession.InTransaction())
		_, err := sqlSession.Tx().ExecContext(ctx, `INSERT INTO events (note) VALUES ('hello')`)
		return err
	})

	require.NoError(t, fn(context.Background(), session))
	assert.False(t, session.InTransaction())
	assert.Nil(t, session.Tx())
	assert.Equal(t, 1, countEvents(t, db))
}

func TestSQLSessionRollback(t *testing.T) {
	db := newTestDB(t)
	session := NewSQLSession(db)
	boom := errors.New("abort")

	fn := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		sqlSession := s.(*SQLSession)
		if _, err := sqlSession.Tx().ExecContext(ctx, `INSERT INTO events (note) VALUES ('doomed')`); err != nil {
			return err
		}
		return boom
	})

	err := fn(context.Background(), session)
	assert.ErrorIs(t, err, boom)
	assert.False(t, session.InTransaction())
	assert.Equal(t, 0, countEvents(t, db))
}

func TestSQLSessionNestedCollapse(t *testing.T) {
	db := newTestDB(t)
	session := NewSQLSession(db)

	inner := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		_, err := s.(*SQLSession).Tx().ExecContext(ctx, `INSERT INTO events (note) VALUES ('inner')`)
		return err
	})
	outer := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		if _, err := s.(*SQLSession).Tx().ExecContext(ctx, `INSERT INTO events (note) VALUES ('outer')`); err != nil {
			return err
		}
		return inner(ctx, s)
	})

	require.NoError(t, outer(context.Background(), session))
	assert.Equal(t, 2, countEvents(t, db))
}

func TestSQLSessionRejectsDirectNestedBegin(t *testing.T) {
	db := newTestDB(t)
	session := NewSQLSession(db)

	err := session.RunInTransaction(context.Background(), LevelUnspecified, func(ctx context.Context) error {
		return session.RunInTransaction(ctx, LevelUnspecified, func(context.Context) error {
			return nil
		})
	})
	require.Error(t, err)
}
