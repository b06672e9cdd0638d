package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// fakeSession records transaction lifecycle events.
type fakeSession struct {
	inTx      bool
	level     IsolationLevel
	begins    int
	commits   int
	rollbacks int
}

func (s *fakeSession) InTransaction() bool            { return s.inTx }
func (s *fakeSession) IsolationLevel() IsolationLevel { return s.level }

func (s *fakeSession) RunInTransaction(ctx context.Context, level IsolationLevel, fn func(ctx context.Context) error) error {
	if s.inTx {
		return errors.New("fakeSession: nested begin")
	}
	s.begins++
	s.inTx = true
	s.level = level
	defer func() {
		s.inTx = false
		s.level = LevelUnspecified
	}()

	if err := fn(ctx); err != nil {
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func TestTransactionalOpensAndCommits(t *testing.T) {
	session := &fakeSession{}
	invoked := false

	fn := Transactional(LevelSerializable)(func(ctx context.Context, s Session) error {
		invoked = true
		assert.True(t, s.InTransaction())
		assert.Equal(t, LevelSerializable, s.IsolationLevel())
		return nil
	})

	require.NoError(t, fn(context.Background(), session))
	assert.True(t, invoked)
	assert.Equal(t, 1, session.begins)
	assert.Equal(t, 1, session.commits)
	assert.Equal(t, 0, session.rollbacks)
	assert.False(t, session.InTransaction())
}

func TestTransactionalRollsBackOnError(t *testing.T) {
	session := &fakeSession{}
	boom := errors.New("boom")

	fn := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		return boom
	})

	err := fn(context.Background(), session)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, session.begins)
	assert.Equal(t, 0, session.commits)
	assert.Equal(t, 1, session.rollbacks)
}

func TestNestedSameLevelCollapses(t *testing.T) {
	session := &fakeSession{}
	innerRan := false

	inner := Transactional(LevelRepeatableRead)(func(ctx context.Context, s Session) error {
		innerRan = true
		return nil
	})
	outer := Transactional(LevelRepeatableRead)(func(ctx context.Context, s Session) error {
		return inner(ctx, s)
	})

	require.NoError(t, outer(context.Background(), session))
	assert.True(t, innerRan)
	// One transaction total: the inner call joined the outer one
	assert.Equal(t, 1, session.begins)
	assert.Equal(t, 1, session.commits)
}

func TestNestedUnspecifiedAlwaysJoins(t *testing.T) {
	session := &fakeSession{}

	inner := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		return nil
	})
	outer := Transactional(LevelSerializable)(func(ctx context.Context, s Session) error {
		return inner(ctx, s)
	})

	require.NoError(t, outer(context.Background(), session))
	assert.Equal(t, 1, session.begins)
	assert.Equal(t, 1, session.commits)
}

func TestNestedConflictingLevelFails(t *testing.T) {
	session := &fakeSession{}
	innerRan := false

	inner := Transactional(LevelSerializable)(func(ctx context.Context, s Session) error {
		innerRan = true
		return nil
	})
	outer := Transactional(LevelReadCommitted)(func(ctx context.Context, s Session) error {
		return inner(ctx, s)
	})

	err := outer(context.Background(), session)
	require.Error(t, err)
	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypeIsolationConflict))
	assert.False(t, innerRan, "conflict must abort before any work executes")

	var structured *rowbinderrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "serializable", structured.Detail("requested"))
	assert.Equal(t, "read_committed", structured.Detail("current"))

	// The outer transaction rolled back because the conflict propagated
	assert.Equal(t, 1, session.begins)
	assert.Equal(t, 1, session.rollbacks)
}

func TestInnerFailureRollsBackOuter(t *testing.T) {
	session := &fakeSession{}
	boom := errors.New("inner failure")

	inner := Transactional(LevelUnspecified)(func(ctx context.Context, s Session) error {
		return boom
	})
	outer := Transactional(LevelReadCommitted)(func(ctx context.Context, s Session) error {
		return inner(ctx, s)
	})

	err := outer(context.Background(), session)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, session.commits)
	assert.Equal(t, 1, session.rollbacks)
}

func TestDecorateOrder(t *testing.T) {
	var order []string

	mk := func(name string) Decorator {
		return func(fn Fn) Fn {
			return func(ctx context.Context, s Session) error {
				order = append(order, name)
				return fn(ctx, s)
			}
		}
	}

	fn := Decorate(func(ctx context.Context, s Session) error {
		order = append(order, "work")
		return nil
	}, mk("outer"), mk("inner"))

	require.NoError(t, fn(context.Background(), &fakeSession{}))
	assert.Equal(t, []string{"outer", "inner", "work"}, order)
}

func TestIsolationLevelStrings(t *testing.T) {
	for level, name := range levelNames {
		assert.Equal(t, name, level.String())

		parsed, err := ParseIsolationLevel(name)
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	assert.Equal(t, "unknown", IsolationLevel(99).String())

	_, err := ParseIsolationLevel("chaotic")
	require.Error(t, err)
	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypeConfig))
}
