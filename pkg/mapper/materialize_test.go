package mapper

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
	"github.com/rowbind/rowbind/pkg/rowsource"
)

func TestMaterializeScalarConversions(t *testing.T) {
	type record struct {
		Count   int32
		Ratio   float32
		Active  bool
		Payload []byte
		When    time.Time
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(record{}),
		[]string{"count", "ratio", "active", "payload", "when"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow(
		[]string{"count", "ratio", "active", "payload", "when"},
		[]interface{}{"17", "0.5", int64(1), "blob", "2024-06-01 12:30:00"},
	)

	v, err := plan.Materialize(row)
	require.NoError(t, err)

	rec := v.(*record)
	assert.Equal(t, int32(17), rec.Count)
	assert.Equal(t, float32(0.5), rec.Ratio)
	assert.True(t, rec.Active)
	assert.Equal(t, []byte("blob"), rec.Payload)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), rec.When)
}

func TestMaterializeNullIntoPointer(t *testing.T) {
	type record struct {
		Note *string
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(record{}), []string{"note"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow([]string{"note"}, []interface{}{nil})
	v, err := plan.Materialize(row)
	require.NoError(t, err)
	assert.Nil(t, v.(*record).Note)
}

func TestMaterializePointerTarget(t *testing.T) {
	type record struct {
		Note *string
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(record{}), []string{"note"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow([]string{"note"}, []interface{}{"hello"})
	v, err := plan.Materialize(row)
	require.NoError(t, err)

	require.NotNil(t, v.(*record).Note)
	assert.Equal(t, "hello", *v.(*record).Note)
}

func TestMaterializeNullIntoNonNilable(t *testing.T) {
	type record struct {
		Count int64
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(record{}), []string{"count"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow([]string{"count"}, []interface{}{nil})
	_, err = plan.Materialize(row)
	require.Error(t, err)

	// The failure must be attributed to the property, not surface as a
	// generic nil dereference.
	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypePropertyWrite))
	var structured *rowbinderrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "Count", structured.Detail("property"))
	assert.Contains(t, structured.Error(), "non-nilable")
}

func TestMaterializeConversionFailureAttributed(t *testing.T) {
	type record struct {
		Count int64
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(record{}), []string{"count"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow([]string{"count"}, []interface{}{"not-a-number"})
	_, err = plan.Materialize(row)
	require.Error(t, err)

	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypePropertyWrite))
	var structured *rowbinderrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "Count", structured.Detail("property"))
}

func TestMaterializeWrongTypePassthrough(t *testing.T) {
	type clock struct {
		Ticks chan int
	}

	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(clock{}), []string{"ticks"})
	require.NoError(t, err)

	// Passthrough hands the raw string to a chan field; assignment must fail
	// with the property named, never panic.
	row := rowsource.NewMemoryRow([]string{"ticks"}, []interface{}{"tock"})
	_, err = plan.Materialize(row)
	require.Error(t, err)
	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypePropertyWrite))
}

func TestMaterializeAllocatesPerInvocation(t *testing.T) {
	r := newTestResolver()
	plan, err := r.Resolve(reflect.TypeOf(widget{}), []string{"name"})
	require.NoError(t, err)

	row := rowsource.NewMemoryRow([]string{"name"}, []interface{}{"x"})

	a, err := plan.Materialize(row)
	require.NoError(t, err)
	b, err := plan.Materialize(row)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestMaterializeEmptyPlanTargetGuard(t *testing.T) {
	var plan MappingPlan
	_, err := plan.Materialize(rowsource.NewMemoryRow(nil, nil))
	require.Error(t, err)
	assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypeInstantiation))
}
