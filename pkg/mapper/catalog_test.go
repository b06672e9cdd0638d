package mapper

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbind/rowbind/pkg/config"
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

type account struct {
	Name      string
	Balance   int64
	UUID      string `db:"something"`
	Ignored   string `db:"-"`
	secret    string //nolint:unused // exercises unexported handling
	CreatedAt int64
}

func TestIntrospect(t *testing.T) {
	catalog, err := Introspect(reflect.TypeOf(account{}))
	require.NoError(t, err)

	descs := catalog.Descriptors()
	require.Len(t, descs, 5) // Ignored is excluded

	assert.Equal(t, "Name", descs[0].Name)
	assert.True(t, descs[0].Writable)
	assert.Equal(t, "Name", descs[0].EffectiveColumnName())

	assert.Equal(t, "UUID", descs[2].Name)
	assert.Equal(t, "something", descs[2].ColumnOverride)
	assert.Equal(t, "something", descs[2].EffectiveColumnName())

	assert.Equal(t, "secret", descs[3].Name)
	assert.False(t, descs[3].Writable)
}

func TestIntrospectPointerUnwrap(t *testing.T) {
	byValue, err := Introspect(reflect.TypeOf(account{}))
	require.NoError(t, err)

	byPointer, err := Introspect(reflect.TypeOf(&account{}))
	require.NoError(t, err)

	assert.Same(t, byValue, byPointer)
}

func TestIntrospectNonStruct(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(42),
		reflect.TypeOf("x"),
		reflect.TypeOf([]string{}),
		nil,
	} {
		_, err := Introspect(typ)
		require.Error(t, err)
		assert.True(t, rowbinderrors.IsType(err, rowbinderrors.ErrorTypeIntrospection))
	}
}

func TestIntrospectCacheConverges(t *testing.T) {
	type fresh struct{ A, B string }

	var wg sync.WaitGroup
	catalogs := make([]*Catalog, 8)
	for i := range catalogs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := Introspect(reflect.TypeOf(fresh{}))
			require.NoError(t, err)
			catalogs[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range catalogs[1:] {
		assert.Same(t, catalogs[0], c)
	}
}

func TestDescriptorForColumn(t *testing.T) {
	catalog, err := Introspect(reflect.TypeOf(account{}))
	require.NoError(t, err)

	rules := config.DefaultNamingRules()

	desc, ok := catalog.DescriptorForColumn("name", rules)
	require.True(t, ok)
	assert.Equal(t, "Name", desc.Name)

	// Explicit override matches the override, not the field name
	desc, ok = catalog.DescriptorForColumn("something", rules)
	require.True(t, ok)
	assert.Equal(t, "UUID", desc.Name)

	_, ok = catalog.DescriptorForColumn("uuid", rules)
	assert.False(t, ok, "overridden field name must not match")

	// Camel/underscore equivalence
	desc, ok = catalog.DescriptorForColumn("created_at", rules)
	require.True(t, ok)
	assert.Equal(t, "CreatedAt", desc.Name)

	// Unexported fields never match
	_, ok = catalog.DescriptorForColumn("secret", rules)
	assert.False(t, ok)

	// Empty labels never match
	_, ok = catalog.DescriptorForColumn("", rules)
	assert.False(t, ok)
}
