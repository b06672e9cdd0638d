package mapper

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/rowbind/rowbind/pkg/config"
	"github.com/rowbind/rowbind/pkg/logger"
	"github.com/rowbind/rowbind/pkg/rowsource"
)

// RowMapper maps result rows into instances of a target type.
type RowMapper interface {
	// Map materializes one row into a new instance of the target type.
	// The returned value is a pointer to the target struct.
	Map(row rowsource.Row) (interface{}, error)

	// SpecializeFor resolves the plan for a column signature once and
	// returns a plan-bound mapper that skips re-resolution on every row.
	SpecializeFor(columnLabels []string) (RowMapper, error)
}

// Factory builds row mappers for target types. One factory carries one
// configuration and converter registry; mappers built from it share the
// factory's plan cache.
type Factory struct {
	cfg      *config.MappingConfig
	registry *Registry
	resolver *Resolver
	logger   *zap.Logger
}

// NewFactory creates a mapper factory. A nil registry gets the built-in
// converter set.
func NewFactory(cfg *config.MappingConfig, registry *Registry) *Factory {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Factory{
		cfg:      cfg,
		registry: registry,
		resolver: NewResolver(cfg, registry),
		logger:   logger.Get().With(zap.String("component", "mapper_factory")),
	}
}

// Registry returns the factory's converter registry so callers can extend it.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Resolver returns the factory's shared plan resolver.
func (f *Factory) Resolver() *Resolver {
	return f.resolver
}

// Supports reports whether the factory can build a mapper for the type:
// a struct (or pointer to struct) with at least one writable property.
func (f *Factory) Supports(t reflect.Type) bool {
	catalog, err := Introspect(t)
	if err != nil {
		return false
	}
	for _, desc := range catalog.Descriptors() {
		if desc.Writable {
			return true
		}
	}
	return false
}

// BuildMapper builds a RowMapper for the target type. Introspection runs
// eagerly so unusable types fail here rather than on the first row.
func (f *Factory) BuildMapper(t reflect.Type) (RowMapper, error) {
	catalog, err := Introspect(t)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("mapper built",
		zap.String("target_type", catalog.TargetType().String()),
		zap.Int("properties", len(catalog.Descriptors())))

	return &rowMapper{
		targetType: catalog.TargetType(),
		resolver:   f.resolver,
	}, nil
}

// rowMapper resolves against each row's column signature via the shared plan
// cache. Repeated rows of the same shape hit the cache.
type rowMapper struct {
	targetType reflect.Type
	resolver   *Resolver
}

func (m *rowMapper) Map(row rowsource.Row) (interface{}, error) {
	labels, err := rowsource.Labels(row)
	if err != nil {
		return nil, err
	}

	plan, err := m.resolver.Resolve(m.targetType, labels)
	if err != nil {
		return nil, err
	}

	return plan.Materialize(row)
}

func (m *rowMapper) SpecializeFor(columnLabels []string) (RowMapper, error) {
	plan, err := m.resolver.Resolve(m.targetType, columnLabels)
	if err != nil {
		return nil, err
	}
	return &boundMapper{plan: plan}, nil
}

// boundMapper is pinned to one resolved plan.
type boundMapper struct {
	plan *MappingPlan
}

func (m *boundMapper) Map(row rowsource.Row) (interface{}, error) {
	return m.plan.Materialize(row)
}

func (m *boundMapper) SpecializeFor([]string) (RowMapper, error) {
	return m, nil
}

// TypedMapper wraps a RowMapper with a concrete target type.
type TypedMapper[T any] struct {
	inner RowMapper
}

// NewTypedMapper builds a typed mapper for T from the factory.
func NewTypedMapper[T any](f *Factory) (*TypedMapper[T], error) {
	var zero T
	inner, err := f.BuildMapper(reflect.TypeOf(zero))
	if err != nil {
		return nil, err
	}
	return &TypedMapper[T]{inner: inner}, nil
}

// Map materializes one row into a *T.
func (m *TypedMapper[T]) Map(row rowsource.Row) (*T, error) {
	v, err := m.inner.Map(row)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// MapAll materializes a batch of prefetched rows.
func (m *TypedMapper[T]) MapAll(rows []rowsource.Row) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v, err := m.Map(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
