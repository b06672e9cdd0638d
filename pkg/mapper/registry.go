package mapper

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/rowbind/rowbind/pkg/logger"
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
	"github.com/rowbind/rowbind/pkg/rowsource"
	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// Converter reads one column of a row and produces a value suitable for
// assignment to a property of the type it was registered for.
type Converter interface {
	Convert(row rowsource.Row, index int) (interface{}, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(row rowsource.Row, index int) (interface{}, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(row rowsource.Row, index int) (interface{}, error) {
	return f(row, index)
}

// Registry manages converter registration and lookup by target value type.
// Reads vastly outnumber writes; lookups take the read lock only.
type Registry struct {
	converters map[reflect.Type]Converter
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewRegistry creates a registry pre-populated with converters for the
// common scalar types (strings, the integer families, floats, bools,
// time.Time, []byte, uuid.UUID).
func NewRegistry() *Registry {
	r := &Registry{
		converters: make(map[reflect.Type]Converter),
		logger:     logger.Get().With(zap.String("component", "converter_registry")),
	}
	registerBuiltins(r)
	return r
}

// Register registers a converter for a target value type.
func (r *Registry) Register(t reflect.Type, c Converter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.converters[t]; exists {
		return rowbinderrors.New(rowbinderrors.ErrorTypeConfig,
			stringpool.Sprintf("converter for type %s already registered", t.String()))
	}

	r.converters[t] = c
	r.logger.Debug("converter registered", zap.String("type", t.String()))
	return nil
}

// FindConverter returns the converter registered for the given target type.
// Absence is not an error; the plan resolver falls back to Passthrough.
func (r *Registry) FindConverter(t reflect.Type) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.converters[t]
	return c, ok
}

// Types returns the registered target types.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, 0, len(r.converters))
	for t := range r.converters {
		types = append(types, t)
	}
	return types
}

// Passthrough returns the generic untyped converter used when no typed
// converter is registered: it reads the raw column value and leaves type
// coercion to assignment time.
func Passthrough() Converter {
	return ConverterFunc(func(row rowsource.Row, index int) (interface{}, error) {
		return row.Value(index)
	})
}
