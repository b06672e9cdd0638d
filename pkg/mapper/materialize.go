package mapper

import (
	"reflect"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
	"github.com/rowbind/rowbind/pkg/rowsource"
	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// Materialize executes the plan against one row: allocates a new target
// instance, runs each entry's converter, and writes each value into its
// property. Returns a pointer to the populated struct.
//
// Exactly one instance is allocated per invocation and the plan is never
// mutated, so a plan may materialize rows from many goroutines at once.
func (p *MappingPlan) Materialize(row rowsource.Row) (interface{}, error) {
	if p.targetType == nil || p.targetType.Kind() != reflect.Struct {
		rowsMaterialized.WithLabelValues(outcomeError).Inc()
		return nil, rowbinderrors.New(rowbinderrors.ErrorTypeInstantiation,
			"mapping plan has no constructible target type")
	}

	instance := reflect.New(p.targetType)
	target := instance.Elem()

	for _, entry := range p.entries {
		value, err := entry.converter.Convert(row, entry.columnIndex)
		if err != nil {
			rowsMaterialized.WithLabelValues(outcomeError).Inc()
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypePropertyWrite,
				stringpool.Sprintf("failed to convert column %d for property %s",
					entry.columnIndex, entry.descriptor.Name)).
				WithDetail("property", entry.descriptor.Name).
				WithDetail("column", entry.columnIndex)
		}

		if err := writeProperty(target, entry.descriptor, value); err != nil {
			rowsMaterialized.WithLabelValues(outcomeError).Inc()
			return nil, err
		}
	}

	rowsMaterialized.WithLabelValues(outcomeSuccess).Inc()
	return instance.Interface(), nil
}

// writeProperty assigns a converted value to one struct field, reporting
// failures with the property attributed.
func writeProperty(target reflect.Value, desc PropertyDescriptor, value interface{}) error {
	field := target.Field(desc.Index)

	if !field.CanSet() {
		return rowbinderrors.Newf(rowbinderrors.ErrorTypePropertyWrite,
			"property %s is not settable", desc.Name).
			WithDetail("property", desc.Name)
	}

	if value == nil {
		switch field.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			field.Set(reflect.Zero(field.Type()))
			return nil
		default:
			// A null column value cannot land in a non-nilable slot; report
			// it as a distinct, attributed failure rather than a zero-value
			// substitution.
			return rowbinderrors.Newf(rowbinderrors.ErrorTypePropertyWrite,
				"null value for non-nilable property %s (%s)", desc.Name, field.Type().String()).
				WithDetail("property", desc.Name)
		}
	}

	rv := reflect.ValueOf(value)

	// Pointer targets take the value one level in.
	if field.Kind() == reflect.Ptr && rv.Type() == field.Type().Elem() {
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(rv)
		field.Set(ptr)
		return nil
	}

	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()) && convertibleKinds(rv.Kind(), field.Kind()):
		field.Set(rv.Convert(field.Type()))
	default:
		return rowbinderrors.Newf(rowbinderrors.ErrorTypePropertyWrite,
			"cannot write %s value to property %s (%s)",
			rv.Type().String(), desc.Name, field.Type().String()).
			WithDetail("property", desc.Name)
	}

	return nil
}

// convertibleKinds restricts reflect conversions to the safe scalar ones.
// Blanket ConvertibleTo would happily turn an int64 into a string, which is
// never what a column mapping means.
func convertibleKinds(from, to reflect.Kind) bool {
	return isNumeric(from) && isNumeric(to) ||
		from == reflect.String && to == reflect.String
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
