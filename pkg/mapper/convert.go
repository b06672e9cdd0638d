package mapper

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
	"github.com/rowbind/rowbind/pkg/rowsource"
	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// coerceFunc turns a non-nil raw column value into a typed value.
type coerceFunc func(raw interface{}) (interface{}, error)

// columnConverter lifts a value coercion into a Converter. Nil column values
// pass through as nil; the materializer decides whether the target property
// can hold them.
func columnConverter(coerce coerceFunc) Converter {
	return ConverterFunc(func(row rowsource.Row, index int) (interface{}, error) {
		raw, err := row.Value(index)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		return coerce(raw)
	})
}

func coerceError(raw interface{}, target string) error {
	return rowbinderrors.New(rowbinderrors.ErrorTypeData,
		stringpool.Sprintf("cannot convert %T value to %s", raw, target))
}

func coerceString(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return nil, coerceError(raw, "string")
}

func coerceInt(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot parse integer column value")
		}
		return n, nil
	case []byte:
		return coerceInt(string(v))
	}
	return nil, coerceError(raw, "int64")
}

func coerceUint(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	case int64:
		if v < 0 {
			return nil, coerceError(raw, "uint64")
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return nil, coerceError(raw, "uint64")
		}
		return uint64(v), nil
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot parse unsigned column value")
		}
		return n, nil
	case []byte:
		return coerceUint(string(v))
	}
	return nil, coerceError(raw, "uint64")
}

func coerceFloat(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot parse float column value")
		}
		return f, nil
	case []byte:
		return coerceFloat(string(v))
	}
	return nil, coerceError(raw, "float64")
}

func coerceBool(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot parse bool column value")
		}
		return b, nil
	case []byte:
		return coerceBool(string(v))
	}
	return nil, coerceError(raw, "bool")
}

// timeLayouts are tried in order for textual timestamp columns. Drivers that
// parse timestamps natively never hit this path.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return nil, rowbinderrors.New(rowbinderrors.ErrorTypeData,
			stringpool.Sprintf("cannot parse time column value %q", v))
	case []byte:
		return coerceTime(string(v))
	}
	return nil, coerceError(raw, "time.Time")
}

func coerceBytes(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, coerceError(raw, "[]byte")
}

func coerceUUID(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot parse uuid column value")
		}
		return id, nil
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err != nil {
				return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeData, "cannot read uuid column value")
			}
			return id, nil
		}
		return coerceUUID(string(v))
	}
	return nil, coerceError(raw, "uuid.UUID")
}

func registerBuiltins(r *Registry) {
	intConverter := columnConverter(coerceInt)
	uintConverter := columnConverter(coerceUint)
	floatConverter := columnConverter(coerceFloat)

	builtins := map[reflect.Type]Converter{
		reflect.TypeOf(""):          columnConverter(coerceString),
		reflect.TypeOf(int(0)):      intConverter,
		reflect.TypeOf(int8(0)):     intConverter,
		reflect.TypeOf(int16(0)):    intConverter,
		reflect.TypeOf(int32(0)):    intConverter,
		reflect.TypeOf(int64(0)):    intConverter,
		reflect.TypeOf(uint(0)):     uintConverter,
		reflect.TypeOf(uint8(0)):    uintConverter,
		reflect.TypeOf(uint16(0)):   uintConverter,
		reflect.TypeOf(uint32(0)):   uintConverter,
		reflect.TypeOf(uint64(0)):   uintConverter,
		reflect.TypeOf(float32(0)):  floatConverter,
		reflect.TypeOf(float64(0)):  floatConverter,
		reflect.TypeOf(false):       columnConverter(coerceBool),
		reflect.TypeOf(time.Time{}): columnConverter(coerceTime),
		reflect.TypeOf([]byte(nil)): columnConverter(coerceBytes),
		reflect.TypeOf(uuid.UUID{}): columnConverter(coerceUUID),
	}

	for t, c := range builtins {
		r.converters[t] = c
	}
}
