// Package mapper implements the reflective row-mapping engine: property
// catalogs introspected once per target type, a converter registry, a plan
// resolver that matches result columns to properties under configurable
// naming rules, and a row materializer that applies a resolved plan per row.
//
// Plans and catalogs are cached and safe for concurrent read-only reuse.
// Resolution happens once per distinct (type, prefix, column signature)
// shape; repeated rows reuse the cached plan without touching reflection.
package mapper

import (
	"reflect"
	"sync"

	"github.com/rowbind/rowbind/pkg/config"
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// ColumnTag is the struct tag consulted for explicit column-name overrides.
// A tag value of "-" excludes the field from mapping.
const ColumnTag = "db"

// PropertyDescriptor describes one mappable field of a target type.
// Immutable once introspected.
type PropertyDescriptor struct {
	// Name is the Go field name
	Name string
	// Type is the declared field type
	Type reflect.Type
	// Index is the field's position within the struct
	Index int
	// Readable and Writable report whether the field is accessible through
	// reflection; only exported fields are writable
	Readable bool
	Writable bool
	// ColumnOverride is the explicit column name from the db tag, if any
	ColumnOverride string
}

// EffectiveColumnName returns the name the matcher compares column labels
// against: the explicit override when present, else the field name.
func (d PropertyDescriptor) EffectiveColumnName() string {
	if d.ColumnOverride != "" {
		return d.ColumnOverride
	}
	return d.Name
}

// Catalog holds the ordered property descriptors of one target type.
// One catalog exists per distinct type for the process lifetime.
type Catalog struct {
	targetType  reflect.Type
	descriptors []PropertyDescriptor
}

// catalogCache maps reflect.Type to *Catalog. Insert-if-absent discipline:
// concurrent introspection of the same new type may run redundantly, but the
// cache converges to one canonical entry.
var catalogCache sync.Map

// Introspect returns the property catalog for a target type, building and
// caching it on first access. Pointer types are unwrapped. Fails when the
// type is not a plain struct shape.
func Introspect(t reflect.Type) (*Catalog, error) {
	if t == nil {
		return nil, rowbinderrors.New(rowbinderrors.ErrorTypeIntrospection, "target type is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, rowbinderrors.Newf(rowbinderrors.ErrorTypeIntrospection,
			"target type %s is not a struct", t.String()).
			WithDetail("kind", t.Kind().String())
	}

	if cached, ok := catalogCache.Load(t); ok {
		return cached.(*Catalog), nil
	}

	catalog := buildCatalog(t)

	actual, _ := catalogCache.LoadOrStore(t, catalog)
	return actual.(*Catalog), nil
}

func buildCatalog(t reflect.Type) *Catalog {
	descriptors := make([]PropertyDescriptor, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		override := ""
		if tag, ok := field.Tag.Lookup(ColumnTag); ok {
			if tag == "-" {
				continue
			}
			override = tag
		}

		exported := field.IsExported()
		descriptors = append(descriptors, PropertyDescriptor{
			Name:           field.Name,
			Type:           field.Type,
			Index:          i,
			Readable:       exported,
			Writable:       exported,
			ColumnOverride: override,
		})
	}

	return &Catalog{targetType: t, descriptors: descriptors}
}

// TargetType returns the struct type this catalog describes.
func (c *Catalog) TargetType() reflect.Type {
	return c.targetType
}

// Descriptors returns the catalog's descriptors in declaration order.
// The returned slice must not be mutated.
func (c *Catalog) Descriptors() []PropertyDescriptor {
	return c.descriptors
}

// DescriptorForColumn finds the first writable descriptor whose effective
// column name matches the (possibly prefix-stripped) column name under the
// given rules. First match wins; descriptor iteration order is catalog order.
func (c *Catalog) DescriptorForColumn(columnName string, rules config.NamingRules) (PropertyDescriptor, bool) {
	for _, desc := range c.descriptors {
		if !desc.Writable {
			continue
		}
		if rules.ColumnNameMatches(columnName, desc.EffectiveColumnName()) {
			return desc, true
		}
	}
	return PropertyDescriptor{}, false
}
