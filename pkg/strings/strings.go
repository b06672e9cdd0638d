// Package strings provides low-allocation string utilities for rowbind:
// pooled builders, a pooled Sprintf, and the column/field name shape
// conversions used by the naming matcher.
package strings

import (
	"fmt"
	stdstrings "strings"
	"sync"
	"unicode"
	"unsafe"
)

// BytesToString converts byte slice to string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// Clone creates a copy of a string (useful when you need to own the memory).
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

// Builder provides efficient string building on a reusable buffer.
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Len returns the length of the built string.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Builder pool for message formatting. Mapping error paths format column and
// field names frequently; pooling keeps those paths allocation-light.
var builderPool = &sync.Pool{
	New: func() interface{} {
		return NewBuilder(256)
	},
}

// GetBuilder retrieves a pooled builder.
func GetBuilder() *Builder {
	builder := builderPool.Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to the pool.
func PutBuilder(builder *Builder) {
	if builder == nil {
		return
	}
	builder.Reset()
	builderPool.Put(builder)
}

// Sprintf provides a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	fmt.Fprintf(builder, format, args...)

	return Clone(builder.String())
}

// Concat efficiently concatenates strings using a pooled builder.
func Concat(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	for _, s := range parts {
		builder.WriteString(s)
	}

	return Clone(builder.String())
}

// EqualFold reports whether a and b are equal under case folding. Kept here
// so the matcher has a single import for all of its name comparisons.
func EqualFold(a, b string) bool {
	return stdstrings.EqualFold(a, b)
}

// SnakeFromCamel converts a camelCase or PascalCase name to snake_case:
// "userId" -> "user_id", "HTTPStatus" -> "http_status". Names already in
// snake_case pass through lowered.
func SnakeFromCamel(name string) string {
	if name == "" {
		return ""
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Boundary before an upper rune, except at the start and inside
			// an acronym run ("HTTPStatus" breaks before "Status" only).
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				builder.WriteByte('_')
			}
			builder.WriteString(string(unicode.ToLower(r)))
			continue
		}
		builder.WriteString(string(r))
	}

	return Clone(builder.String())
}

// HasPrefixFold reports whether s begins with prefix ignoring case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && EqualFold(s[:len(prefix)], prefix)
}
