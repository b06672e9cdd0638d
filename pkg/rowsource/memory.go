package rowsource

// MemoryRow is an in-memory Row. It is the canonical prefetched
// representation produced by the driver adapters and the natural fixture type
// for tests.
type MemoryRow struct {
	labels []string
	values []interface{}
}

// NewMemoryRow creates a Row from parallel label and value slices. The slices
// are retained, not copied; callers hand over ownership.
func NewMemoryRow(labels []string, values []interface{}) *MemoryRow {
	return &MemoryRow{labels: labels, values: values}
}

// ColumnCount returns the number of columns.
func (r *MemoryRow) ColumnCount() int {
	return len(r.labels)
}

// ColumnLabel returns the label at the 1-indexed position.
func (r *MemoryRow) ColumnLabel(index int) (string, error) {
	if index < 1 || index > len(r.labels) {
		return "", indexError(index, len(r.labels))
	}
	return r.labels[index-1], nil
}

// Value returns the raw value at the 1-indexed position.
func (r *MemoryRow) Value(index int) (interface{}, error) {
	if index < 1 || index > len(r.values) {
		return nil, indexError(index, len(r.values))
	}
	return r.values[index-1], nil
}
