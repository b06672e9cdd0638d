// Package rowsource defines the result-row abstraction consumed by the
// mapping engine, plus adapters that prefetch rows from database/sql and pgx
// result sets. Prefetching decouples the mapping logic from cursor movement:
// a Row is plain data, so materialization never blocks on I/O.
//
// Column access is 1-indexed throughout, matching result-set metadata
// conventions.
package rowsource

import (
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// Row is a single prefetched result row with its column metadata.
// Implementations must be safe for concurrent reads.
type Row interface {
	// ColumnCount returns the number of columns in the result set.
	ColumnCount() int
	// ColumnLabel returns the label of the column at the 1-indexed position.
	ColumnLabel(index int) (string, error)
	// Value returns the raw value of the column at the 1-indexed position.
	Value(index int) (interface{}, error)
}

// Labels collects all column labels of a row in order. The returned slice is
// the row's column signature for plan-cache purposes.
func Labels(row Row) ([]string, error) {
	labels := make([]string, row.ColumnCount())
	for i := 1; i <= row.ColumnCount(); i++ {
		label, err := row.ColumnLabel(i)
		if err != nil {
			return nil, err
		}
		labels[i-1] = label
	}
	return labels, nil
}

func indexError(index, count int) error {
	return rowbinderrors.Newf(rowbinderrors.ErrorTypeData,
		"column index %d out of range [1, %d]", index, count)
}
