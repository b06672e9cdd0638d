package rowsource

import (
	"github.com/jackc/pgx/v5"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// FetchAllPgx drains a pgx result set into prefetched rows. pgx decodes
// column values to native Go types, so no normalization pass is needed.
func FetchAllPgx(rows pgx.Rows) ([]Row, error) {
	fields := rows.FieldDescriptions()
	labels := make([]string, len(fields))
	for i, fd := range fields {
		labels[i] = fd.Name
	}

	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "failed to decode row values")
		}
		out = append(out, NewMemoryRow(labels, values))
	}

	if err := rows.Err(); err != nil {
		return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "result set iteration failed")
	}

	return out, nil
}
