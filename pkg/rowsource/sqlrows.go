package rowsource

import (
	"database/sql"

	"github.com/rowbind/rowbind/pkg/rowbinderrors"
)

// FetchAll drains a database/sql result set into prefetched rows. The rows
// cursor is fully consumed but not closed; closing stays with the caller that
// opened it.
func FetchAll(rows *sql.Rows) ([]Row, error) {
	labels, err := rows.Columns()
	if err != nil {
		return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "failed to read column labels")
	}

	var out []Row
	for rows.Next() {
		values := make([]interface{}, len(labels))
		dest := make([]interface{}, len(labels))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "failed to scan row")
		}

		// database/sql hands back []byte for text columns on some drivers;
		// normalize to string so converters see one shape.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		out = append(out, NewMemoryRow(labels, values))
	}

	if err := rows.Err(); err != nil {
		return nil, rowbinderrors.Wrap(err, rowbinderrors.ErrorTypeQuery, "result set iteration failed")
	}

	return out, nil
}
