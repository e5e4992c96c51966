package db

import (
	"context"
	"database/sql"

	"github.com/tordrt/erdviewer/internal/catalog"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryRows runs query and returns every result row as positional values.
// Byte slices are copied into strings since the driver may reuse them.
func queryRows(ctx context.Context, q queryer, query string, args ...any) ([]catalog.Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []catalog.Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, catalog.Row(values))
	}

	return result, rows.Err()
}
