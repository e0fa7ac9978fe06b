package sqlstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"boxplot/domain/core"
	"boxplot/internal/errors"
	"boxplot/ports"
)

// identifier matches plain and schema-qualified SQL names.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// QuerySource reads raw records from a table. The source of a saved chart
// is the table name.
type QuerySource struct {
	db    *sqlx.DB
	limit int
}

var _ ports.RecordSource = (*QuerySource)(nil)

// NewQuerySource creates a source reading at most limit rows per fetch
// (unbounded when limit <= 0).
func NewQuerySource(db *sqlx.DB, limit int) *QuerySource {
	return &QuerySource{db: db, limit: limit}
}

// FetchRecords implements ports.RecordSource. Table and column names are
// validated and quoted; values never reach the statement text.
func (s *QuerySource) FetchRecords(ctx context.Context, table string, columns []string) ([]ports.Record, error) {
	query, err := s.selectStatement(table, columns)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to query %s", table), err)
	}
	defer rows.Close()

	var records []ports.Record
	for rows.Next() {
		rec := make(map[string]any)
		if err := rows.MapScan(rec); err != nil {
			return nil, errors.DatabaseError("failed to scan record", err)
		}
		for k, v := range rec {
			// Drivers return text as []byte.
			if b, ok := v.([]byte); ok {
				rec[k] = string(b)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("failed to read records", err)
	}
	return records, nil
}

func (s *QuerySource) selectStatement(table string, columns []string) (string, error) {
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("%w: invalid table name %q", core.ErrInvalidPayload, table)
	}
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			if !identifier.MatchString(c) || strings.Contains(c, ".") {
				return "", core.NewUnknownColumnError(c)
			}
			quoted[i] = quote(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	query := "SELECT " + cols + " FROM " + quote(table)
	if s.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", s.limit)
	}
	return query, nil
}

func quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
