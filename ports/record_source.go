package ports

import (
	"context"
)

// Record is one raw, unaggregated row read from a datasource.
type Record = map[string]any

// RecordSource reads raw records from a datasource. columns restricts the
// returned keys; sources reject columns they do not have.
type RecordSource interface {
	FetchRecords(ctx context.Context, source string, columns []string) ([]Record, error)
}
