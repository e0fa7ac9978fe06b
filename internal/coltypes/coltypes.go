// Package coltypes resolves the generic type of query result columns.
package coltypes

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"boxplot/domain/chart"
	"boxplot/ports"
)

// Resolver maps result columns to generic types. Declared coltypes win;
// columns without one are inferred from their first non-null value.
type Resolver struct{}

var _ ports.ColumnTypeResolver = Resolver{}

// ColumnTypes implements ports.ColumnTypeResolver.
func (Resolver) ColumnTypes(q chart.QueryData) map[string]chart.GenericDataType {
	types := make(map[string]chart.GenericDataType, len(q.ColNames))
	for i, name := range q.ColNames {
		if i < len(q.ColTypes) {
			types[name] = q.ColTypes[i]
		}
	}

	for _, row := range q.Data {
		for name, v := range row {
			if _, known := types[name]; known || v == nil {
				continue
			}
			if strings.Contains(name, "__") {
				// Pre-aggregated statistic columns are numeric by construction.
				types[name] = chart.Numeric
				continue
			}
			types[name] = Infer(v)
		}
	}
	return types
}

// Infer classifies a single non-null value.
func Infer(v any) chart.GenericDataType {
	switch v.(type) {
	case time.Time, *time.Time:
		return chart.Temporal
	case bool:
		return chart.Boolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return chart.Numeric
	default:
		return chart.String
	}
}
