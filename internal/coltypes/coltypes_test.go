package coltypes

import (
	"testing"
	"time"

	"boxplot/domain/chart"

	"github.com/stretchr/testify/assert"
)

func TestColumnTypesPrefersDeclaredTypes(t *testing.T) {
	q := chart.QueryData{
		ColNames: []string{"ds", "region"},
		ColTypes: []chart.GenericDataType{chart.Temporal, chart.String},
		Data: []chart.ResultRow{
			{"ds": float64(1700000000000), "region": "west", "flag": true, "sales__min": 1.0},
		},
	}

	types := Resolver{}.ColumnTypes(q)
	assert.Equal(t, chart.Temporal, types["ds"])
	assert.Equal(t, chart.String, types["region"])
	assert.Equal(t, chart.Boolean, types["flag"])
	assert.Equal(t, chart.Numeric, types["sales__min"])
}

func TestColumnTypesInfersFromFirstNonNullValue(t *testing.T) {
	q := chart.QueryData{
		Data: []chart.ResultRow{
			{"day": nil, "n": 3},
			{"day": time.Now(), "n": 4},
		},
	}

	types := Resolver{}.ColumnTypes(q)
	assert.Equal(t, chart.Temporal, types["day"])
	assert.Equal(t, chart.Numeric, types["n"])
}
