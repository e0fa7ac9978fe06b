package boxplot

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

// ReadStatistics builds the statistics bundle of metric from row. Scalar
// statistics must be present, numeric and finite; a missing outlier list
// reads as empty. Values are taken as-is: quartile ordering is not checked.
func ReadStatistics(row chart.ResultRow, metric string, rowIndex int) (chart.BoxPlotValue, error) {
	var scalars [7]float64
	for i, field := range chart.StatisticFields {
		raw, ok := row[chart.StatKey(metric, field)]
		if !ok || raw == nil {
			return chart.BoxPlotValue{}, &core.MissingStatisticError{Metric: metric, Field: field, Row: rowIndex}
		}
		v, ok := toFloat(raw)
		if !ok {
			return chart.BoxPlotValue{}, &core.MissingStatisticError{Metric: metric, Field: field, Row: rowIndex, Reason: "not numeric"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chart.BoxPlotValue{}, &core.MissingStatisticError{Metric: metric, Field: field, Row: rowIndex, Reason: "not finite"}
		}
		scalars[i] = v
	}

	outliers, err := readOutliers(row[chart.StatKey(metric, chart.StatOutliers)])
	if err != nil {
		return chart.BoxPlotValue{}, &core.MissingStatisticError{Metric: metric, Field: chart.StatOutliers, Row: rowIndex, Reason: err.Error()}
	}

	return chart.BoxPlotValue{
		Min:      scalars[0],
		Q1:       scalars[1],
		Median:   scalars[2],
		Q3:       scalars[3],
		Max:      scalars[4],
		Mean:     scalars[5],
		Count:    scalars[6],
		Outliers: outliers,
	}, nil
}

type outlierError string

func (e outlierError) Error() string { return string(e) }

func readOutliers(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case nil:
		return []float64{}, nil
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, outlierError("outlier is not finite")
			}
		}
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, outlierError("outlier is not numeric")
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, outlierError("outlier is not finite")
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, outlierError("outliers is not a list")
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
