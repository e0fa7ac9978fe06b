// Package aggregate computes the pre-aggregated box-plot statistics a chart
// query returns: per group and metric, the whisker bounds, quartiles,
// median, mean, count and outliers.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"boxplot/domain/chart"
	"boxplot/domain/core"
	"boxplot/internal"
	"boxplot/ports"
)

// Whisker selects how the whisker ends of a box are placed.
type Whisker string

const (
	WhiskerTukey  Whisker = "Tukey"
	WhiskerMinMax Whisker = "Min/max (no outliers)"
	Whisker2To98  Whisker = "2/98 percentiles"
	Whisker9To91  Whisker = "9/91 percentiles"
)

// DefaultWhisker is used when none is configured.
const DefaultWhisker = WhiskerTukey

var percentileWhiskers = map[Whisker][2]float64{
	Whisker2To98: {0.02, 0.98},
	Whisker9To91: {0.09, 0.91},
}

// ParseWhisker validates a whisker option. The empty string selects Tukey.
func ParseWhisker(option string) (Whisker, error) {
	switch w := Whisker(option); w {
	case "":
		return DefaultWhisker, nil
	case WhiskerTukey, WhiskerMinMax, Whisker2To98, Whisker9To91:
		return w, nil
	default:
		return "", core.NewWhiskerError(option)
	}
}

// Request describes one aggregation.
type Request struct {
	Groupby []string
	Metrics []chart.MetricSpec
	Whisker string
}

// RequestFor builds a Request from saved chart configuration.
func RequestFor(fd chart.FormData) Request {
	return Request{Groupby: fd.Groupby, Metrics: fd.Metrics, Whisker: fd.WhiskerOptions}
}

// Columns lists the source columns a request reads, groupby first.
func (r Request) Columns() []string {
	cols := make([]string, 0, len(r.Groupby)+len(r.Metrics))
	seen := make(map[string]bool)
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, g := range r.Groupby {
		add(g)
	}
	for _, m := range r.Metrics {
		add(m.SourceColumn())
	}
	return cols
}

type group struct {
	keys   []any
	values map[string][]float64
}

// Aggregate groups records by the groupby columns, in order of first
// appearance, and summarizes every metric of every group into one result
// row keyed <metric>__<stat>. Null and NaN values are skipped; a group left
// without values for a metric fails with core.ErrInsufficientData.
func Aggregate(records []ports.Record, req Request) ([]chart.ResultRow, error) {
	whisker, err := ParseWhisker(req.Whisker)
	if err != nil {
		return nil, err
	}
	if len(req.Metrics) == 0 {
		return nil, fmt.Errorf("%w: no metrics requested", core.ErrInvalidPayload)
	}

	logger := internal.DefaultLogger.With("Aggregate")

	index := make(map[string]int)
	var groups []*group
	for _, rec := range records {
		keys := make([]any, len(req.Groupby))
		for i, col := range req.Groupby {
			keys[i] = rec[col]
		}
		k := groupKey(keys)
		pos, ok := index[k]
		if !ok {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, &group{keys: keys, values: make(map[string][]float64)})
		}
		g := groups[pos]
		for _, m := range req.Metrics {
			v, ok := Numeric(rec[m.SourceColumn()])
			if !ok || !finite(v) {
				continue
			}
			label := m.MetricLabel()
			g.values[label] = append(g.values[label], v)
		}
	}

	rows := make([]chart.ResultRow, 0, len(groups))
	for _, g := range groups {
		row := make(chart.ResultRow, len(req.Groupby)+len(req.Metrics)*8)
		for i, col := range req.Groupby {
			row[col] = g.keys[i]
		}
		for _, m := range req.Metrics {
			label := m.MetricLabel()
			box, err := Summarize(g.values[label], whisker)
			if err != nil {
				return nil, fmt.Errorf("group %v metric %s: %w", g.keys, label, err)
			}
			setStatistics(row, label, box)
		}
		rows = append(rows, row)
	}

	logger.Debug("aggregated %d records into %d groups (whisker %s)", len(records), len(rows), whisker)
	return rows, nil
}

func setStatistics(row chart.ResultRow, metric string, box chart.BoxPlotValue) {
	row[chart.StatKey(metric, chart.StatMin)] = box.Min
	row[chart.StatKey(metric, chart.StatQ1)] = box.Q1
	row[chart.StatKey(metric, chart.StatMedian)] = box.Median
	row[chart.StatKey(metric, chart.StatQ3)] = box.Q3
	row[chart.StatKey(metric, chart.StatMax)] = box.Max
	row[chart.StatKey(metric, chart.StatMean)] = box.Mean
	row[chart.StatKey(metric, chart.StatCount)] = box.Count
	row[chart.StatKey(metric, chart.StatOutliers)] = box.Outliers
}

// Summarize computes the box statistics of values. Min and Max hold the
// whisker ends, not the extremes of the data. NaN and infinite values are
// dropped and not counted.
func Summarize(values []float64, whisker Whisker) (chart.BoxPlotValue, error) {
	values = finiteValues(values)
	if len(values) == 0 {
		return chart.BoxPlotValue{}, core.ErrInsufficientData
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	median, err := stats.Median(sorted)
	if err != nil {
		return chart.BoxPlotValue{}, err
	}
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)

	low, high, err := whiskers(sorted, q1, q3, whisker)
	if err != nil {
		return chart.BoxPlotValue{}, err
	}

	// Outliers above the high whisker come first, then those below the low.
	outliers := []float64{}
	for _, v := range values {
		if v > high {
			outliers = append(outliers, v)
		}
	}
	for _, v := range values {
		if v < low {
			outliers = append(outliers, v)
		}
	}

	return chart.BoxPlotValue{
		Min:      low,
		Q1:       q1,
		Median:   median,
		Q3:       q3,
		Max:      high,
		Mean:     mean,
		Count:    float64(len(values)),
		Outliers: outliers,
	}, nil
}

func whiskers(sorted []float64, q1, q3 float64, whisker Whisker) (low, high float64, err error) {
	switch whisker {
	case WhiskerTukey:
		iqr := q3 - q1
		upper, lower := q3+1.5*iqr, q1-1.5*iqr
		low, high = sorted[len(sorted)-1], sorted[0]
		for _, v := range sorted {
			if v >= lower {
				low = v
				break
			}
		}
		for i := len(sorted) - 1; i >= 0; i-- {
			if sorted[i] <= upper {
				high = sorted[i]
				break
			}
		}
		return low, high, nil
	case WhiskerMinMax:
		return sorted[0], sorted[len(sorted)-1], nil
	default:
		bounds, ok := percentileWhiskers[whisker]
		if !ok {
			return 0, 0, core.NewWhiskerError(string(whisker))
		}
		return quantile(sorted, bounds[0]), quantile(sorted, bounds[1]), nil
	}
}

// quantile interpolates linearly between the order statistics around
// position (n-1)p of sorted, the default method of pandas and numpy.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteValues(values []float64) []float64 {
	for _, v := range values {
		if !finite(v) {
			out := make([]float64, 0, len(values))
			for _, v := range values {
				if finite(v) {
					out = append(out, v)
				}
			}
			return out
		}
	}
	return values
}

// Numeric reads a record value as a number. Numeric strings are accepted,
// as spreadsheets and CSV files carry them.
func Numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case []byte:
		return Numeric(string(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func groupKey(keys []any) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if k == nil {
			b.WriteString("\x00null")
			continue
		}
		fmt.Fprintf(&b, "%T:%v", k, k)
	}
	return b.String()
}
