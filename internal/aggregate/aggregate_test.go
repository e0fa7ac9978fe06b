package aggregate

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxplot/domain/chart"
	"boxplot/domain/core"
	"boxplot/internal/boxplot"
	"boxplot/ports"
)

func TestSummarizeTukey(t *testing.T) {
	box, err := Summarize([]float64{5, 1, 100, 3, 2, 4}, WhiskerTukey)
	require.NoError(t, err)

	assert.Equal(t, 1.0, box.Min)
	assert.Equal(t, 2.25, box.Q1)
	assert.Equal(t, 3.5, box.Median)
	assert.Equal(t, 4.75, box.Q3)
	assert.Equal(t, 5.0, box.Max)
	assert.InDelta(t, 115.0/6, box.Mean, 1e-9)
	assert.Equal(t, 6.0, box.Count)
	assert.Equal(t, []float64{100}, box.Outliers)
}

func TestSummarizeOutliersAboveThenBelow(t *testing.T) {
	box, err := Summarize([]float64{-100, 10, 11, 12, 13, 14, 200}, WhiskerTukey)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, -100}, box.Outliers)
	assert.Equal(t, 10.0, box.Min)
	assert.Equal(t, 14.0, box.Max)
}

func TestSummarizeMinMaxHasNoOutliers(t *testing.T) {
	box, err := Summarize([]float64{1, 2, 3, 4, 5, 100}, WhiskerMinMax)
	require.NoError(t, err)
	assert.Equal(t, 1.0, box.Min)
	assert.Equal(t, 100.0, box.Max)
	assert.Empty(t, box.Outliers)
	assert.NotNil(t, box.Outliers)
}

func TestSummarizePercentileWhiskers(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	box, err := Summarize(values, Whisker9To91)
	require.NoError(t, err)
	assert.InDelta(t, 9.91, box.Min, 1e-9)
	assert.InDelta(t, 91.09, box.Max, 1e-9)
	assert.Len(t, box.Outliers, 18)
	assert.Equal(t, 92.0, box.Outliers[0])
	assert.Equal(t, 1.0, box.Outliers[9])
}

func TestSummarizeQuartilesInterpolateLikePandas(t *testing.T) {
	tests := []struct {
		values []float64
		q1, q3 float64
	}{
		{[]float64{1, 2, 3, 4}, 1.75, 3.25},
		{[]float64{1, 2, 3, 4, 5}, 2, 4},
		{[]float64{7}, 7, 7},
		{[]float64{1, 3}, 1.5, 2.5},
	}
	for _, tt := range tests {
		box, err := Summarize(tt.values, WhiskerMinMax)
		require.NoError(t, err)
		assert.InDelta(t, tt.q1, box.Q1, 1e-9, "%v", tt.values)
		assert.InDelta(t, tt.q3, box.Q3, 1e-9, "%v", tt.values)
	}
}

func TestSummarizeDropsNonFiniteValues(t *testing.T) {
	box, err := Summarize([]float64{1, 2, 3, math.Inf(1), math.NaN(), math.Inf(-1)}, WhiskerTukey)
	require.NoError(t, err)
	assert.Equal(t, 3.0, box.Count)
	assert.Equal(t, 2.0, box.Mean)
	assert.Equal(t, 3.0, box.Max)
	assert.Empty(t, box.Outliers)

	_, err = Summarize([]float64{math.Inf(1)}, WhiskerTukey)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestAggregateSkipsInfiniteCells(t *testing.T) {
	records := []ports.Record{
		{"region": "west", "sales": 1.0},
		{"region": "west", "sales": "Inf"},
		{"region": "west", "sales": math.Inf(-1)},
		{"region": "west", "sales": "3"},
	}
	rows, err := Aggregate(records, Request{Groupby: []string{"region"}, Metrics: []chart.MetricSpec{{Name: "sales"}}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0]["sales__count"])
	assert.Equal(t, 3.0, rows[0]["sales__max"])

	out, err := boxplot.New(nil, nil, nil).Transform(chart.ChartProps{
		FormData:    chart.FormData{Groupby: []string{"region"}, Metrics: []chart.MetricSpec{{Name: "sales"}}},
		QueriesData: []chart.QueryData{{Data: rows}},
	})
	require.NoError(t, err)
	_, err = json.Marshal(out.Option)
	assert.NoError(t, err)
}

func TestSummarizeErrors(t *testing.T) {
	_, err := Summarize(nil, WhiskerTukey)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = Summarize([]float64{1}, Whisker("3/97 percentiles"))
	assert.ErrorIs(t, err, core.ErrInvalidWhisker)
}

func TestParseWhisker(t *testing.T) {
	tests := []struct {
		in      string
		want    Whisker
		wantErr bool
	}{
		{"", WhiskerTukey, false},
		{"Tukey", WhiskerTukey, false},
		{"Min/max (no outliers)", WhiskerMinMax, false},
		{"2/98 percentiles", Whisker2To98, false},
		{"tukey", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWhisker(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, core.ErrInvalidWhisker))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func salesRecords() []ports.Record {
	return []ports.Record{
		{"region": "west", "sales": 1.0},
		{"region": "east", "sales": "10"},
		{"region": "west", "sales": 2},
		{"region": "west", "sales": nil},
		{"region": "east", "sales": 20.0},
		{"region": nil, "sales": 7.0},
		{"region": "west", "sales": math.NaN()},
		{"region": "west", "sales": 3.0},
	}
}

func TestAggregateGroupsInFirstAppearanceOrder(t *testing.T) {
	rows, err := Aggregate(salesRecords(), Request{
		Groupby: []string{"region"},
		Metrics: []chart.MetricSpec{{Name: "sales"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "west", rows[0]["region"])
	assert.Equal(t, "east", rows[1]["region"])
	assert.Nil(t, rows[2]["region"])

	assert.Equal(t, 3.0, rows[0]["sales__count"])
	assert.Equal(t, 2.0, rows[0]["sales__median"])
	assert.Equal(t, 15.0, rows[1]["sales__mean"])
	assert.Equal(t, []float64{}, rows[2]["sales__outliers"])
}

func TestAggregateAdhocMetricUsesLabel(t *testing.T) {
	rows, err := Aggregate(salesRecords(), Request{
		Metrics: []chart.MetricSpec{{Label: "Total", Column: "sales", Aggregate: "SUM"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6.0, rows[0]["Total__count"])
}

func TestAggregateMissingValuesForGroup(t *testing.T) {
	records := []ports.Record{{"region": "west", "sales": nil}}
	_, err := Aggregate(records, Request{Groupby: []string{"region"}, Metrics: []chart.MetricSpec{{Name: "sales"}}})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestAggregateRejectsBadRequests(t *testing.T) {
	_, err := Aggregate(salesRecords(), Request{Metrics: []chart.MetricSpec{{Name: "sales"}}, Whisker: "nope"})
	assert.ErrorIs(t, err, core.ErrInvalidWhisker)

	_, err = Aggregate(salesRecords(), Request{})
	assert.ErrorIs(t, err, core.ErrInvalidPayload)
}

func TestRequestColumns(t *testing.T) {
	req := Request{
		Groupby: []string{"region", "year"},
		Metrics: []chart.MetricSpec{{Name: "sales"}, {Label: "x", Column: "region", Aggregate: "COUNT"}},
	}
	assert.Equal(t, []string{"region", "year", "sales"}, req.Columns())
}

func TestAggregateOutputFeedsTransform(t *testing.T) {
	fd := chart.FormData{Groupby: []string{"region"}, Metrics: []chart.MetricSpec{{Name: "sales"}}}
	rows, err := Aggregate(salesRecords(), RequestFor(fd))
	require.NoError(t, err)

	out, err := boxplot.New(nil, nil, nil).Transform(chart.ChartProps{
		FormData:    fd,
		QueriesData: []chart.QueryData{{Data: rows}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"west", "east", "<NULL>"}, out.Option.XAxis.Data)
}
