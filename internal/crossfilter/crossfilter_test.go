package crossfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxplot/domain/chart"
)

var labels = chart.LabelMap{
	"west, 2020":   {"west", 2020.0},
	"east, 2020":   {"east", 2020.0},
	"<NULL>, 2021": {nil, 2021.0},
}

func TestBuildDataMask(t *testing.T) {
	mask := BuildDataMask(labels, []string{"region", "year"}, []string{"west, 2020", "east, 2020"})

	assert.Equal(t, []chart.Filter{
		{Col: "region", Op: OpIn, Val: []any{"west", "east"}},
		{Col: "year", Op: OpIn, Val: []any{2020.0, 2020.0}},
	}, mask.ExtraFormData.Filters)
	assert.Equal(t, [][]any{{"west", 2020.0}, {"east", 2020.0}}, mask.FilterState.Value)
	assert.Equal(t, []string{"west, 2020", "east, 2020"}, mask.FilterState.SelectedValues)
}

func TestBuildDataMaskNullColumn(t *testing.T) {
	mask := BuildDataMask(labels, []string{"region", "year"}, []string{"<NULL>, 2021"})
	require.Len(t, mask.ExtraFormData.Filters, 2)
	assert.Equal(t, chart.Filter{Col: "region", Op: OpIsNull}, mask.ExtraFormData.Filters[0])
}

func TestBuildDataMaskClears(t *testing.T) {
	for _, selected := range [][]string{nil, {}, {"gone"}} {
		mask := BuildDataMask(labels, []string{"region"}, selected)
		assert.Empty(t, mask.ExtraFormData.Filters)
		assert.Nil(t, mask.FilterState.Value)
		assert.Nil(t, mask.FilterState.SelectedValues)
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		label   string
		multi   bool
		want    []string
	}{
		{"select", nil, "a", false, []string{"a"}},
		{"replace", []string{"a"}, "b", false, []string{"b"}},
		{"deselect", []string{"a"}, "a", false, []string{}},
		{"narrow", []string{"a", "b"}, "a", false, []string{"a"}},
		{"add", []string{"a"}, "b", true, []string{"a", "b"}},
		{"remove", []string{"a", "b"}, "a", true, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Toggle(tt.current, tt.label, tt.multi))
		})
	}
}

func TestSelectReportsThroughHook(t *testing.T) {
	var got []chart.DataMask
	props := chart.TransformedProps{
		LabelMap:       labels,
		Groupby:        []string{"region", "year"},
		SelectedValues: []string{},
		EmitFilter:     true,
		SetDataMask:    func(m chart.DataMask) { got = append(got, m) },
	}

	mask := Select(props, "west, 2020", false)
	require.Len(t, got, 1)
	assert.Equal(t, mask, got[0])
	assert.Equal(t, []string{"west, 2020"}, mask.FilterState.SelectedValues)

	props.EmitFilter = false
	Select(props, "west, 2020", false)
	assert.Len(t, got, 1)
}
