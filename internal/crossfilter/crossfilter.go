// Package crossfilter turns a box-plot selection into the data mask other
// charts filter on.
package crossfilter

import (
	"slices"

	"boxplot/domain/chart"
)

// Filter operators emitted in a data mask.
const (
	OpIn     = "IN"
	OpIsNull = "IS NULL"
)

// BuildDataMask maps selected category labels back to their raw grouping
// values. Each groupby column gets one IN clause over the selected values,
// or an IS NULL clause when every selected value of the column is null.
// An empty selection clears the filter. Labels missing from labelMap are
// ignored.
func BuildDataMask(labelMap chart.LabelMap, groupby []string, selected []string) chart.DataMask {
	if len(selected) == 0 {
		return chart.DataMask{
			ExtraFormData: chart.ExtraFormData{Filters: []chart.Filter{}},
			FilterState:   chart.FilterState{Value: nil, SelectedValues: nil},
		}
	}

	values := make([][]any, 0, len(selected))
	known := make([]string, 0, len(selected))
	for _, label := range selected {
		keys, ok := labelMap[label]
		if !ok {
			continue
		}
		values = append(values, keys)
		known = append(known, label)
	}
	if len(known) == 0 {
		return BuildDataMask(labelMap, groupby, nil)
	}

	filters := make([]chart.Filter, 0, len(groupby))
	for i, col := range groupby {
		colValues := make([]any, 0, len(values))
		for _, keys := range values {
			if i < len(keys) {
				colValues = append(colValues, keys[i])
			} else {
				colValues = append(colValues, nil)
			}
		}
		if allNil(colValues) {
			filters = append(filters, chart.Filter{Col: col, Op: OpIsNull})
			continue
		}
		filters = append(filters, chart.Filter{Col: col, Op: OpIn, Val: colValues})
	}

	return chart.DataMask{
		ExtraFormData: chart.ExtraFormData{Filters: filters},
		FilterState:   chart.FilterState{Value: values, SelectedValues: known},
	}
}

func allNil(values []any) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}

// Toggle applies a click on label to the current selection. With multi
// unset the click replaces the selection; clicking the only selected label
// clears it.
func Toggle(current []string, label string, multi bool) []string {
	if slices.Contains(current, label) {
		if !multi {
			if len(current) == 1 {
				return []string{}
			}
			return []string{label}
		}
		out := make([]string, 0, len(current)-1)
		for _, c := range current {
			if c != label {
				out = append(out, c)
			}
		}
		return out
	}
	if !multi {
		return []string{label}
	}
	out := make([]string, len(current), len(current)+1)
	copy(out, current)
	return append(out, label)
}

// Select toggles label in the selection of props and reports the resulting
// mask through its SetDataMask hook. Nothing is reported unless the chart
// emits cross filters.
func Select(props chart.TransformedProps, label string, multi bool) chart.DataMask {
	next := Toggle(props.SelectedValues, label, multi)
	mask := BuildDataMask(props.LabelMap, props.Groupby, next)
	if props.EmitFilter && props.SetDataMask != nil {
		props.SetDataMask(mask)
	}
	return mask
}
