package boxplot

import (
	"boxplot/domain/chart"
)

// buildLabelMap folds rows into label -> raw grouping values. When several
// rows share a label the last one wins; their keys are identical anyway.
func buildLabelMap(rows []decodedRow) chart.LabelMap {
	labels := make(chart.LabelMap, len(rows))
	for _, r := range rows {
		labels[string(r.label)] = r.keys
	}
	return labels
}

// ResolveSelection returns, for each selected label, the index of the first
// box entry with that name, or chart.NotFound. Order and duplicates of
// selected are preserved.
func ResolveSelection(selected []string, entries []chart.BoxPlotEntry) chart.SelectionIndex {
	indexes := make(chart.SelectionIndex, len(selected))
	for i, label := range selected {
		indexes[i] = chart.NotFound
		for j, entry := range entries {
			if entry.Name == label {
				indexes[i] = j
				break
			}
		}
	}
	return indexes
}
