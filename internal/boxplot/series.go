package boxplot

import (
	"slices"

	"boxplot/domain/chart"
	"boxplot/ports"
)

// Opacity of a category's style, and of categories outside the current
// selection.
const (
	OpacityDefault         = 0.6
	OpacitySemiTransparent = 0.3
)

// SeriesType names used by the renderer.
const (
	SeriesTypeBoxPlot = "boxplot"
	SeriesTypeScatter = "scatter"
	OutlierSeriesName = "outlier"
	BoxPlotSeriesName = "boxplot"
)

// seriesInput is everything the series builder needs besides the rows.
type seriesInput struct {
	metrics     []string
	colorScheme string
	colors      ports.ColorResolver
	selected    []string
	numbers     ports.NumberFormatter
	prerender   bool
}

// EntryName is the display name of a box entry: the category label alone
// when one metric is requested, "<label>, <metric>" otherwise.
func EntryName(label chart.CategoryLabel, metric string, metricCount int) string {
	if metricCount == 1 {
		return string(label)
	}
	return string(label) + LabelDelimiter + metric
}

// buildSeries expands rows x metrics into box entries and their paired
// outlier series, in row-major order.
func buildSeries(rows []decodedRow, in seriesInput) ([]chart.BoxPlotEntry, []chart.OutlierEntry, error) {
	boxes := make([]chart.BoxPlotEntry, 0, len(rows)*len(in.metrics))
	outliers := make([]chart.OutlierEntry, 0, len(rows)*len(in.metrics))

	pointTooltip := OutlierTooltipFormatter(in.numbers)

	for i, r := range rows {
		// Color is looked up once per category and shared by both series.
		color := in.colors.ResolveColor(in.colorScheme, string(r.label))

		for _, metric := range in.metrics {
			value, err := ReadStatistics(r.row, metric, i)
			if err != nil {
				return nil, nil, err
			}

			name := EntryName(r.label, metric, len(in.metrics))
			filtered := len(in.selected) > 0 && !slices.Contains(in.selected, name)

			style := chart.ItemStyle{Color: color, BorderColor: color, Opacity: OpacityDefault}
			if filtered {
				style.Opacity = OpacitySemiTransparent
			}

			entry := chart.BoxPlotEntry{Name: name, Value: value, ItemStyle: style}
			if in.prerender {
				entry.Tooltip = &chart.ItemTooltip{Formatter: FormatBoxTooltip(in.numbers, name, value)}
			}
			boxes = append(boxes, entry)

			points := make([]chart.OutlierPoint, len(value.Outliers))
			for j, v := range value.Outliers {
				points[j] = chart.OutlierPoint{Name: name, Value: v}
			}
			outliers = append(outliers, chart.OutlierEntry{
				Name:      OutlierSeriesName,
				Type:      SeriesTypeScatter,
				Data:      points,
				Tooltip:   chart.SeriesTooltip{PointFormatter: pointTooltip},
				ItemStyle: style,
			})
		}
	}
	return boxes, outliers, nil
}
