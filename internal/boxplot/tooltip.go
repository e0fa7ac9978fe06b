package boxplot

import (
	"fmt"
	"html"
	"strings"

	"boxplot/domain/chart"
	"boxplot/ports"
)

func headline(name string) string {
	if name == "" {
		return ""
	}
	return "<p><strong>" + html.EscapeString(name) + "</strong></p>"
}

// FormatBoxTooltip renders the tooltip of one box entry. Values are read
// from the tuple by position; the outlier line appears only when there are
// outliers.
func FormatBoxTooltip(nf ports.NumberFormatter, name string, v chart.BoxPlotValue) string {
	lines := []string{
		"Max: " + nf.FormatNumber(v.Max),
		"3rd Quartile: " + nf.FormatNumber(v.Q3),
		"Mean: " + nf.FormatNumber(v.Mean),
		"Median: " + nf.FormatNumber(v.Median),
		"1st Quartile: " + nf.FormatNumber(v.Q1),
		"Min: " + nf.FormatNumber(v.Min),
		"# Observations: " + nf.FormatNumber(v.Count),
	}
	if len(v.Outliers) > 0 {
		lines = append(lines, fmt.Sprintf("# Outliers: %d", len(v.Outliers)))
	}
	return headline(name) + strings.Join(lines, "<br/>")
}

// FormatOutlierTooltip renders the tooltip of one outlier point.
func FormatOutlierTooltip(nf ports.NumberFormatter, name string, value float64) string {
	return headline(name) + nf.FormatNumber(value)
}

// BoxTooltipFormatter binds nf into a display-time box formatter. The
// result only reads its arguments and is safe to reuse across renders.
func BoxTooltipFormatter(nf ports.NumberFormatter) chart.BoxTooltipFunc {
	return func(name string, v chart.BoxPlotValue) string {
		return FormatBoxTooltip(nf, name, v)
	}
}

// OutlierTooltipFormatter binds nf into a display-time point formatter.
func OutlierTooltipFormatter(nf ports.NumberFormatter) chart.PointTooltipFunc {
	return func(name string, value float64) string {
		return FormatOutlierTooltip(nf, name, value)
	}
}
