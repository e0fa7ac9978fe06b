package boxplot

import (
	"boxplot/domain/chart"
	"boxplot/ports"
)

// DefaultLayout is the lowest layer of option defaults. Every field is set.
func DefaultLayout() chart.Layout {
	return chart.Layout{
		Grid: chart.GridLayout{
			Top:          chart.Ptr(30),
			Bottom:       chart.Ptr(30),
			Left:         chart.Ptr(20),
			Right:        chart.Ptr(20),
			ContainLabel: chart.Ptr(true),
		},
		XAxis: chart.AxisDefaults{
			NameLocation: "middle",
			NameGap:      chart.Ptr(30),
			Scale:        chart.Ptr(false),
		},
		YAxis: chart.AxisDefaults{
			NameLocation: "middle",
			NameGap:      chart.Ptr(40),
			Scale:        chart.Ptr(true),
		},
		Tooltip: chart.TooltipLayout{Trigger: "item", Confine: chart.Ptr(true)},
	}
}

// MergeLayout applies layers in order, later layers winning. A field of a
// layer overrides the accumulated value whenever it is set, including an
// explicit false or 0; nil pointers and empty strings are unset.
//
// Precedence, lowest first: DefaultLayout, the theme file, environment
// overrides, then per-transformer defaults.
func MergeLayout(base chart.Layout, layers ...chart.Layout) chart.Layout {
	out := base
	for _, l := range layers {
		out.Grid.Top = pick(out.Grid.Top, l.Grid.Top)
		out.Grid.Bottom = pick(out.Grid.Bottom, l.Grid.Bottom)
		out.Grid.Left = pick(out.Grid.Left, l.Grid.Left)
		out.Grid.Right = pick(out.Grid.Right, l.Grid.Right)
		out.Grid.ContainLabel = pick(out.Grid.ContainLabel, l.Grid.ContainLabel)

		out.XAxis = mergeAxis(out.XAxis, l.XAxis)
		out.YAxis = mergeAxis(out.YAxis, l.YAxis)

		out.Tooltip.Trigger = pickString(out.Tooltip.Trigger, l.Tooltip.Trigger)
		out.Tooltip.Confine = pick(out.Tooltip.Confine, l.Tooltip.Confine)
	}
	return out
}

func mergeAxis(base, l chart.AxisDefaults) chart.AxisDefaults {
	base.NameLocation = pickString(base.NameLocation, l.NameLocation)
	base.NameGap = pick(base.NameGap, l.NameGap)
	base.Scale = pick(base.Scale, l.Scale)
	return base
}

func pick[T any](cur, override *T) *T {
	if override != nil {
		return override
	}
	return cur
}

func pickString(cur, override string) string {
	if override != "" {
		return override
	}
	return cur
}

func value[T any](p *T) T {
	var zero T
	if p != nil {
		zero = *p
	}
	return zero
}

var tickRotations = map[string]int{
	chart.XTicks45:        -45,
	chart.XTicks90:        -90,
	chart.XTicksFlat:      0,
	chart.XTicksStaggered: -45,
}

// AxisLabelFor maps an x tick layout to its axis label policy. Unknown or
// empty layouts show labels unrotated.
func AxisLabelFor(layout string) chart.AxisLabel {
	if rotate, ok := tickRotations[layout]; ok {
		return chart.AxisLabel{Show: true, Rotate: rotate}
	}
	return chart.AxisLabel{Show: true}
}

type optionInput struct {
	layout   chart.Layout
	formData chart.FormData
	boxes    []chart.BoxPlotEntry
	outliers []chart.OutlierEntry
	numbers  ports.NumberFormatter
	showTip  bool
}

func assembleOption(in optionInput) chart.EChartsOption {
	names := make([]string, len(in.boxes))
	for i, b := range in.boxes {
		names[i] = b.Name
	}

	return chart.EChartsOption{
		Grid: in.layout.Grid.Resolve(),
		XAxis: chart.CategoryAxis{
			Type:         "category",
			Name:         in.formData.XAxisTitle,
			NameLocation: in.layout.XAxis.NameLocation,
			NameGap:      value(in.layout.XAxis.NameGap),
			Data:         names,
			AxisLabel:    AxisLabelFor(in.formData.XTicksLayout),
		},
		YAxis: chart.ValueAxis{
			Type:         "value",
			Name:         in.formData.YAxisTitle,
			NameLocation: in.layout.YAxis.NameLocation,
			NameGap:      value(in.layout.YAxis.NameGap),
			Scale:        value(in.layout.YAxis.Scale),
			AxisLabel:    chart.ValueAxisLabel{Formatter: in.numbers.FormatNumber},
		},
		Tooltip: chart.Tooltip{
			Show:    in.showTip,
			Trigger: in.layout.Tooltip.Trigger,
			Confine: value(in.layout.Tooltip.Confine),
		},
		BoxPlot: chart.BoxPlotSeries{
			Name:    BoxPlotSeriesName,
			Type:    SeriesTypeBoxPlot,
			Data:    in.boxes,
			Tooltip: chart.SeriesTooltip{Formatter: BoxTooltipFormatter(in.numbers)},
		},
		Outlier: in.outliers,
	}
}
