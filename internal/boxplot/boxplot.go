// Package boxplot turns pre-aggregated box-plot query results into the
// option object of the chart renderer.
//
// A transform runs four stages over the first result set:
//
//	rows -> category labels -> box + outlier series -> label map and
//	selection indexes -> renderer option
//
// It performs no I/O, keeps no state between calls and allocates its output
// fresh, so one Transformer may serve concurrent renders as long as its
// collaborators are safe for concurrent use.
package boxplot

import (
	"boxplot/domain/chart"
	"boxplot/internal/format"
	"boxplot/ports"
)

// Transformer holds the collaborators of a transform.
type Transformer struct {
	colors    ports.ColorResolver
	formats   ports.FormatRegistry
	columns   ports.ColumnTypeResolver
	observer  ports.SelectionObserver
	layout    chart.Layout
	prerender bool
	hideTip   bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithObserver sets the selection observer.
func WithObserver(o ports.SelectionObserver) Option {
	return func(t *Transformer) { t.observer = o }
}

// WithLayout layers defaults over DefaultLayout, in order.
func WithLayout(layers ...chart.Layout) Option {
	return func(t *Transformer) { t.layout = MergeLayout(t.layout, layers...) }
}

// WithPrerenderedTooltips attaches a rendered tooltip to every box entry, for
// consumers that receive the option as JSON.
func WithPrerenderedTooltips() Option {
	return func(t *Transformer) { t.prerender = true }
}

// WithHiddenTooltip disables the chart tooltip, e.g. while a context menu is
// open.
func WithHiddenTooltip() Option {
	return func(t *Transformer) { t.hideTip = true }
}

// New creates a Transformer. The column-type resolver is required for
// temporal grouping columns to be formatted; without one every grouping
// value is shown in its raw display form unless it is a time.Time.
func New(colors ports.ColorResolver, formats ports.FormatRegistry, columns ports.ColumnTypeResolver, opts ...Option) *Transformer {
	if formats == nil {
		formats = format.NewRegistry()
	}
	t := &Transformer{
		colors:   colors,
		formats:  formats,
		columns:  columns,
		observer: NopObserver{},
		layout:   DefaultLayout(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Layout returns the merged option defaults.
func (t *Transformer) Layout() chart.Layout {
	return t.layout
}

// Transform converts chart props into renderer props. Only the first result
// set is read; a missing one yields an empty chart. Rows lacking a statistic
// of a requested metric fail with core.MissingStatisticError.
func (t *Transformer) Transform(props chart.ChartProps) (chart.TransformedProps, error) {
	fd := props.FormData
	query := props.FirstQuery()
	rows := query.Data
	if rows == nil {
		rows = []chart.ResultRow{}
	}

	var types map[string]chart.GenericDataType
	if t.columns != nil {
		types = t.columns.ColumnTypes(query)
	}

	numbers := t.formats.NumberFormatter(fd.NumberFormat)
	times := t.formats.TimeFormatter(fd.DateFormat)

	selected := props.FilterState.SelectedValues
	if selected == nil {
		selected = []string{}
	}
	t.observer.ObserveSelection(selected)

	decoded := decodeRows(rows, fd.Groupby, types, times)

	colors := t.colors
	if colors == nil {
		colors = ports.ColorResolverFunc(func(string, string) string { return "" })
	}
	boxes, outliers, err := buildSeries(decoded, seriesInput{
		metrics:     chart.MetricLabels(fd.Metrics),
		colorScheme: fd.ColorScheme,
		colors:      colors,
		selected:    props.FilterState.SelectedValues,
		numbers:     numbers,
		prerender:   t.prerender,
	})
	if err != nil {
		return chart.TransformedProps{}, err
	}

	option := assembleOption(optionInput{
		layout:   t.layout,
		formData: fd,
		boxes:    boxes,
		outliers: outliers,
		numbers:  numbers,
		showTip:  !t.hideTip,
	})

	setDataMask := props.Hooks.SetDataMask
	if setDataMask == nil {
		setDataMask = func(chart.DataMask) {}
	}

	groupby := fd.Groupby
	if groupby == nil {
		groupby = []string{}
	}

	return chart.TransformedProps{
		Option:           option,
		FormData:         fd,
		LabelMap:         buildLabelMap(decoded),
		Groupby:          groupby,
		SelectedValues:   selected,
		SelectionIndexes: ResolveSelection(selected, boxes),
		EmitFilter:       fd.EmitFilter,
		SetDataMask:      setDataMask,
	}, nil
}
