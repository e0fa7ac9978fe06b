package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"boxplot/domain/core"
)

// VizTypeBoxPlot is the only visualization this service renders.
const VizTypeBoxPlot = "box_plot"

// NullLabel is the display form of a missing grouping value.
const NullLabel = "<NULL>"

// ResultRow is one row of a query result: grouping column values plus, per
// metric, the pre-aggregated <metric>__<stat> fields. Rows are never mutated.
type ResultRow map[string]any

// CategoryLabel identifies one group on the category axis.
type CategoryLabel string

// GenericDataType classifies result columns. Values match the integers used
// on the wire by the chart-data API.
type GenericDataType int

const (
	Numeric GenericDataType = iota
	String
	Temporal
	Boolean
)

func (t GenericDataType) String() string {
	switch t {
	case Numeric:
		return "NUMERIC"
	case String:
		return "STRING"
	case Temporal:
		return "TEMPORAL"
	case Boolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("GenericDataType(%d)", int(t))
	}
}

// Statistic field suffixes, in tuple order.
const (
	StatMin      = "min"
	StatQ1       = "q1"
	StatMedian   = "median"
	StatQ3       = "q3"
	StatMax      = "max"
	StatMean     = "mean"
	StatCount    = "count"
	StatOutliers = "outliers"
)

// StatisticFields lists the scalar statistics in the order they appear in a
// BoxPlotValue.
var StatisticFields = []string{StatMin, StatQ1, StatMedian, StatQ3, StatMax, StatMean, StatCount}

// StatKey returns the result column holding stat for metric.
func StatKey(metric, stat string) string {
	return metric + "__" + stat
}

// BoxPlotValue is the statistics bundle for one category and metric. It
// encodes as the positional tuple
// [min, q1, median, q3, max, mean, count, outliers]; tooltip formatters and
// the rendering engine read it by position.
type BoxPlotValue struct {
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
	Mean     float64
	Count    float64
	Outliers []float64
}

// Tuple returns the value in wire order.
func (v BoxPlotValue) Tuple() []any {
	outliers := v.Outliers
	if outliers == nil {
		outliers = []float64{}
	}
	return []any{v.Min, v.Q1, v.Median, v.Q3, v.Max, v.Mean, v.Count, outliers}
}

func (v BoxPlotValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Tuple())
}

// ItemStyle is the per-category visual style shared by a box entry and its
// outlier points.
type ItemStyle struct {
	Color       string  `json:"color,omitempty"`
	BorderColor string  `json:"borderColor,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// ItemTooltip carries a tooltip rendered ahead of time for consumers that
// cannot run Go formatters.
type ItemTooltip struct {
	Formatter string `json:"formatter"`
}

// BoxPlotEntry is one box on the chart.
type BoxPlotEntry struct {
	Name      string       `json:"name"`
	Value     BoxPlotValue `json:"value"`
	ItemStyle ItemStyle    `json:"itemStyle"`
	Tooltip   *ItemTooltip `json:"tooltip,omitempty"`
}

// OutlierPoint is one scatter point, encoded as [name, value].
type OutlierPoint struct {
	Name  string
	Value float64
}

func (p OutlierPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Name, p.Value})
}

// BoxTooltipFunc renders the tooltip of a box entry from its name and tuple.
type BoxTooltipFunc func(name string, value BoxPlotValue) string

// PointTooltipFunc renders the tooltip of an outlier point.
type PointTooltipFunc func(name string, value float64) string

// SeriesTooltip holds a display-time formatter. Formatters are Go functions
// and never serialized.
type SeriesTooltip struct {
	Formatter      BoxTooltipFunc   `json:"-"`
	PointFormatter PointTooltipFunc `json:"-"`
}

// OutlierEntry is the scatter series carrying the outliers of one category
// and metric.
type OutlierEntry struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Data      []OutlierPoint `json:"data"`
	Tooltip   SeriesTooltip  `json:"tooltip"`
	ItemStyle ItemStyle      `json:"itemStyle"`
}

// BoxPlotSeries is the single box-plot series.
type BoxPlotSeries struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Data    []BoxPlotEntry `json:"data"`
	Tooltip SeriesTooltip  `json:"tooltip"`
}

// LabelMap maps a category label to the raw grouping values that produced
// it, in groupby order.
type LabelMap map[string][]any

// SelectionIndex holds, per selected label, the position of the matching box
// entry or -1 when the label is no longer rendered.
type SelectionIndex []int

// NotFound marks a stale selection in a SelectionIndex.
const NotFound = -1

// MetricSpec is either a saved metric referenced by name or an ad-hoc metric
// object.
type MetricSpec struct {
	Name           string `json:"-"`
	Label          string `json:"label,omitempty"`
	ExpressionType string `json:"expressionType,omitempty"`
	Column         string `json:"-"`
	Aggregate      string `json:"aggregate,omitempty"`
	SQLExpression  string `json:"sqlExpression,omitempty"`
}

type adhocMetric struct {
	Label          string `json:"label"`
	ExpressionType string `json:"expressionType"`
	Column         *struct {
		ColumnName string `json:"column_name"`
	} `json:"column"`
	Aggregate     string `json:"aggregate"`
	SQLExpression string `json:"sqlExpression"`
}

func (m *MetricSpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*m = MetricSpec{Name: name}
		return nil
	}
	var adhoc adhocMetric
	if err := json.Unmarshal(data, &adhoc); err != nil {
		return fmt.Errorf("%w: metric must be a name or an object: %v", core.ErrInvalidPayload, err)
	}
	*m = MetricSpec{
		Label:          adhoc.Label,
		ExpressionType: adhoc.ExpressionType,
		Aggregate:      adhoc.Aggregate,
		SQLExpression:  adhoc.SQLExpression,
	}
	if adhoc.Column != nil {
		m.Column = adhoc.Column.ColumnName
	}
	return nil
}

func (m MetricSpec) MarshalJSON() ([]byte, error) {
	if m.Name != "" {
		return json.Marshal(m.Name)
	}
	out := adhocMetric{
		Label:          m.Label,
		ExpressionType: m.ExpressionType,
		Aggregate:      m.Aggregate,
		SQLExpression:  m.SQLExpression,
	}
	if m.Column != "" {
		out.Column = &struct {
			ColumnName string `json:"column_name"`
		}{ColumnName: m.Column}
	}
	return json.Marshal(out)
}

// MetricLabel returns the name used in <metric>__<stat> result keys.
func (m MetricSpec) MetricLabel() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Label != "":
		return m.Label
	case m.SQLExpression != "":
		return m.SQLExpression
	case m.Column != "" && m.Aggregate != "":
		return fmt.Sprintf("%s(%s)", strings.ToUpper(m.Aggregate), m.Column)
	default:
		return m.Column
	}
}

// SourceColumn returns the raw column aggregated for this metric.
func (m MetricSpec) SourceColumn() string {
	if m.Column != "" {
		return m.Column
	}
	return m.MetricLabel()
}

// MetricLabels maps specs to their labels, preserving order.
func MetricLabels(metrics []MetricSpec) []string {
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		labels[i] = m.MetricLabel()
	}
	return labels
}

// XTicksLayout values accepted by the option assembler.
const (
	XTicksAuto      = "auto"
	XTicks45        = "45°"
	XTicks90        = "90°"
	XTicksFlat      = "flat"
	XTicksStaggered = "staggered"
)

// FormData is the chart configuration saved with a chart.
type FormData struct {
	VizType        string       `json:"viz_type,omitempty"`
	Groupby        []string     `json:"groupby"`
	Columns        []string     `json:"columns,omitempty"`
	Metrics        []MetricSpec `json:"metrics"`
	ColorScheme    string       `json:"color_scheme,omitempty"`
	NumberFormat   string       `json:"number_format,omitempty"`
	DateFormat     string       `json:"date_format,omitempty"`
	XTicksLayout   string       `json:"x_ticks_layout,omitempty"`
	XAxisTitle     string       `json:"x_axis_title,omitempty"`
	YAxisTitle     string       `json:"y_axis_title,omitempty"`
	EmitFilter     bool         `json:"emit_filter"`
	WhiskerOptions string       `json:"whiskerOptions,omitempty"`
}

// QueryData is one result set of a chart-data query.
type QueryData struct {
	Data     []ResultRow       `json:"data"`
	ColNames []string          `json:"colnames,omitempty"`
	ColTypes []GenericDataType `json:"coltypes,omitempty"`
}

// Filter is one cross-filter clause.
type Filter struct {
	Col string `json:"col"`
	Op  string `json:"op"`
	Val []any  `json:"val,omitempty"`
}

// ExtraFormData carries filters emitted to other charts.
type ExtraFormData struct {
	Filters []Filter `json:"filters"`
}

// FilterState is the interactive selection state of one chart.
type FilterState struct {
	Value          [][]any  `json:"value"`
	SelectedValues []string `json:"selectedValues"`
}

// DataMask is reported to the host when the selection changes.
type DataMask struct {
	ExtraFormData ExtraFormData `json:"extraFormData"`
	FilterState   FilterState   `json:"filterState"`
}

// SetDataMaskFunc reports a selection change back to the host.
type SetDataMaskFunc func(mask DataMask)

// Hooks are callbacks supplied by the host.
type Hooks struct {
	SetDataMask SetDataMaskFunc
}

// ChartProps is the input of a box-plot transform.
type ChartProps struct {
	FormData    FormData    `json:"form_data"`
	QueriesData []QueryData `json:"queries_data"`
	FilterState FilterState `json:"filter_state"`
	Hooks       Hooks       `json:"-"`
}

// FirstQuery returns the first result set; later ones are ignored.
func (p ChartProps) FirstQuery() QueryData {
	if len(p.QueriesData) == 0 {
		return QueryData{}
	}
	return p.QueriesData[0]
}

// Grid positions the plotting area.
type Grid struct {
	Top          int  `json:"top"`
	Bottom       int  `json:"bottom"`
	Left         int  `json:"left"`
	Right        int  `json:"right"`
	ContainLabel bool `json:"containLabel"`
}

// AxisLabel controls category tick labels.
type AxisLabel struct {
	Show   bool `json:"show"`
	Rotate int  `json:"rotate"`
}

// CategoryAxis is the x axis, one tick per box entry.
type CategoryAxis struct {
	Type         string    `json:"type"`
	Name         string    `json:"name,omitempty"`
	NameLocation string    `json:"nameLocation,omitempty"`
	NameGap      int       `json:"nameGap,omitempty"`
	Data         []string  `json:"data"`
	AxisLabel    AxisLabel `json:"axisLabel"`
}

// ValueAxisLabel formats value ticks at display time.
type ValueAxisLabel struct {
	Formatter func(float64) string `json:"-"`
}

// ValueAxis is the y axis.
type ValueAxis struct {
	Type         string         `json:"type"`
	Name         string         `json:"name,omitempty"`
	NameLocation string         `json:"nameLocation,omitempty"`
	NameGap      int            `json:"nameGap,omitempty"`
	Scale        bool           `json:"scale"`
	AxisLabel    ValueAxisLabel `json:"axisLabel"`
}

// Tooltip is the chart-level tooltip configuration.
type Tooltip struct {
	Show    bool   `json:"show"`
	Trigger string `json:"trigger,omitempty"`
	Confine bool   `json:"confine"`
}

// Layout is one layer of caller-supplied defaults for grid, axes and tooltip.
// A nil or empty field is unset and keeps the value of the layer below; see
// boxplot.MergeLayout for precedence.
type Layout struct {
	Grid    GridLayout    `json:"grid" koanf:"grid"`
	XAxis   AxisDefaults  `json:"x_axis" koanf:"x_axis"`
	YAxis   AxisDefaults  `json:"y_axis" koanf:"y_axis"`
	Tooltip TooltipLayout `json:"tooltip" koanf:"tooltip"`
}

// GridLayout are the overridable grid settings.
type GridLayout struct {
	Top          *int  `json:"top,omitempty" koanf:"top"`
	Bottom       *int  `json:"bottom,omitempty" koanf:"bottom"`
	Left         *int  `json:"left,omitempty" koanf:"left"`
	Right        *int  `json:"right,omitempty" koanf:"right"`
	ContainLabel *bool `json:"contain_label,omitempty" koanf:"contain_label"`
}

// Resolve returns the grid with unset fields zero.
func (g GridLayout) Resolve() Grid {
	return Grid{
		Top:          deref(g.Top),
		Bottom:       deref(g.Bottom),
		Left:         deref(g.Left),
		Right:        deref(g.Right),
		ContainLabel: deref(g.ContainLabel),
	}
}

// AxisDefaults are the overridable axis settings.
type AxisDefaults struct {
	NameLocation string `json:"name_location,omitempty" koanf:"name_location"`
	NameGap      *int   `json:"name_gap,omitempty" koanf:"name_gap"`
	Scale        *bool  `json:"scale,omitempty" koanf:"scale"`
}

// TooltipLayout are the overridable tooltip settings.
type TooltipLayout struct {
	Trigger string `json:"trigger,omitempty" koanf:"trigger"`
	Confine *bool  `json:"confine,omitempty" koanf:"confine"`
}

// Ptr returns a pointer to v, for filling Layout fields.
func Ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// EChartsOption is the declarative configuration handed to the renderer.
type EChartsOption struct {
	Grid    Grid           `json:"grid"`
	XAxis   CategoryAxis   `json:"xAxis"`
	YAxis   ValueAxis      `json:"yAxis"`
	Tooltip Tooltip        `json:"tooltip"`
	BoxPlot BoxPlotSeries  `json:"-"`
	Outlier []OutlierEntry `json:"-"`
}

// Series returns the rendered series collection: the box-plot series first,
// then every outlier series. Renderers order series by position.
func (o EChartsOption) Series() []any {
	series := make([]any, 0, len(o.Outlier)+1)
	series = append(series, o.BoxPlot)
	for _, entry := range o.Outlier {
		series = append(series, entry)
	}
	return series
}

type echartsOptionFields EChartsOption

func (o EChartsOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		echartsOptionFields
		Series []any `json:"series"`
	}{echartsOptionFields(o), o.Series()})
}

// TransformedProps is the output of a box-plot transform.
type TransformedProps struct {
	Option           EChartsOption   `json:"echartOptions"`
	FormData         FormData        `json:"formData"`
	LabelMap         LabelMap        `json:"labelMap"`
	Groupby          []string        `json:"groupby"`
	SelectedValues   []string        `json:"selectedValues"`
	SelectionIndexes SelectionIndex  `json:"selectedValuesIndexes"`
	EmitFilter       bool            `json:"emitCrossFilters"`
	SetDataMask      SetDataMaskFunc `json:"-"`
}

// SourceKind says where a saved chart reads its records from.
type SourceKind string

const (
	SourceSQL  SourceKind = "sql"
	SourceFile SourceKind = "file"
)

// Chart is a saved box-plot chart.
type Chart struct {
	ID          core.ID    `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	VizType     string     `json:"viz_type" db:"viz_type"`
	SourceKind  SourceKind `json:"source_kind" db:"source_kind"`
	Source      string     `json:"source" db:"source"`
	FormData    FormData   `json:"form_data" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate checks the parts of a chart the service depends on.
func (c *Chart) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", core.ErrInvalidPayload)
	}
	if c.VizType != "" && c.VizType != VizTypeBoxPlot {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedViz, c.VizType)
	}
	switch c.SourceKind {
	case SourceSQL, SourceFile:
	default:
		return fmt.Errorf("%w: unknown source kind %q", core.ErrInvalidPayload, c.SourceKind)
	}
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: source is required", core.ErrInvalidPayload)
	}
	if len(c.FormData.Metrics) == 0 {
		return fmt.Errorf("%w: at least one metric is required", core.ErrInvalidPayload)
	}
	return nil
}
