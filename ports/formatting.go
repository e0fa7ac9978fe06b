package ports

import (
	"boxplot/domain/chart"
)

// NumberFormatter renders a numeric value for display.
type NumberFormatter interface {
	FormatNumber(v float64) string
}

// TimeFormatter renders a temporal raw value (time.Time, epoch milliseconds
// or a timestamp string) for display.
type TimeFormatter interface {
	FormatTime(raw any) string
}

// FormatRegistry resolves formatters by format id. Implementations must be
// safe for concurrent use.
type FormatRegistry interface {
	NumberFormatter(format string) NumberFormatter
	TimeFormatter(format string) TimeFormatter
}

// ColorResolver assigns a color to a category label within a color scheme.
// The same label resolves to the same color for the lifetime of the scheme
// scope. Implementations must be safe for concurrent use.
type ColorResolver interface {
	ResolveColor(scheme, label string) string
}

// ColumnTypeResolver reports the generic type of each result column.
type ColumnTypeResolver interface {
	ColumnTypes(q chart.QueryData) map[string]chart.GenericDataType
}

// SelectionObserver receives the selection state seen by each transform.
type SelectionObserver interface {
	ObserveSelection(selected []string)
}

// NumberFormatterFunc adapts a function to NumberFormatter.
type NumberFormatterFunc func(v float64) string

func (f NumberFormatterFunc) FormatNumber(v float64) string { return f(v) }

// TimeFormatterFunc adapts a function to TimeFormatter.
type TimeFormatterFunc func(raw any) string

func (f TimeFormatterFunc) FormatTime(raw any) string { return f(raw) }

// ColorResolverFunc adapts a function to ColorResolver.
type ColorResolverFunc func(scheme, label string) string

func (f ColorResolverFunc) ResolveColor(scheme, label string) string { return f(scheme, label) }
