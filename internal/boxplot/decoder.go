package boxplot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"boxplot/domain/chart"
	"boxplot/ports"
)

// LabelDelimiter joins grouping values into a category label.
const LabelDelimiter = ", "

// decodedRow is a result row with its category label and raw grouping key.
type decodedRow struct {
	row   chart.ResultRow
	label chart.CategoryLabel
	keys  []any
}

// ExtractGroupbyLabel derives the category label of row. Grouping values are
// joined in groupby order; temporal columns go through tf. With no groupby
// columns every row shares the empty label.
func ExtractGroupbyLabel(row chart.ResultRow, groupby []string, types map[string]chart.GenericDataType, tf ports.TimeFormatter) chart.CategoryLabel {
	parts := make([]string, len(groupby))
	for i, col := range groupby {
		parts[i] = formatSeriesName(row[col], types[col] == chart.Temporal, tf)
	}
	return chart.CategoryLabel(strings.Join(parts, LabelDelimiter))
}

func formatSeriesName(v any, temporal bool, tf ports.TimeFormatter) string {
	if v == nil {
		return chart.NullLabel
	}
	if _, isTime := v.(time.Time); isTime || temporal {
		if tf != nil {
			return tf.FormatTime(v)
		}
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return displayValue(v)
}

// displayValue renders a raw value the way it is shown on the category axis.
func displayValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func decodeRows(rows []chart.ResultRow, groupby []string, types map[string]chart.GenericDataType, tf ports.TimeFormatter) []decodedRow {
	decoded := make([]decodedRow, len(rows))
	for i, row := range rows {
		keys := make([]any, len(groupby))
		for j, col := range groupby {
			keys[j] = row[col]
		}
		decoded[i] = decodedRow{
			row:   row,
			label: ExtractGroupbyLabel(row, groupby, types, tf),
			keys:  keys,
		}
	}
	return decoded
}
