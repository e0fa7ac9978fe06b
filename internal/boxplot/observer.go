package boxplot

import (
	"boxplot/internal"
	"boxplot/ports"
)

// NopObserver discards selection state. It is the default.
type NopObserver struct{}

func (NopObserver) ObserveSelection([]string) {}

// LogObserver writes the selection seen by each transform at debug level.
// A nil Logger logs through the default logger under the BoxPlot component.
type LogObserver struct {
	Logger *internal.Logger
}

var (
	_ ports.SelectionObserver = NopObserver{}
	_ ports.SelectionObserver = LogObserver{}
)

func (o LogObserver) ObserveSelection(selected []string) {
	logger := o.Logger
	if logger == nil {
		logger = internal.DefaultLogger.With("BoxPlot")
	}
	logger.Debug("selected values: %q", selected)
}
