package format

import (
	"sync"

	"boxplot/internal"
	"boxplot/ports"
)

// Registry hands out compiled formatters by format id and caches them.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	numbers map[string]*NumberFormat
	times   map[string]*TimeFormat
	logger  *internal.Logger
}

var _ ports.FormatRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		numbers: make(map[string]*NumberFormat),
		times:   make(map[string]*TimeFormat),
		logger:  internal.DefaultLogger.With("Format"),
	}
}

// NumberFormatter returns the formatter for id. Unknown ids fall back to
// SMART_NUMBER.
func (r *Registry) NumberFormatter(id string) ports.NumberFormatter {
	r.mu.RLock()
	f, ok := r.numbers[id]
	r.mu.RUnlock()
	if ok {
		return f
	}

	f, known := ParseNumberFormat(id)
	if !known {
		r.logger.Warn("unsupported number format %q, using %s", id, SmartNumber)
	}
	r.mu.Lock()
	r.numbers[id] = f
	r.mu.Unlock()
	return f
}

// TimeFormatter returns the formatter for id. Invalid patterns fall back to
// smart_date.
func (r *Registry) TimeFormatter(id string) ports.TimeFormatter {
	r.mu.RLock()
	f, ok := r.times[id]
	r.mu.RUnlock()
	if ok {
		return f
	}

	f, err := ParseTimeFormat(id)
	if err != nil {
		r.logger.Warn("%v, using %s", err, SmartDate)
		f = &TimeFormat{id: SmartDate}
	}
	r.mu.Lock()
	r.times[id] = f
	r.mu.Unlock()
	return f
}
