// Package colors assigns categorical colors to chart labels.
package colors

import (
	"sync"

	"boxplot/ports"
)

// Registry keeps one color scale per scheme. A label is assigned the next
// unused palette color the first time it is seen in a scheme and keeps it for
// the lifetime of the registry; palettes wrap around when exhausted.
type Registry struct {
	mu     sync.RWMutex
	scales map[string]map[string]int
	forced map[string]string
}

var _ ports.ColorResolver = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scales: make(map[string]map[string]int),
		forced: make(map[string]string),
	}
}

// SetLabelColor pins label to color across every scheme.
func (r *Registry) SetLabelColor(label, color string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forced[label] = color
}

// ResolveColor implements ports.ColorResolver.
func (r *Registry) ResolveColor(scheme, label string) string {
	palette, ok := Schemes[scheme]
	if !ok {
		scheme = DefaultScheme
		palette = Schemes[DefaultScheme]
	}

	r.mu.RLock()
	if c, ok := r.forced[label]; ok {
		r.mu.RUnlock()
		return c
	}
	idx, seen := r.scales[scheme][label]
	r.mu.RUnlock()
	if seen {
		return palette[idx%len(palette)]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	scale, ok := r.scales[scheme]
	if !ok {
		scale = make(map[string]int)
		r.scales[scheme] = scale
	}
	// Another goroutine may have assigned it between the locks.
	if idx, seen := scale[label]; seen {
		return palette[idx%len(palette)]
	}
	idx = len(scale)
	scale[label] = idx
	return palette[idx%len(palette)]
}
