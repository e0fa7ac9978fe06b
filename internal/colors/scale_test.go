package colors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColorAssignsInFirstSeenOrder(t *testing.T) {
	r := NewRegistry()
	palette := Schemes["d3Category10"]

	assert.Equal(t, palette[0], r.ResolveColor("d3Category10", "west"))
	assert.Equal(t, palette[1], r.ResolveColor("d3Category10", "east"))
	assert.Equal(t, palette[0], r.ResolveColor("d3Category10", "west"))

	// Scales are per scheme.
	assert.Equal(t, Schemes["bnbColors"][0], r.ResolveColor("bnbColors", "east"))
}

func TestResolveColorUnknownSchemeUsesDefault(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, Schemes[DefaultScheme][0], r.ResolveColor("noSuchScheme", "a"))
	assert.Equal(t, Schemes[DefaultScheme][1], r.ResolveColor("", "b"))
}

func TestResolveColorWrapsAndHonorsForcedColors(t *testing.T) {
	r := NewRegistry()
	palette := Schemes["d3Category10"]
	for i := 0; i < len(palette); i++ {
		r.ResolveColor("d3Category10", fmt.Sprintf("label-%d", i))
	}
	assert.Equal(t, palette[0], r.ResolveColor("d3Category10", "overflow"))

	r.SetLabelColor("pinned", "#000000")
	assert.Equal(t, "#000000", r.ResolveColor("d3Category10", "pinned"))
}

func TestResolveColorConcurrentAssignmentsAreStable(t *testing.T) {
	r := NewRegistry()
	results := make([]string, 64)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.ResolveColor("supersetColors", "shared")
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		assert.Equal(t, results[0], c)
	}
}
