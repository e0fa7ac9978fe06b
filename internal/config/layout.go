package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"boxplot/domain/chart"
)

// LayoutEnvPrefix prefixes environment overrides of chart defaults, with
// "__" separating nesting levels: BOXPLOT_DEFAULTS__GRID__TOP=40.
const LayoutEnvPrefix = "BOXPLOT_DEFAULTS__"

// LoadLayout reads chart option defaults from a YAML theme file (optional,
// a missing file is ignored) and overlays LayoutEnvPrefix variables. The
// result is one layer to merge over the built-in defaults; keys absent from
// both sources stay nil and keep the lower layer's value, while an explicit
// false or 0 overrides it.
//
//	grid:
//	  top: 40
//	y_axis:
//	  name_gap: 50
//	tooltip:
//	  trigger: axis
func LoadLayout(path string) (chart.Layout, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return chart.Layout{}, fmt.Errorf("failed to load chart defaults %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(LayoutEnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, LayoutEnvPrefix)), "__", ".")
	}), nil); err != nil {
		return chart.Layout{}, fmt.Errorf("failed to load chart defaults from environment: %w", err)
	}

	var layout chart.Layout
	if err := k.Unmarshal("", &layout); err != nil {
		return chart.Layout{}, fmt.Errorf("invalid chart defaults: %w", err)
	}
	return layout, nil
}
