// Package render renders saved charts: it loads a chart, reads its records,
// aggregates them and runs the box-plot transform.
package render

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"boxplot/domain/chart"
	"boxplot/domain/core"
	"boxplot/internal"
	"boxplot/internal/aggregate"
	"boxplot/internal/boxplot"
	"boxplot/internal/crossfilter"
	"boxplot/internal/telemetry"
	"boxplot/ports"
)

// Result is a rendered saved chart.
type Result struct {
	Chart *chart.Chart
	Props chart.TransformedProps
}

// Service renders saved charts. It is safe for concurrent use.
type Service struct {
	charts      ports.ChartRepository
	sources     map[chart.SourceKind]ports.RecordSource
	transformer *boxplot.Transformer
	metrics     *telemetry.Metrics
	concurrency int
	logger      *internal.Logger
}

// NewService creates a render service. metrics may be nil.
func NewService(charts ports.ChartRepository, sources map[chart.SourceKind]ports.RecordSource, transformer *boxplot.Transformer, metrics *telemetry.Metrics, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		charts:      charts,
		sources:     sources,
		transformer: transformer,
		metrics:     metrics,
		concurrency: concurrency,
		logger:      internal.DefaultLogger.With("Render"),
	}
}

// Transform runs the box-plot transform on caller supplied props.
func (s *Service) Transform(props chart.ChartProps) (chart.TransformedProps, error) {
	start := time.Now()
	out, err := s.transformer.Transform(props)
	s.metrics.ObserveTransform(start, len(out.Option.BoxPlot.Data), err)
	return out, err
}

// Render renders a saved chart with no selection.
func (s *Service) Render(ctx context.Context, id core.ID) (*Result, error) {
	return s.RenderWithSelection(ctx, id, nil)
}

// RenderWithSelection renders a saved chart with the given labels selected.
func (s *Service) RenderWithSelection(ctx context.Context, id core.ID, selected []string) (*Result, error) {
	c, err := s.charts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	props, err := s.props(ctx, c, selected)
	s.metrics.ObserveRender(string(c.SourceKind), err)
	if err != nil {
		return nil, err
	}

	out, err := s.Transform(props)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.ID, err)
	}
	return &Result{Chart: c, Props: out}, nil
}

func (s *Service) props(ctx context.Context, c *chart.Chart, selected []string) (chart.ChartProps, error) {
	source, ok := s.sources[c.SourceKind]
	if !ok {
		return chart.ChartProps{}, fmt.Errorf("%w: no %s source configured", core.ErrSourceNotFound, c.SourceKind)
	}

	req := aggregate.RequestFor(c.FormData)
	records, err := source.FetchRecords(ctx, c.Source, req.Columns())
	if err != nil {
		return chart.ChartProps{}, err
	}

	rows, err := aggregate.Aggregate(records, req)
	if err != nil {
		return chart.ChartProps{}, fmt.Errorf("chart %s: %w", c.ID, err)
	}
	s.logger.Debug("chart %s: %d records, %d groups", c.ID, len(records), len(rows))

	return chart.ChartProps{
		FormData:    c.FormData,
		QueriesData: []chart.QueryData{{Data: rows, ColNames: req.Columns()}},
		FilterState: chart.FilterState{SelectedValues: selected},
		Hooks:       chart.Hooks{SetDataMask: s.logDataMask(c.ID)},
	}, nil
}

func (s *Service) logDataMask(id core.ID) chart.SetDataMaskFunc {
	return func(mask chart.DataMask) {
		s.logger.Debug("chart %s emitted %d filters", id, len(mask.ExtraFormData.Filters))
	}
}

// RenderBatch renders charts concurrently, at most the configured number at
// a time. Results are in the order of ids; the first failure cancels the
// remaining renders and is returned.
func (s *Service) RenderBatch(ctx context.Context, ids []core.ID) ([]*Result, error) {
	results := make([]*Result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.Render(ctx, id)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Select applies a click on label to the current selection of a saved chart
// and returns the resulting data mask. The mask is also reported through
// the chart's SetDataMask hook when the chart emits cross filters.
func (s *Service) Select(ctx context.Context, id core.ID, current []string, label string, multi bool) (chart.DataMask, error) {
	r, err := s.RenderWithSelection(ctx, id, current)
	if err != nil {
		return chart.DataMask{}, err
	}
	return crossfilter.Select(r.Props, label, multi), nil
}
