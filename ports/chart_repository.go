package ports

import (
	"context"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

// ChartRepository defines the interface for saved chart storage operations
type ChartRepository interface {
	Create(ctx context.Context, c *chart.Chart) error
	GetByID(ctx context.Context, id core.ID) (*chart.Chart, error)
	List(ctx context.Context, limit, offset int) ([]*chart.Chart, error)
	Update(ctx context.Context, c *chart.Chart) error
	Delete(ctx context.Context, id core.ID) error
}
