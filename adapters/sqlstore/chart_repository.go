package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"boxplot/domain/chart"
	"boxplot/domain/core"
	"boxplot/ports"
)

// chartRepository implements the ChartRepository interface
type chartRepository struct {
	db *sqlx.DB
}

// NewChartRepository creates a new chart repository
func NewChartRepository(db *sqlx.DB) ports.ChartRepository {
	return &chartRepository{db: db}
}

// chartRow is the stored form of a chart; form data is kept as JSON text.
type chartRow struct {
	chart.Chart
	FormDataJSON string `db:"form_data"`
}

const chartColumns = `id, name, description, viz_type, source_kind, source, form_data, created_at, updated_at`

func toRow(c *chart.Chart) (chartRow, error) {
	fd, err := json.Marshal(c.FormData)
	if err != nil {
		return chartRow{}, fmt.Errorf("failed to marshal form data: %w", err)
	}
	return chartRow{Chart: *c, FormDataJSON: string(fd)}, nil
}

func (row chartRow) toChart() (*chart.Chart, error) {
	c := row.Chart
	if err := json.Unmarshal([]byte(row.FormDataJSON), &c.FormData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form data of chart %s: %w", c.ID, err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Create inserts a new chart, assigning its ID and timestamps when unset
func (r *chartRepository) Create(ctx context.Context, c *chart.Chart) error {
	if c.ID.IsEmpty() {
		c.ID = core.NewID()
	}
	if c.VizType == "" {
		c.VizType = chart.VizTypeBoxPlot
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	row, err := toRow(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO charts (` + chartColumns + `) VALUES (
		:id, :name, :description, :viz_type, :source_kind, :source, :form_data, :created_at, :updated_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	return nil
}

// GetByID retrieves a chart by its ID
func (r *chartRepository) GetByID(ctx context.Context, id core.ID) (*chart.Chart, error) {
	query := r.db.Rebind(`SELECT ` + chartColumns + ` FROM charts WHERE id = ?`)

	var row chartRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrChartNotFound, id)
		}
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}
	return row.toChart()
}

// List returns saved charts, newest first
func (r *chartRepository) List(ctx context.Context, limit, offset int) ([]*chart.Chart, error) {
	query := r.db.Rebind(`SELECT ` + chartColumns + ` FROM charts
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?`)

	var rows []chartRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}

	charts := make([]*chart.Chart, 0, len(rows))
	for _, row := range rows {
		c, err := row.toChart()
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

// Update replaces a chart's configuration
func (r *chartRepository) Update(ctx context.Context, c *chart.Chart) error {
	c.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	row, err := toRow(c)
	if err != nil {
		return err
	}

	query := `UPDATE charts SET
		name = :name, description = :description, viz_type = :viz_type,
		source_kind = :source_kind, source = :source, form_data = :form_data, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update chart: %w", err)
	}
	return expectOne(res, c.ID)
}

// Delete removes a chart
func (r *chartRepository) Delete(ctx context.Context, id core.ID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM charts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete chart: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id core.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrChartNotFound, id)
	}
	return nil
}
