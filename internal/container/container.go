package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"boxplot/adapters/excel"
	"boxplot/adapters/sqlstore"
	"boxplot/domain/chart"
	"boxplot/internal"
	"boxplot/internal/api"
	"boxplot/internal/boxplot"
	"boxplot/internal/colors"
	"boxplot/internal/coltypes"
	"boxplot/internal/config"
	"boxplot/internal/format"
	"boxplot/internal/render"
	"boxplot/internal/telemetry"
	"boxplot/ports"
	"boxplot/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Metrics *telemetry.Metrics

	// Chart defaults merged from the theme file and environment
	Layout chart.Layout

	// Repositories and datasources
	Charts  ports.ChartRepository
	Sources map[chart.SourceKind]ports.RecordSource

	// Rendering. Preview always prerenders tooltips since browsers cannot
	// call Go formatters.
	Render        *render.Service
	PreviewRender *render.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	layout, err := config.LoadLayout(cfg.Chart.DefaultsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart defaults: %w", err)
	}

	c := &Container{
		Config: cfg,
		Layout: layout,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = telemetry.New()
	}
	return c, nil
}

// Open connects the configured database and initializes the container with it
func (c *Container) Open(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.Charts = sqlstore.NewChartRepository(db)
	c.Sources = map[chart.SourceKind]ports.RecordSource{
		chart.SourceFile: excel.FileSource{BaseDir: c.Config.Data.Dir},
		chart.SourceSQL:  sqlstore.NewQuerySource(db, c.Config.Data.RowLimit),
	}

	c.initRendering()

	log.Printf("Container initialized successfully with %s database", c.Config.Database.Driver)
	return nil
}

// initRendering builds the API and preview render services
func (c *Container) initRendering() {
	opts := []boxplot.Option{
		boxplot.WithLayout(c.Layout),
		boxplot.WithObserver(boxplot.LogObserver{Logger: internal.DefaultLogger.With("BoxPlot")}),
	}
	if c.Config.Chart.PrerenderTooltips {
		opts = append(opts, boxplot.WithPrerenderedTooltips())
	}
	c.Render = render.NewService(c.Charts, c.Sources, c.newTransformer(opts...), c.Metrics, c.Config.Render.Concurrency)

	preview := c.newTransformer(boxplot.WithLayout(c.Layout), boxplot.WithPrerenderedTooltips())
	c.PreviewRender = render.NewService(c.Charts, c.Sources, preview, c.Metrics, c.Config.Render.Concurrency)
}

func (c *Container) newTransformer(opts ...boxplot.Option) *boxplot.Transformer {
	return boxplot.New(colors.NewRegistry(), format.NewRegistry(), coltypes.Resolver{}, opts...)
}

// APIServer builds the JSON API
func (c *Container) APIServer() (*api.Server, error) {
	if c.Render == nil {
		return nil, fmt.Errorf("container not initialized with a database")
	}
	return api.NewServer(c.Charts, c.Render, c.Metrics), nil
}

// PreviewApp builds the HTML preview
func (c *Container) PreviewApp() (*ui.App, error) {
	if c.PreviewRender == nil {
		return nil, fmt.Errorf("container not initialized with a database")
	}
	return ui.NewApp(ui.Config{Port: c.Config.Preview.Port}, c.Charts, c.PreviewRender)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
