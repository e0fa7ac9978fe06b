// Package ui serves an HTML preview of saved box-plot charts.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"boxplot/internal"
	"boxplot/internal/render"
	"boxplot/ports"
	"boxplot/ui/services"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App represents the preview application
type App struct {
	router   *chi.Mux
	charts   ports.ChartRepository
	render   *render.Service
	pages    *services.RenderService
	logger   *internal.Logger
	pageSize int
}

// Config holds preview application configuration
type Config struct {
	Port     string
	PageSize int
}

// NewApp creates the preview application
func NewApp(config Config, charts ports.ChartRepository, svc *render.Service) (*App, error) {
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	app := &App{
		router:   chi.NewRouter(),
		charts:   charts,
		render:   svc,
		pages:    services.NewRenderService(templates),
		logger:   internal.DefaultLogger.With("Preview"),
		pageSize: pageSize,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/charts/{id}", a.handleChart)
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start serves the preview on addr
func (a *App) Start(addr string) error {
	a.logger.Info("preview listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
