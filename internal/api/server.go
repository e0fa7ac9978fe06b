// Package api serves the box-plot HTTP API.
package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"boxplot/adapters/excel"
	"boxplot/domain/chart"
	"boxplot/internal"
	"boxplot/internal/render"
	"boxplot/internal/telemetry"
	"boxplot/ports"
)

// Server is the HTTP API
type Server struct {
	router  *gin.Engine
	charts  ports.ChartRepository
	render  *render.Service
	metrics *telemetry.Metrics
	logger  *internal.Logger

	// export writes the statistics workbook of a rendered chart
	export func(w io.Writer, entries []chart.BoxPlotEntry) error
}

// NewServer creates the API server and registers its routes. metrics may be
// nil, in which case /metrics is not served.
func NewServer(charts ports.ChartRepository, svc *render.Service, metrics *telemetry.Metrics) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:  router,
		charts:  charts,
		render:  svc,
		metrics: metrics,
		logger:  internal.DefaultLogger.With("API"),
		export:  excel.ExportStatistics,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	v1.POST("/boxplot/transform", s.transform)

	charts := v1.Group("/charts")
	charts.POST("", s.createChart)
	charts.GET("", s.listCharts)
	charts.POST("/render", s.renderBatch)
	charts.GET("/:id", s.getChart)
	charts.PUT("/:id", s.updateChart)
	charts.DELETE("/:id", s.deleteChart)
	charts.GET("/:id/render", s.renderChart)
	charts.GET("/:id/export.xlsx", s.exportChart)
	charts.POST("/:id/select", s.selectLabel)
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr
func (s *Server) Run(addr string) error {
	s.logger.Info("API listening on %s", addr)
	return s.router.Run(addr)
}
