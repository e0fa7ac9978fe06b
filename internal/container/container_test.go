package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxplot/domain/chart"
	"boxplot/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite3", URL: ":memory:"},
		Data:     config.DataConfig{Dir: t.TempDir()},
		Chart:    config.ChartConfig{PrerenderTooltips: true},
		Render:   config.RenderConfig{Concurrency: 2},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestBuildersRequireDatabase(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)

	_, err = c.APIServer()
	assert.Error(t, err)
	_, err = c.PreviewApp()
	assert.Error(t, err)
}

func TestOpenWiresApplication(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	assert.NotNil(t, c.Metrics)
	assert.Contains(t, c.Sources, chart.SourceFile)
	assert.Contains(t, c.Sources, chart.SourceSQL)

	server, err := c.APIServer()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	preview, err := c.PreviewApp()
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	preview.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No charts saved yet.")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	c, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, c.Metrics)
}
