package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"boxplot/adapters/excel"
	"boxplot/adapters/sqlstore"
	"boxplot/domain/chart"
	"boxplot/internal/boxplot"
	"boxplot/internal/colors"
	"boxplot/internal/coltypes"
	"boxplot/internal/format"
	"boxplot/internal/render"
	"boxplot/internal/telemetry"
	"boxplot/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const salesCSV = "region,amount\nwest,1\nwest,2\nwest,3\neast,10\neast,20\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(salesCSV), 0o644))

	db, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlstore.NewChartRepository(db)
	sources := map[chart.SourceKind]ports.RecordSource{
		chart.SourceFile: excel.FileSource{BaseDir: dir},
		chart.SourceSQL:  sqlstore.NewQuerySource(db, 0),
	}
	tr := boxplot.New(colors.NewRegistry(), format.NewRegistry(), coltypes.Resolver{})
	metrics := telemetry.New()
	return NewServer(repo, render.NewService(repo, sources, tr, metrics, 2), metrics)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const createBody = `{
  "name": "Sales",
  "description": "Amount by *region*",
  "source_kind": "file",
  "source": "sales.csv",
  "form_data": {"groupby": ["region"], "metrics": ["amount"], "emit_filter": true}
}`

func createChart(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/charts", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := gjson.Get(rec.Body.String(), "id").String()
	require.NotEmpty(t, id)
	return id
}

func TestTransformEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := `{
	  "form_data": {"groupby": ["region"], "metrics": ["sales"]},
	  "queries_data": [{"data": [{"region": "west", "sales__min": 1, "sales__q1": 2, "sales__median": 3,
	    "sales__q3": 4, "sales__max": 5, "sales__mean": 3, "sales__count": 10, "sales__outliers": [9, 10]}]}],
	  "filter_state": {"selectedValues": ["west", "gone"]}
	}`

	rec := do(t, s, http.MethodPost, "/api/v1/boxplot/transform", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := rec.Body.String()
	assert.Equal(t, "boxplot", gjson.Get(out, "echartOptions.series.0.type").String())
	assert.Equal(t, `[1,2,3,4,5,3,10,[9,10]]`, gjson.Get(out, "echartOptions.series.0.data.0.value").Raw)
	assert.Equal(t, "scatter", gjson.Get(out, "echartOptions.series.1.type").String())
	assert.Equal(t, `["west",9]`, gjson.Get(out, "echartOptions.series.1.data.0").Raw)
	assert.Equal(t, `[0,-1]`, gjson.Get(out, "selectedValuesIndexes").Raw)
	assert.Equal(t, `["west"]`, gjson.Get(out, "labelMap.west").Raw)
}

func TestTransformEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/boxplot/transform", `{"form_data":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/boxplot/transform",
		`{"form_data": {"groupby": [], "metrics": ["sales"]}, "queries_data": [{"data": [{"sales__min": 1}]}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MISSING_STATISTIC", gjson.Get(rec.Body.String(), "code").String())
}

func TestChartLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)

	rec := do(t, s, http.MethodGet, "/api/v1/charts/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sales", gjson.Get(rec.Body.String(), "name").String())
	assert.Equal(t, "box_plot", gjson.Get(rec.Body.String(), "viz_type").String())

	rec = do(t, s, http.MethodGet, "/api/v1/charts?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "charts.#").Int())

	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+id+"/render", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `["west","east"]`, gjson.Get(rec.Body.String(), "echartOptions.xAxis.data").Raw)
	assert.Equal(t, 2.0, gjson.Get(rec.Body.String(), "echartOptions.series.0.data.0.value.2").Float())

	rec = do(t, s, http.MethodPost, "/api/v1/charts/"+id+"/select", `{"label": "east"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `[{"col":"region","op":"IN","val":["east"]}]`, gjson.Get(rec.Body.String(), "extraFormData.filters").Raw)

	rec = do(t, s, http.MethodPost, "/api/v1/charts/render", `{"ids": ["`+id+`", "`+id+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "results.#").Int())

	rec = do(t, s, http.MethodDelete, "/api/v1/charts/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)

	rec := do(t, s, http.MethodGet, "/api/v1/charts/"+id+"/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(excel.StatisticsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "west", rows[1][0])
}

func TestExportFailureReturnsError(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)
	s.export = func(w io.Writer, _ []chart.BoxPlotEntry) error {
		w.Write([]byte("PK partial"))
		return errors.New("disk full")
	}

	rec := do(t, s, http.MethodGet, "/api/v1/charts/"+id+"/export.xlsx", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotContains(t, rec.Body.String(), "PK partial")
	assert.Equal(t, "INTERNAL_ERROR", gjson.Get(rec.Body.String(), "code").String())
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "disk full")
}

func TestChartValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/charts", `{"name": "x", "source_kind": "ftp", "source": "a", "form_data": {"metrics": ["m"]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/charts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/charts?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)

	do(t, s, http.MethodPost, "/api/v1/boxplot/transform", `{"form_data": {"metrics": ["m"]}}`)
	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boxplot_transforms_total{outcome="ok"} 1`)
}
