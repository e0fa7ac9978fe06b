package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boxplot/adapters/chartdata"
	"boxplot/domain/chart"
	"boxplot/domain/core"
	apperrors "boxplot/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxBatchSize    = 50
)

// chartRequest is the body of create and update requests
type chartRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	SourceKind  chart.SourceKind `json:"source_kind"`
	Source      string           `json:"source"`
	FormData    chart.FormData   `json:"form_data"`
}

func (r chartRequest) apply(c *chart.Chart) {
	c.Name = r.Name
	c.Description = r.Description
	c.SourceKind = r.SourceKind
	c.Source = r.Source
	c.FormData = r.FormData
	c.VizType = r.FormData.VizType
	if c.VizType == "" {
		c.VizType = chart.VizTypeBoxPlot
	}
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

type selectRequest struct {
	Label    string   `json:"label"`
	Selected []string `json:"selected"`
	Multi    bool     `json:"multi"`
}

// respondError writes err with the status its code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func (s *Server) chartID(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return "", false
	}
	return id, true
}

// transform converts posted chart props into renderer props
func (s *Server) transform(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("failed to read request body"))
		return
	}
	props, err := chartdata.DecodeProps(body)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out, err := s.render.Transform(props)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createChart(c *gin.Context) {
	var req chartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	var ch chart.Chart
	req.apply(&ch)
	if err := ch.Validate(); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.charts.Create(c.Request.Context(), &ch); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (s *Server) updateChart(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	var req chartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	ch, err := s.charts.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	req.apply(ch)
	if err := ch.Validate(); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.charts.Update(c.Request.Context(), ch); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (s *Server) getChart(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	ch, err := s.charts.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (s *Server) listCharts(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if limit < 1 || limit > maxPageSize || offset < 0 {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("limit must be 1-%d and offset non-negative", maxPageSize)))
		return
	}

	charts, err := s.charts.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": charts, "limit": limit, "offset": offset})
}

func (s *Server) deleteChart(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	if err := s.charts.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// renderChart renders a saved chart; ?selected= may repeat
func (s *Server) renderChart(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	res, err := s.render.RenderWithSelection(c.Request.Context(), id, c.QueryArray("selected"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Props)
}

func (s *Server) renderBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	if len(req.IDs) == 0 || len(req.IDs) > maxBatchSize {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("between 1 and %d ids are required", maxBatchSize)))
		return
	}
	ids := make([]core.ID, len(req.IDs))
	for i, raw := range req.IDs {
		id, err := core.ParseID(raw)
		if err != nil {
			s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
			return
		}
		ids[i] = id
	}

	results, err := s.render.RenderBatch(c.Request.Context(), ids)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]gin.H, len(results))
	for i, r := range results {
		out[i] = gin.H{"id": r.Chart.ID, "props": r.Props}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (s *Server) exportChart(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	res, err := s.render.Render(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// The workbook is built in memory so a failed export still gets an error
	// status instead of a truncated 200.
	var buf bytes.Buffer
	if err := s.export(&buf, res.Props.Option.BoxPlot.Data); err != nil {
		s.respondError(c, apperrors.Wrapf(err, "failed to export chart %s", id))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) selectLabel(c *gin.Context) {
	id, ok := s.chartID(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Label == "" {
		s.respondError(c, apperrors.InvalidInput("label is required"))
		return
	}
	mask, err := s.render.Select(c.Request.Context(), id, req.Selected, req.Label, req.Multi)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mask)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}
