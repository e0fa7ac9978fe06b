package ui

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

type indexPage struct {
	Charts []*chart.Chart
}

type chartPage struct {
	Chart       *chart.Chart
	Description template.HTML
	Option      chart.EChartsOption
	Selected    []string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	charts, err := a.charts.List(r.Context(), a.pageSize, 0)
	if err != nil {
		a.logger.Error("failed to list charts: %v", err)
		http.Error(w, "failed to list charts", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.pages.RenderPage(w, "index.html", indexPage{Charts: charts}); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// handleChart renders one chart; ?selected= may repeat
func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	selected := r.URL.Query()["selected"]
	res, err := a.render.RenderWithSelection(r.Context(), id, selected)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case core.IsNotFoundError(err):
			status = http.StatusNotFound
		case core.IsInputError(err):
			status = http.StatusUnprocessableEntity
		default:
			a.logger.Error("failed to render chart %s: %v", id, err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	page := chartPage{
		Chart:       res.Chart,
		Description: a.pages.RenderDescription(res.Chart.Description),
		Option:      res.Props.Option,
		Selected:    res.Props.SelectedValues,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.pages.RenderPage(w, "chart.html", page); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
