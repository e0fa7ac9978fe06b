// Package chartdata decodes chart payloads: the props a host posts for a
// transform, and chart-data API responses carrying query results.
package chartdata

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

// Paths tried, in order, for each part of a props payload. Both the
// snake_case wire names and the camelCase names of host props are accepted.
var (
	formDataPaths    = []string{"form_data", "formData"}
	filterStatePaths = []string{"filter_state", "filterState"}
	resultSetPaths   = []string{"queries_data.0", "queriesData.0", "queries.0", "result.0"}
)

// DecodeProps decodes a transform request. Only the first result set is
// kept; later ones are ignored.
func DecodeProps(data []byte) (chart.ChartProps, error) {
	if !gjson.ValidBytes(data) {
		return chart.ChartProps{}, fmt.Errorf("%w: malformed JSON", core.ErrInvalidPayload)
	}
	doc := gjson.ParseBytes(data)

	var props chart.ChartProps

	fd, ok := first(doc, formDataPaths)
	if !ok {
		return chart.ChartProps{}, fmt.Errorf("%w: form_data is required", core.ErrInvalidPayload)
	}
	if err := json.Unmarshal([]byte(fd.Raw), &props.FormData); err != nil {
		return chart.ChartProps{}, fmt.Errorf("%w: form_data: %v", core.ErrInvalidPayload, err)
	}

	if fs, ok := first(doc, filterStatePaths); ok {
		if err := json.Unmarshal([]byte(fs.Raw), &props.FilterState); err != nil {
			return chart.ChartProps{}, fmt.Errorf("%w: filter_state: %v", core.ErrInvalidPayload, err)
		}
	}

	if rs, ok := first(doc, resultSetPaths); ok {
		q, err := decodeResultSet(rs)
		if err != nil {
			return chart.ChartProps{}, err
		}
		props.QueriesData = []chart.QueryData{q}
	}
	return props, nil
}

// DecodeResponse extracts the first result set of a chart-data response
// ({"result": [{"data": ..., "colnames": ..., "coltypes": ...}]}).
func DecodeResponse(data []byte) (chart.QueryData, error) {
	if !gjson.ValidBytes(data) {
		return chart.QueryData{}, fmt.Errorf("%w: malformed JSON", core.ErrInvalidPayload)
	}
	rs := gjson.GetBytes(data, "result.0")
	if !rs.Exists() {
		return chart.QueryData{}, nil
	}
	return decodeResultSet(rs)
}

// DecodeFormData decodes a saved form-data document.
func DecodeFormData(data []byte) (chart.FormData, error) {
	var fd chart.FormData
	if err := json.Unmarshal(data, &fd); err != nil {
		return chart.FormData{}, fmt.Errorf("%w: form_data: %v", core.ErrInvalidPayload, err)
	}
	return fd, nil
}

func decodeResultSet(rs gjson.Result) (chart.QueryData, error) {
	var q chart.QueryData
	if rows := rs.Get("data"); rows.Exists() && rows.Type != gjson.Null {
		if !rows.IsArray() {
			return q, fmt.Errorf("%w: data must be an array of rows", core.ErrInvalidPayload)
		}
		if err := json.Unmarshal([]byte(rows.Raw), &q.Data); err != nil {
			return q, fmt.Errorf("%w: data: %v", core.ErrInvalidPayload, err)
		}
	}
	for _, name := range rs.Get("colnames").Array() {
		q.ColNames = append(q.ColNames, name.String())
	}
	for _, t := range rs.Get("coltypes").Array() {
		q.ColTypes = append(q.ColTypes, chart.GenericDataType(t.Int()))
	}
	return q, nil
}

func first(doc gjson.Result, paths []string) (gjson.Result, bool) {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}
