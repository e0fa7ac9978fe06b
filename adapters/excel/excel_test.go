package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecordsFromCSV(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", "region, sales ,flag\nwest,1.5,TRUE\neast,,false\n north ,abc\n")

	records, err := NewDataReader(path).Records(nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "west", records[0]["region"])
	assert.Equal(t, 1.5, records[0]["sales"])
	assert.Equal(t, true, records[0]["flag"])
	assert.Nil(t, records[1]["sales"])
	assert.Equal(t, false, records[1]["flag"])
	assert.Equal(t, "north", records[2]["region"])
	assert.Equal(t, "abc", records[2]["sales"])
	assert.Nil(t, records[2]["flag"])
}

func TestRecordsRestrictsColumns(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", "region,sales,flag\nwest,1,true\n")

	records, err := NewDataReader(path).Records([]string{"sales"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sales": 1.0}, records[0])

	_, err = NewDataReader(path).Records([]string{"profit"})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestRecordsFromXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"region", "sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"west", 2.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"east", 4}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := NewDataReader(path).Records([]string{"region", "sales"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2.5, records[0]["sales"])
	assert.Equal(t, 4.0, records[1]["sales"])
}

func TestReadDataMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadData()
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFileSourceStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sales.csv", "region,sales\nwest,1\n")
	src := FileSource{BaseDir: dir}

	records, err := src.FetchRecords(context.Background(), "sales.csv", []string{"sales"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = src.FetchRecords(context.Background(), "../etc/passwd", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPayload)

	_, err = src.FetchRecords(context.Background(), "/etc/passwd", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPayload)
}

func TestCoerceCell(t *testing.T) {
	assert.Nil(t, CoerceCell(""))
	assert.Equal(t, 3.0, CoerceCell("3"))
	assert.Equal(t, -0.5, CoerceCell("-0.5"))
	assert.Equal(t, true, CoerceCell("True"))
	assert.Equal(t, "west", CoerceCell("west"))
	assert.Equal(t, "Inf", CoerceCell("Inf"))
	assert.Equal(t, "-infinity", CoerceCell("-infinity"))
	assert.Equal(t, "NaN", CoerceCell("NaN"))
}

func TestExportStatistics(t *testing.T) {
	entries := []chart.BoxPlotEntry{
		{Name: "west", Value: chart.BoxPlotValue{Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5, Mean: 3, Count: 10, Outliers: []float64{9, 10.5}}},
		{Name: "east", Value: chart.BoxPlotValue{Min: 1, Q1: 1, Median: 1, Q3: 1, Max: 1, Mean: 1, Count: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportStatistics(&buf, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(StatisticsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, []string{"west", "1", "2", "3", "4", "5", "3", "10", "9, 10.5"}, rows[1])
	assert.Equal(t, "east", rows[2][0])
}
