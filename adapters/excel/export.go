package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"boxplot/domain/chart"
)

// StatisticsSheet is the sheet ExportStatistics writes.
const StatisticsSheet = "Statistics"

var exportHeader = []any{"Name", "Min", "1st Quartile", "Median", "3rd Quartile", "Max", "Mean", "# Observations", "Outliers"}

// ExportStatistics writes one row per box entry to an xlsx workbook.
// Outliers are written as a comma separated list.
func ExportStatistics(w io.Writer, entries []chart.BoxPlotEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StatisticsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(StatisticsSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		v := e.Value
		outliers := make([]string, len(v.Outliers))
		for j, o := range v.Outliers {
			outliers[j] = strconv.FormatFloat(o, 'f', -1, 64)
		}
		row := []any{e.Name, v.Min, v.Q1, v.Median, v.Q3, v.Max, v.Mean, v.Count, strings.Join(outliers, ", ")}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(StatisticsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
