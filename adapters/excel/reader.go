package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"boxplot/domain/core"
	"boxplot/internal"
	"boxplot/ports"
)

// SheetName is the sheet data files are read from.
const SheetName = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.DefaultLogger.With("DataReader")}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file %s", core.ErrSourceNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads Sheet1 into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetName, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", SheetName, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: Excel file has no header row", core.ErrInvalidPayload)
	}
	return r.processRows(rows), nil
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	start := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: CSV file has no header row", core.ErrInvalidPayload)
	}
	return r.processRows(rows), nil
}

// processRows converts raw string rows into ExcelData format. Short rows
// leave their trailing columns unset.
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}
}

// Records reads the file and returns typed records restricted to columns
// (all columns when empty). Cells are coerced with CoerceCell.
func (r *DataReader) Records(columns []string) ([]ports.Record, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = data.Headers
	}
	for _, col := range columns {
		if !slices.Contains(data.Headers, col) {
			return nil, core.NewUnknownColumnError(col)
		}
	}

	records := make([]ports.Record, len(data.Rows))
	for i, row := range data.Rows {
		rec := make(ports.Record, len(columns))
		for _, col := range columns {
			cell, ok := row[col]
			if !ok {
				rec[col] = nil
				continue
			}
			rec[col] = CoerceCell(cell)
		}
		records[i] = rec
	}
	return records, nil
}

// CoerceCell types a cell: empty cells are null, finite numbers become
// float64, TRUE/FALSE become booleans, anything else (including "NaN" and
// "Inf") stays text.
func CoerceCell(cell string) any {
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch strings.ToLower(cell) {
	case "true":
		return true
	case "false":
		return false
	}
	return cell
}

// FileSource serves records from data files below a base directory.
type FileSource struct {
	BaseDir string
}

var _ ports.RecordSource = FileSource{}

// FetchRecords implements ports.RecordSource. source is a path relative to
// BaseDir; paths escaping it are rejected.
func (s FileSource) FetchRecords(ctx context.Context, source string, columns []string) ([]ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(source)
	if err != nil {
		return nil, err
	}
	return NewDataReader(path).Records(columns)
}

func (s FileSource) resolve(source string) (string, error) {
	if s.BaseDir == "" {
		return source, nil
	}
	if filepath.IsAbs(source) {
		return "", fmt.Errorf("%w: absolute data file path %q", core.ErrInvalidPayload, source)
	}
	path := filepath.Join(s.BaseDir, source)
	rel, err := filepath.Rel(s.BaseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: data file %q outside %s", core.ErrInvalidPayload, source, s.BaseDir)
	}
	return path, nil
}
