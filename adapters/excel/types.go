package excel

// RawRowData represents a row of a sheet as header -> trimmed cell text
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
