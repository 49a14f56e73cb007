package ports

import (
	"qastats/adapters/excel"
)

// WorkbookSource provides read-only access to one uploaded workbook.
// excel.DataReader is the production implementation.
type WorkbookSource interface {
	// Sheets lists sheet names in workbook order
	Sheets() ([]string, error)
	// ReadSheet parses one sheet into headers and string rows
	ReadSheet(sheet string) (*excel.ExcelData, error)
}

var _ WorkbookSource = (*excel.DataReader)(nil)
