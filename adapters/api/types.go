package api

import (
	"qastats/app"
	"qastats/internal/workbook"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WorkbookResponse describes one stored upload
type WorkbookResponse struct {
	Workbook *workbook.Workbook `json:"workbook"`
	Sheets   []string           `json:"sheets,omitempty"`
}

// SheetsResponse lists sheet names in workbook order
type SheetsResponse struct {
	Sheets []string `json:"sheets"`
}

// ColumnsResponse lists the headers of one sheet
type ColumnsResponse struct {
	Sheet   string   `json:"sheet"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// ValuesResponse lists distinct non-empty values of a column, i.e. the
// groups it can split the sheet into
type ValuesResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
	Count  int      `json:"count"`
}

// CompareResponse wraps a report with its rendered text
type CompareResponse struct {
	Report   *app.Report `json:"report"`
	Text     string      `json:"text"`
	Markdown string      `json:"markdown"`
}
