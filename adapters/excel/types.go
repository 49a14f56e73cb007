package excel

import (
	"qastats/domain/core"
)

// RawRowData represents a row of raw spreadsheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents one parsed sheet
type ExcelData struct {
	Sheet   string       // Sheet the rows came from
	Headers []string     // Column headers, de-duplicated
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the sheet has the named column
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns every cell of a column in row order. Absent cells are "".
func (d *ExcelData) Column(name string) ([]string, error) {
	if !d.HasColumn(name) {
		return nil, core.NewNotFoundError(core.ErrColumnNotFound, name)
	}
	cells := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row[name]
	}
	return cells, nil
}

// DistinctValues returns the non-empty values of a column in first-seen order.
func (d *ExcelData) DistinctValues(name string) ([]string, error) {
	cells, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var values []string
	for _, cell := range cells {
		if cell == "" || seen[cell] {
			continue
		}
		seen[cell] = true
		values = append(values, cell)
	}
	return values, nil
}

// FilterRows returns the rows whose filterColumn equals value.
func (d *ExcelData) FilterRows(filterColumn, value string) ([]RawRowData, error) {
	if !d.HasColumn(filterColumn) {
		return nil, core.NewNotFoundError(core.ErrColumnNotFound, filterColumn)
	}
	var rows []RawRowData
	for _, row := range d.Rows {
		if row[filterColumn] == value {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// GroupValues returns the raw target cells of every row in one group.
func (d *ExcelData) GroupValues(filterColumn, group, target string) ([]string, error) {
	if !d.HasColumn(target) {
		return nil, core.NewNotFoundError(core.ErrColumnNotFound, target)
	}
	rows, err := d.FilterRows(filterColumn, group)
	if err != nil {
		return nil, err
	}
	cells := make([]string, len(rows))
	for i, row := range rows {
		cells[i] = row[target]
	}
	return cells, nil
}
