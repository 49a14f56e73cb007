package app

import (
	"qastats/adapters/excel"

	"github.com/stretchr/testify/mock"
)

// MockWorkbookSource is a testify mock of ports.WorkbookSource
type MockWorkbookSource struct {
	mock.Mock
}

func (m *MockWorkbookSource) Sheets() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWorkbookSource) ReadSheet(sheet string) (*excel.ExcelData, error) {
	args := m.Called(sheet)
	data, _ := args.Get(0).(*excel.ExcelData)
	return data, args.Error(1)
}

// qaSheet has two lines with known reference values on Weight:
// L1 = {2, 1, 3, 4}, L2 = {6, 5, 7, 9}.
func qaSheet() *excel.ExcelData {
	headers := []string{"Line", "Weight", "Width", "Note"}
	cells := [][]string{
		{"L1", "2", "3", "ok"},
		{"L1", "1,0", "3", "ok"},
		{"L1", "n/a", "3", ""},
		{"L1", " 3 ", "3", "ok"},
		{"L1", "4", "3", "late"},
		{"L2", "6", "3", "ok"},
		{"L2", "5", "3", ""},
		{"L2", "7", "3", "ok"},
		{"L2", "9", "3", "ok"},
		{"L3", "", "", "empty"},
	}
	data := &excel.ExcelData{Sheet: "QA", Headers: headers}
	for _, row := range cells {
		raw := excel.RawRowData{}
		for i, h := range headers {
			raw[h] = row[i]
		}
		data.Rows = append(data.Rows, raw)
	}
	return data
}

func weightRequest(test ComparisonTest) ComparisonRequest {
	return ComparisonRequest{
		Sheet:        "QA",
		FilterColumn: "Line",
		GroupA:       "L1",
		GroupB:       "L2",
		Target:       "Weight",
		Test:         test,
	}
}
