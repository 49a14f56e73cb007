package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qastats/domain/core"
	"qastats/internal"

	"github.com/xuri/excelize/v2"
)

// csvSheetName is the single sheet a CSV file exposes
const csvSheetName = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	content  []byte // Set when reading an upload instead of a path
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: FileTypeFromName(filePath),
		config:   DefaultReaderConfig(),
		logger:   internal.DefaultLogger,
	}
}

// NewBytesReader reads an in-memory upload. name is only used to detect the file type.
func NewBytesReader(name string, content []byte) *DataReader {
	r := NewDataReader(name)
	r.content = content
	return r
}

// WithConfig replaces the reader configuration
func (r *DataReader) WithConfig(config ReaderConfig) *DataReader {
	r.config = config
	return r
}

// FileTypeFromName returns "csv" for .csv files and "xlsx" otherwise
func FileTypeFromName(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// Sheets lists the sheet names in workbook order. CSV files expose a single sheet.
func (r *DataReader) Sheets() ([]string, error) {
	if r.fileType == "csv" {
		if err := r.checkExists(); err != nil {
			return nil, err
		}
		return []string{csvSheetName}, nil
	}

	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadData reads the first sheet
func (r *DataReader) ReadData() (*ExcelData, error) {
	sheets, err := r.Sheets()
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return r.ReadSheet(sheets[0])
}

// ReadSheet reads the named sheet into structured format
func (r *DataReader) ReadSheet(sheet string) (*ExcelData, error) {
	r.logger.Debug("[DataReader] Reading %s sheet %q from %s", r.fileType, sheet, r.source())

	switch r.fileType {
	case "csv":
		if sheet != csvSheetName {
			return nil, core.NewNotFoundError(core.ErrSheetNotFound, sheet)
		}
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData(sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) source() string {
	if r.content != nil {
		return fmt.Sprintf("upload %s", filepath.Base(r.filePath))
	}
	return r.filePath
}

func (r *DataReader) checkExists() error {
	if r.content != nil {
		return nil
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	return nil
}

func (r *DataReader) openWorkbook() (*excelize.File, error) {
	if err := r.checkExists(); err != nil {
		return nil, err
	}

	var (
		f   *excelize.File
		err error
	)
	if r.content != nil {
		f, err = excelize.OpenReader(bytes.NewReader(r.content))
	} else {
		f, err = excelize.OpenFile(r.filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return f, nil
}

// readExcelData reads one worksheet into structured format
func (r *DataReader) readExcelData(sheet string) (*ExcelData, error) {
	startTime := time.Now()
	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, core.NewNotFoundError(core.ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: r.config.RawCellValues})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s must have at least a header row and one data row", sheet)
	}

	return r.processRows(sheet, rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	var src io.Reader
	if r.content != nil {
		src = bytes.NewReader(r.content)
	} else {
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		src = file
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(csvSheetName, rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(sheet string, rows [][]string) (*ExcelData, error) {
	headers := uniqueHeaders(rows[0])

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if r.config.MaxRows > 0 && len(dataRows) >= r.config.MaxRows {
			r.logger.Warn("[DataReader] Sheet %s truncated at %d rows", sheet, r.config.MaxRows)
			break
		}

		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("[DataReader] %s sheet %s processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), sheet, len(headers), len(dataRows))

	return &ExcelData{
		Sheet:   sheet,
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// uniqueHeaders trims header names, names blank ones after their position and
// suffixes repeats with .1, .2, ... so every column stays addressable.
func uniqueHeaders(headerRow []string) []string {
	headers := make([]string, len(headerRow))
	used := make(map[string]bool)
	for i, raw := range headerRow {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		headers[i] = candidate
	}
	return headers
}
