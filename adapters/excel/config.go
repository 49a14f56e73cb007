package excel

// ReaderConfig holds configuration for spreadsheet reading
type ReaderConfig struct {
	RawCellValues bool `json:"raw_cell_values"` // Read stored values instead of display-formatted text
	MaxRows       int  `json:"max_rows"`        // 0 means unlimited
}

// DefaultReaderConfig returns sensible defaults for spreadsheet processing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		RawCellValues: true,
		MaxRows:       0,
	}
}
