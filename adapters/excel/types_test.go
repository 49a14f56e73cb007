package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qastats/domain/core"
)

func sampleData() *ExcelData {
	return &ExcelData{
		Sheet:   "Sheet1",
		Headers: []string{"line", "weight"},
		Rows: []RawRowData{
			{"line": "A", "weight": "10"},
			{"line": "B", "weight": "12,5"},
			{"line": "", "weight": "7"},
			{"line": "A", "weight": "x"},
			{"line": "B"},
		},
	}
}

func TestExcelData_Column(t *testing.T) {
	data := sampleData()

	cells, err := data.Column("weight")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "12,5", "7", "x", ""}, cells)

	_, err = data.Column("height")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestExcelData_DistinctValues(t *testing.T) {
	values, err := sampleData().DistinctValues("line")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, values)
}

func TestExcelData_GroupValues(t *testing.T) {
	data := sampleData()

	a, err := data.GroupValues("line", "A", "weight")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "x"}, a)

	b, err := data.GroupValues("line", "B", "weight")
	require.NoError(t, err)
	assert.Equal(t, []string{"12,5", ""}, b)

	none, err := data.GroupValues("line", "Z", "weight")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = data.GroupValues("shift", "A", "weight")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	_, err = data.GroupValues("line", "A", "height")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}
