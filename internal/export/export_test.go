package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vcollos/dashboard-rn518/internal/model"
)

func testRecords() []model.IndicatorRecord {
	lives := int64(15200)
	return []model.IndicatorRecord{
		{
			OperatorID: "316458",
			Year:       2024,
			Quarter:    4,
			Ratios: model.Ratios{
				MLL: 9, ROE: 18, DM: 68, DA: 15, DC: 0, DOP: 83, IRF: 0,
				LC: 1.5, CTCP: 0, PMCR: 0, PMPE: 0,
			},
			CoveredLives: &lives,
		},
		{
			OperatorID: "421545",
			Year:       2024,
			Quarter:    4,
			Ratios: model.Ratios{
				MLL: -1.23456, DM: 75, DA: 10, DC: 3, DOP: 88, LC: 0.666666,
				PMCR: 12.345, PMPE: 30.005,
			},
		},
	}
}

func TestWriteCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRecords()))

	goldie.New(t).Assert(t, "period", buf.Bytes())
}

func TestWriteXLSX(t *testing.T) {
	avg := model.ConsolidatedRecord{Year: 2024, Quarter: 4, Ratios: model.Ratios{MLL: 3.9, LC: 1.08}, Operators: 2}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRecords(), &avg))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{recordsSheet, averageSheet}, f.GetSheetList())

	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header(), rows[0])
	assert.Equal(t, "316458", rows[1][0])
	assert.Equal(t, "68", rows[1][5])
	assert.Equal(t, "15200", rows[1][14])

	avgRows, err := f.GetRows(averageSheet)
	require.NoError(t, err)
	require.Len(t, avgRows, 12)
	assert.Equal(t, []string{"mll", "3.9"}, avgRows[1])
	assert.Equal(t, []string{"lc", "1.08"}, avgRows[8])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(csvPath, testRecords(), nil))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "operator_id,year,quarter,mll")

	// overwrite keeps a single complete file
	require.NoError(t, WriteFile(csvPath, testRecords()[:1], nil))
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "421545")

	xlsxPath := filepath.Join(dir, "out.XLSX")
	require.NoError(t, WriteFile(xlsxPath, testRecords(), nil))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{recordsSheet}, f.GetSheetList())

	err = WriteFile(filepath.Join(dir, "out.pdf"), nil, nil)
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a/b/c.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromPath("noext")
	assert.Error(t, err)
}
