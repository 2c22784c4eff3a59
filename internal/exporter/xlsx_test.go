package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"oilgas-dashboard/internal/dashboard"
	"oilgas-dashboard/internal/filter"
	"oilgas-dashboard/internal/models"
)

func vol(v float64) *float64 { return &v }

func fixtureResult() *dashboard.Result {
	ds := models.NewDataset([]models.Record{
		{Year: 2019, Commodity: "Oil", State: "Texas", DispositionDescription: "Sold", Volume: vol(10)},
		{Year: 2019, Commodity: "Oil", State: "Texas", DispositionDescription: "Sold", Volume: vol(5)},
		{Year: 2020, Commodity: "Gas", State: "Utah", DispositionDescription: "Flared", Volume: vol(7)},
		{Year: 2020, Commodity: "Gas", State: "Withheld", DispositionDescription: "Flared", Volume: vol(-2)},
	}, models.FullSchema())
	res := dashboard.Compute(ds, filter.Default(ds))
	res.SourcePath = "data/sample.csv"
	res.Diagnostics = models.Diagnostics{models.CellParseFailure("volume", 3)}
	return &res
}

func openWorkbook(t *testing.T, res *dashboard.Result) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteWorkbook_Sheets(t *testing.T) {
	f := openWorkbook(t, fixtureResult())

	assert.Equal(t, []string{
		SheetSummary, SheetVolumeByYear, SheetYearCommodity,
		SheetTopStates, SheetTopDispositions, SheetDiagnostics,
	}, f.GetSheetList())
}

func TestWriteWorkbook_Summary(t *testing.T) {
	f := openWorkbook(t, fixtureResult())

	source, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "data/sample.csv", source)

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	values := map[string]string{}
	for _, row := range rows {
		if len(row) >= 2 {
			values[row[0]] = row[1]
		}
	}
	assert.Equal(t, "2019-2020", values["Year range"])
	assert.Equal(t, "4", values["Matched rows"])
	assert.Equal(t, "20", values["Total volume"])
	assert.Equal(t, "1", values["Rows < 0 (adjustments)"])
	assert.Equal(t, dashboard.NegativeVolumeNote, rows[len(rows)-1][0])
}

func TestWriteWorkbook_YearCommodityPivot(t *testing.T) {
	f := openWorkbook(t, fixtureResult())

	rows, err := f.GetRows(SheetYearCommodity)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Year", "Gas", "Oil"},
		{"2019", "0", "15"},
		{"2020", "5", "0"},
	}, rows)
}

func TestWriteWorkbook_Rankings(t *testing.T) {
	f := openWorkbook(t, fixtureResult())

	states, err := f.GetRows(SheetTopStates)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Rank", "State", "Volume"},
		{"1", "Texas", "15"},
		{"2", "Utah", "7"},
	}, states)

	diags, err := f.GetRows(SheetDiagnostics)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, []string{"warning", "cell_parse_failure", "volume", "3"}, diags[1][:4])
}

func TestWriteWorkbook_UnavailablePanels(t *testing.T) {
	ds := models.NewDataset([]models.Record{{Year: 2020, Commodity: "Oil", State: "Texas"}},
		models.NewSchema(models.ColYear, models.ColCommodity, models.ColState))
	res := dashboard.Compute(ds, filter.Default(ds))

	f := openWorkbook(t, &res)

	for _, sheet := range []string{SheetVolumeByYear, SheetYearCommodity, SheetTopStates, SheetTopDispositions} {
		v, err := f.GetCellValue(sheet, "A1")
		require.NoError(t, err)
		assert.Equal(t, notAvailable, v, sheet)
	}
}
