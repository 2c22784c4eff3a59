package cleaning

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-dashboard/internal/models"
)

func mustRead(t *testing.T, csvText string) *RawTable {
	t.Helper()
	raw, err := ReadRaw(strings.NewReader(csvText))
	require.NoError(t, err)
	return raw
}

func TestCanonicalColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Production Date", "production_date"},
		{"  Volume  ", "volume"},
		{"Disposition-Code", "disposition_code"},
		{"Land Class/Category", "land_class_category"},
		{"FIPS Code", "fips_code"},
		{"already_canonical", "already_canonical"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalColumnName(tt.in))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{"thousands separator", "1,234.5", 1234.5, true},
		{"surrounding whitespace", "  42 ", 42, true},
		{"negative true-up", "-1,000", -1000, true},
		{"multiple separators", "12,345,678", 12345678, true},
		{"empty", "", 0, false},
		{"text", "n/a", 0, false},
		{"nan", "NaN", 0, false},
		{"infinity", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := models.NewDate(2020, time.March, 1)

	for _, in := range []string{
		"2020-03-01",
		"2020-03-01T00:00:00Z",
		"2020-03-01 12:30:00",
		"03/01/2020",
		"3/1/2020",
		"2020/03/01",
		"2020-03",
	} {
		t.Run(in, func(t *testing.T) {
			got, ok := ParseDate(in)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	raw := mustRead(t, "Production Date,Commodity,State,Volume,Disposition Code\n"+
		"2020-01-15, oil ,NEW MEXICO,\"1,234.5\",1\n"+
		"bad-date,GAS,withheld,oops,x\n"+
		",,, ,\n")

	table, diags := Normalize(raw)

	require.Equal(t, 3, table.NumRows())
	for _, name := range []string{"production_date", "commodity", "state", "volume", "disposition_code"} {
		assert.True(t, table.Has(name), name)
	}

	date, _ := table.Column("production_date")
	assert.Equal(t, DateColumn, date.Kind)
	require.NotNil(t, date.Dates[0])
	assert.Equal(t, "2020-01-15", date.Dates[0].String())
	assert.Nil(t, date.Dates[1])
	assert.Nil(t, date.Dates[2])

	commodity, _ := table.Column("commodity")
	assert.Equal(t, []string{"Oil", "Gas", ""}, commodity.Text)

	state, _ := table.Column("state")
	assert.Equal(t, []string{"New Mexico", "Withheld", ""}, state.Text)

	volume, _ := table.Column("volume")
	require.NotNil(t, volume.Numbers[0])
	assert.Equal(t, 1234.5, *volume.Numbers[0])
	assert.Nil(t, volume.Numbers[1])
	assert.Nil(t, volume.Numbers[2])

	assert.Equal(t, models.Diagnostics{
		models.CellParseFailure("production_date", 1),
		models.CellParseFailure("volume", 1),
		models.CellParseFailure("disposition_code", 1),
	}, diags)
}

func TestNormalize_TitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sales-royalty due", "Sales-Royalty Due"},
		{"  gulf of mexico ", "Gulf Of Mexico"},
		{"TX", "Tx"},
		{"WITHHELD", "Withheld"},
		// apostrophes stay inside the word
		{"o'brien county", "O'brien County"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			table, _ := Normalize(&RawTable{Header: []string{"County"}, Rows: [][]string{{tt.in}}})

			county, ok := table.Column("county")
			require.True(t, ok)
			assert.Equal(t, tt.want, county.Text[0])
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := mustRead(t, "Production Date,Commodity,State,County,Volume,Land Class\n"+
		"2021-06-30,oil,texas, harris ,\"12,000\",federal\n"+
		"2019-02-01,Gas,WITHHELD,,-15.25,\n"+
		"junk,ngl,LA,Acadia,1e3,Indian\n")

	once, _ := Normalize(raw)
	twice, diags := Normalize(once.Raw())

	assert.Empty(t, diags)
	assert.Equal(t, once, twice)
}

func TestNormalize_MissingCellsInShortRows(t *testing.T) {
	raw := &RawTable{
		Header: []string{"state", "volume"},
		Rows:   [][]string{{"TX"}},
	}

	table, diags := Normalize(raw)

	assert.Empty(t, diags)
	volume, _ := table.Column("volume")
	assert.Nil(t, volume.Numbers[0])
}
