package aggregate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-dashboard/internal/models"
)

func vol(v float64) *float64 { return &v }

func dataset(records ...models.Record) *models.Dataset {
	return models.NewDataset(records, models.FullSchema())
}

func noVolume(records ...models.Record) *models.Dataset {
	var cols []string
	for _, c := range models.CanonicalColumns {
		if c != models.ColVolume {
			cols = append(cols, c)
		}
	}
	return models.NewDataset(records, models.NewSchema(cols...))
}

func TestTotalVolume(t *testing.T) {
	ds := dataset(
		models.Record{Year: 2020, Volume: vol(10)},
		models.Record{Year: 2020, Volume: vol(-2.5)},
		models.Record{Year: 2021},
		models.Record{Year: 2021, Volume: vol(0.1)},
		models.Record{Year: 2021, Volume: vol(0.2)},
	)

	total := TotalVolume(ds)

	assert.True(t, total.Available)
	assert.Equal(t, 7.8, total.Volume)
}

func TestTotalVolume_EmptyAndUnavailable(t *testing.T) {
	assert.Equal(t, Total{Volume: 0, Available: true}, TotalVolume(dataset()))
	assert.Equal(t, Total{}, TotalVolume(noVolume(models.Record{Year: 2020})))
}

func TestAggregates_NonFiniteVolumeIsUnavailable(t *testing.T) {
	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		t.Run(fmt.Sprint(bad), func(t *testing.T) {
			ds := dataset(
				models.Record{Year: 2020, Commodity: "Oil", State: "Texas", DispositionDescription: "Sold", Volume: vol(10)},
				models.Record{Year: 2020, Commodity: "Oil", State: "Texas", DispositionDescription: "Sold", Volume: vol(bad)},
			)

			assert.False(t, TotalVolume(ds).Available)
			assert.False(t, VolumeByYear(ds).Available)
			assert.False(t, VolumeByYearAndCommodity(ds).Available)
			assert.False(t, TopStates(ds).Available)
			assert.False(t, TopDispositions(ds).Available)
		})
	}
}

func TestVolumeSum(t *testing.T) {
	var s volumeSum
	s.Add(0.1)
	s.Add(0.2)

	v, err := s.Float64()
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)

	s.Add(math.NaN())
	s.Add(1)
	_, err = s.Float64()
	assert.Error(t, err)
}

func TestTotalVolume_IndependentOfRowOrder(t *testing.T) {
	values := []float64{1e16, 1, -1e16, 0.1, 0.2, 3.3}
	var forward, backward []models.Record
	for i := range values {
		forward = append(forward, models.Record{Year: 2020, Volume: vol(values[i])})
		backward = append(backward, models.Record{Year: 2020, Volume: vol(values[len(values)-1-i])})
	}

	assert.Equal(t, TotalVolume(dataset(forward...)), TotalVolume(dataset(backward...)))
	assert.Equal(t, 4.6, TotalVolume(dataset(forward...)).Volume)
}

func TestCountRows(t *testing.T) {
	ds := dataset(
		models.Record{Volume: vol(0)},
		models.Record{Volume: vol(5)},
		models.Record{Volume: vol(-1)},
		models.Record{},
	)

	assert.Equal(t, RowCounts{NonNegative: 2, Negative: 1, Available: true}, CountRows(ds))
	assert.False(t, CountRows(noVolume()).Available)
}

func TestVolumeByYear(t *testing.T) {
	ds := dataset(
		models.Record{Year: 2021, Volume: vol(5)},
		models.Record{Year: 2019, Volume: vol(1)},
		models.Record{Year: 2021, Volume: vol(-2)},
		models.Record{Year: 2020},
	)

	series := VolumeByYear(ds)

	require.True(t, series.Available)
	assert.Equal(t, []YearVolume{
		{Year: 2019, Volume: 1},
		{Year: 2020, Volume: 0},
		{Year: 2021, Volume: 3},
	}, series.Points)
	assert.False(t, VolumeByYear(noVolume()).Available)
}

func TestTotalEqualsSumOfYears(t *testing.T) {
	var records []models.Record
	for i := 0; i < 200; i++ {
		records = append(records, models.Record{Year: 2015 + i%11, Volume: vol(float64(i)*1.37 - 40)})
	}
	ds := dataset(records...)

	var sum float64
	for _, p := range VolumeByYear(ds).Points {
		sum += p.Volume
	}

	assert.InDelta(t, TotalVolume(ds).Volume, sum, 1e-6)
}

func TestVolumeByYearAndCommodity_FillsMissingCells(t *testing.T) {
	ds := dataset(
		models.Record{Year: 2019, Commodity: "Oil", Volume: vol(10)},
		models.Record{Year: 2019, Commodity: "Oil", Volume: vol(5)},
		models.Record{Year: 2020, Commodity: "Gas", Volume: vol(7)},
	)

	pivot := VolumeByYearAndCommodity(ds)

	require.True(t, pivot.Available)
	assert.Equal(t, []int{2019, 2020}, pivot.Years)
	assert.Equal(t, []string{"Gas", "Oil"}, pivot.Commodities)
	assert.Equal(t, [][]float64{{0, 15}, {7, 0}}, pivot.Values)

	v, ok := pivot.Cell(2020, "Oil")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	_, ok = pivot.Cell(2030, "Oil")
	assert.False(t, ok)
	_, ok = pivot.Cell(2019, "Helium")
	assert.False(t, ok)
}

func TestTopStates_LimitsToTwelve(t *testing.T) {
	var records []models.Record
	for i := 0; i < 15; i++ {
		records = append(records, models.Record{State: fmt.Sprintf("State %02d", i), Volume: vol(float64(i * 10))})
	}
	records = append(records, models.Record{State: "Withheld", Volume: vol(1e9)})
	records = append(records, models.Record{State: "withheld", Volume: vol(1e9)})

	ranking := TopStates(dataset(records...))

	require.True(t, ranking.Available)
	require.Len(t, ranking.Entries, 12)
	assert.Equal(t, RankEntry{Key: "State 14", Volume: 140}, ranking.Entries[0])
	assert.Equal(t, RankEntry{Key: "State 03", Volume: 30}, ranking.Entries[11])
	for i := 1; i < len(ranking.Entries); i++ {
		assert.GreaterOrEqual(t, ranking.Entries[i-1].Volume, ranking.Entries[i].Volume)
	}
}

func TestTopStates_TieBreakIsLexicographic(t *testing.T) {
	ds := dataset(
		models.Record{State: "Utah", Volume: vol(5)},
		models.Record{State: "Alaska", Volume: vol(5)},
		models.Record{State: "Montana", Volume: vol(5)},
		models.Record{State: "Texas", Volume: vol(9)},
	)

	ranking := TopStates(ds)

	var keys []string
	for _, e := range ranking.Entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"Texas", "Alaska", "Montana", "Utah"}, keys)
}

func TestTopDispositions(t *testing.T) {
	ds := dataset(
		models.Record{State: "Withheld", DispositionDescription: "Sales-Royalty Due", Volume: vol(100)},
		models.Record{State: "Texas", DispositionDescription: "Flared", Volume: vol(-3)},
		models.Record{State: "Texas", DispositionDescription: "Sales-Royalty Due", Volume: vol(1)},
	)

	ranking := TopDispositions(ds)

	assert.Equal(t, []RankEntry{
		{Key: "Sales-Royalty Due", Volume: 101},
		{Key: "Flared", Volume: -3},
	}, ranking.Entries)
	assert.False(t, TopDispositions(noVolume()).Available)
}

func TestAggregates_EmptyDataset(t *testing.T) {
	ds := dataset()

	assert.Empty(t, VolumeByYear(ds).Points)
	assert.Empty(t, VolumeByYearAndCommodity(ds).Years)
	assert.Empty(t, TopStates(ds).Entries)
	assert.True(t, TopStates(ds).Available)
}
