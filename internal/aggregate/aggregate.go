package aggregate

import (
	"sort"

	"oilgas-dashboard/internal/models"
)

// TopN is the length of state and disposition rankings
const TopN = 12

// Total is the summed volume of a dataset
type Total struct {
	Volume    float64 `json:"volume"`
	Available bool    `json:"available"`
}

// RowCounts splits rows by the sign of their volume. Rows with a null
// volume are in neither count.
type RowCounts struct {
	NonNegative int  `json:"non_negative"`
	Negative    int  `json:"negative"`
	Available   bool `json:"available"`
}

// YearVolume is one point of the volume-by-year series
type YearVolume struct {
	Year   int     `json:"year"`
	Volume float64 `json:"volume"`
}

// YearSeries is volume summed per year, ascending by year
type YearSeries struct {
	Points    []YearVolume `json:"points"`
	Available bool         `json:"available"`
}

// Pivot is volume summed per (year, commodity). Values[i][j] belongs to
// Years[i] and Commodities[j]; combinations absent from the data are 0.
type Pivot struct {
	Years       []int       `json:"years"`
	Commodities []string    `json:"commodities"`
	Values      [][]float64 `json:"values"`
	Available   bool        `json:"available"`
}

// Cell returns the value for a year and commodity
func (p Pivot) Cell(year int, commodity string) (float64, bool) {
	i := sort.SearchInts(p.Years, year)
	if i == len(p.Years) || p.Years[i] != year {
		return 0, false
	}
	j := sort.SearchStrings(p.Commodities, commodity)
	if j == len(p.Commodities) || p.Commodities[j] != commodity {
		return 0, false
	}
	return p.Values[i][j], true
}

// RankEntry is one bar of a ranking
type RankEntry struct {
	Key    string  `json:"key"`
	Volume float64 `json:"volume"`
}

// Ranking holds the top groups by descending volume. Equal volumes are
// ordered by key so the result does not depend on row order.
type Ranking struct {
	Entries   []RankEntry `json:"entries"`
	Available bool        `json:"available"`
}

func available(ds *models.Dataset, columns ...string) bool {
	if !ds.HasVolume() {
		return false
	}
	for _, c := range columns {
		if !ds.Schema.Has(c) {
			return false
		}
	}
	return true
}

// Every aggregate reports Available=false when a volume cannot be summed
// exactly. Parsed volumes are always finite, so this only guards records
// built outside the cleaning pipeline.

// TotalVolume sums volume over every row
func TotalVolume(ds *models.Dataset) Total {
	if !available(ds) {
		return Total{}
	}

	var sum volumeSum
	for _, r := range ds.Records {
		if r.Volume != nil {
			sum.Add(*r.Volume)
		}
	}
	total, err := sum.Float64()
	if err != nil {
		return Total{}
	}
	return Total{Volume: total, Available: true}
}

// CountRows counts rows with volume >= 0 and volume < 0
func CountRows(ds *models.Dataset) RowCounts {
	if !available(ds) {
		return RowCounts{}
	}

	counts := RowCounts{Available: true}
	for _, r := range ds.Records {
		switch {
		case r.Volume == nil:
		case *r.Volume < 0:
			counts.Negative++
		default:
			counts.NonNegative++
		}
	}
	return counts
}

// VolumeByYear sums volume per year
func VolumeByYear(ds *models.Dataset) YearSeries {
	if !available(ds, models.ColYear) {
		return YearSeries{}
	}

	sums := make(map[int]*volumeSum)
	for _, r := range ds.Records {
		s := sums[r.Year]
		if s == nil {
			s = &volumeSum{}
			sums[r.Year] = s
		}
		if r.Volume != nil {
			s.Add(*r.Volume)
		}
	}

	series := YearSeries{Points: make([]YearVolume, 0, len(sums)), Available: true}
	for year, s := range sums {
		v, err := s.Float64()
		if err != nil {
			return YearSeries{}
		}
		series.Points = append(series.Points, YearVolume{Year: year, Volume: v})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Year < series.Points[j].Year
	})
	return series
}

// VolumeByYearAndCommodity pivots volume into a year by commodity matrix
func VolumeByYearAndCommodity(ds *models.Dataset) Pivot {
	if !available(ds, models.ColYear, models.ColCommodity) {
		return Pivot{}
	}

	type cell struct {
		year      int
		commodity string
	}
	sums := make(map[cell]*volumeSum)
	years := make(map[int]bool)
	commodities := make(map[string]bool)

	for _, r := range ds.Records {
		years[r.Year] = true
		commodities[r.Commodity] = true

		key := cell{r.Year, r.Commodity}
		s := sums[key]
		if s == nil {
			s = &volumeSum{}
			sums[key] = s
		}
		if r.Volume != nil {
			s.Add(*r.Volume)
		}
	}

	pivot := Pivot{
		Years:       make([]int, 0, len(years)),
		Commodities: make([]string, 0, len(commodities)),
		Available:   true,
	}
	for y := range years {
		pivot.Years = append(pivot.Years, y)
	}
	for c := range commodities {
		pivot.Commodities = append(pivot.Commodities, c)
	}
	sort.Ints(pivot.Years)
	sort.Strings(pivot.Commodities)

	pivot.Values = make([][]float64, len(pivot.Years))
	for i, y := range pivot.Years {
		pivot.Values[i] = make([]float64, len(pivot.Commodities))
		for j, c := range pivot.Commodities {
			s := sums[cell{y, c}]
			if s == nil {
				continue
			}
			v, err := s.Float64()
			if err != nil {
				return Pivot{}
			}
			pivot.Values[i][j] = v
		}
	}
	return pivot
}

// TopStates ranks states by summed volume, leaving out withheld rows
func TopStates(ds *models.Dataset) Ranking {
	if !available(ds, models.ColState) {
		return Ranking{}
	}
	return rank(ds.Records, func(r models.Record) (string, bool) {
		return r.State, !r.IsWithheld()
	})
}

// TopDispositions ranks disposition descriptions by summed volume
func TopDispositions(ds *models.Dataset) Ranking {
	if !available(ds, models.ColDispositionDescription) {
		return Ranking{}
	}
	return rank(ds.Records, func(r models.Record) (string, bool) {
		return r.DispositionDescription, true
	})
}

func rank(records []models.Record, keyOf func(models.Record) (string, bool)) Ranking {
	sums := make(map[string]*volumeSum)
	for _, r := range records {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		s := sums[key]
		if s == nil {
			s = &volumeSum{}
			sums[key] = s
		}
		if r.Volume != nil {
			s.Add(*r.Volume)
		}
	}

	entries := make([]RankEntry, 0, len(sums))
	for key, s := range sums {
		v, err := s.Float64()
		if err != nil {
			return Ranking{}
		}
		entries = append(entries, RankEntry{Key: key, Volume: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Volume != entries[j].Volume {
			return entries[i].Volume > entries[j].Volume
		}
		return entries[i].Key < entries[j].Key
	})

	if len(entries) > TopN {
		entries = entries[:TopN]
	}
	return Ranking{Entries: entries, Available: true}
}
