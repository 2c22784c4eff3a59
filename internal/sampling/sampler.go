package sampling

import (
	"math/rand"
	"sort"
	"strconv"

	"oilgas-dashboard/internal/models"
)

// Options controls a stratified sample
type Options struct {
	// Target is the maximum number of rows in the sample
	Target int
	// Seed makes every draw reproducible
	Seed int64
}

// Sample draws a reduced dataset with near-even representation per year.
//
// Each year contributes at most Target/years rows (at least one); years with
// fewer rows contribute all of them. If the concatenation still exceeds
// Target it is subsampled to exactly Target rows. The result is stably
// sorted by production date with undated rows last, and is identical for
// identical input and seed.
func Sample(ds *models.Dataset, opts Options) (*models.Dataset, error) {
	if opts.Target <= 0 {
		return nil, &models.ValidationError{
			Field:   "target",
			Value:   strconv.Itoa(opts.Target),
			Message: "target row count must be positive",
		}
	}

	years, groups := groupByYear(ds.Records)
	if len(years) == 0 {
		return nil, models.ErrEmptyGroupSet
	}

	perGroup := max(1, opts.Target/len(years))

	var picked []int
	for _, year := range years {
		rows := groups[year]
		if len(rows) <= perGroup {
			picked = append(picked, rows...)
			continue
		}
		picked = append(picked, draw(rows, perGroup, opts.Seed)...)
	}

	if len(picked) > opts.Target {
		picked = draw(picked, opts.Target, opts.Seed)
	}

	records := make([]models.Record, len(picked))
	for i, row := range picked {
		records[i] = ds.Records[row]
	}
	sortByDate(records)

	return ds.Derive(records), nil
}

// groupByYear returns the distinct years ascending and the row indices of each
func groupByYear(records []models.Record) ([]int, map[int][]int) {
	groups := make(map[int][]int)
	for i, r := range records {
		groups[r.Year] = append(groups[r.Year], i)
	}

	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, groups
}

// draw picks n of rows uniformly without replacement from a freshly seeded source
func draw(rows []int, n int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(rows))

	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = rows[perm[i]]
	}
	return out
}

func sortByDate(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ProductionDate, records[j].ProductionDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(b.Time)
		}
	})
}
