package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"oilgas-dashboard/internal/models"
)

// AllStates is the state wildcard
const AllStates = "All"

var validate = validator.New()

// Spec is a user filter selection. A row passes when every predicate holds.
type Spec struct {
	YearMin         int      `json:"year_min" validate:"gte=0"`
	YearMax         int      `json:"year_max" validate:"gtefield=YearMin"`
	Commodities     []string `json:"commodities"`
	State           string   `json:"state" validate:"required"`
	IncludeWithheld bool     `json:"include_withheld"`
}

// Validate checks the spec's structural constraints
func (s Spec) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &models.ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: fmt.Sprintf("invalid filter: %s failed '%s' check", fe.Field(), fe.Tag()),
		}
	}
	return fmt.Errorf("invalid filter: %w", err)
}

// allStates reports whether the spec's state is the wildcard
func (s Spec) allStates() bool {
	return strings.EqualFold(strings.TrimSpace(s.State), AllStates)
}

// Matches evaluates every predicate against a single record
func (s Spec) Matches(r models.Record, commodities map[string]bool) bool {
	return r.Year >= s.YearMin &&
		r.Year <= s.YearMax &&
		commodities[r.Commodity] &&
		(s.allStates() || r.State == s.State) &&
		(s.IncludeWithheld || !r.IsWithheld())
}

// Apply returns the rows that satisfy spec, in their original order.
// The input dataset is not modified.
func Apply(ds *models.Dataset, spec Spec) *models.Dataset {
	commodities := make(map[string]bool, len(spec.Commodities))
	for _, c := range spec.Commodities {
		commodities[c] = true
	}

	kept := make([]models.Record, 0, ds.Len())
	for _, r := range ds.Records {
		if spec.Matches(r, commodities) {
			kept = append(kept, r)
		}
	}
	return ds.Derive(kept)
}

// Choices lists the values available to each filter control
type Choices struct {
	Years       []int    `json:"years"`
	Commodities []string `json:"commodities"`
	States      []string `json:"states"`
}

// Options returns the sorted distinct years and commodities, and the states
// prefixed with the wildcard
func Options(ds *models.Dataset) Choices {
	years := make(map[int]bool)
	commodities := make(map[string]bool)
	states := make(map[string]bool)
	for _, r := range ds.Records {
		years[r.Year] = true
		commodities[r.Commodity] = true
		states[r.State] = true
	}

	choices := Choices{
		Years:       make([]int, 0, len(years)),
		Commodities: sortedKeys(commodities),
		States:      append([]string{AllStates}, sortedKeys(states)...),
	}
	for y := range years {
		choices.Years = append(choices.Years, y)
	}
	sort.Ints(choices.Years)
	return choices
}

// Default selects everything: the full year range, every commodity, all
// states, and withheld rows included
func Default(ds *models.Dataset) Spec {
	choices := Options(ds)

	spec := Spec{
		YearMin:         models.FallbackYear,
		YearMax:         models.FallbackYear,
		Commodities:     choices.Commodities,
		State:           AllStates,
		IncludeWithheld: true,
	}
	if n := len(choices.Years); n > 0 {
		spec.YearMin = choices.Years[0]
		spec.YearMax = choices.Years[n-1]
	}
	return spec
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
