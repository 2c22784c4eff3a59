package cleaning

import (
	"fmt"
	"math"

	"oilgas-dashboard/internal/models"
)

// optionalTextColumns are default-filled and reported when absent.
// county is filled silently; the dashboard never reads it.
var optionalTextColumns = []string{
	models.ColCommodity,
	models.ColState,
	models.ColOffshoreRegion,
	models.ColDispositionDescription,
}

// Complete turns a normalized table into fixed-shape records. Missing optional
// columns are filled with their defaults and reported as warnings. A missing
// volume column is reported with error severity, but the dataset is still
// returned and its schema reports volume as absent.
func Complete(t *Table) (*models.Dataset, models.Diagnostics) {
	var diags models.Diagnostics
	records := make([]models.Record, t.NumRows())
	schema := models.FullSchema()

	dates := completeDates(t, records)
	diags = append(diags, completeYears(t, records, dates)...)
	completeMonths(t, records, dates)

	for _, name := range optionalTextColumns {
		if !completeText(t, records, name) {
			diags = append(diags, models.MissingOptionalColumn(name, fmt.Sprintf("%q", models.ColumnDefaults[name])))
		}
	}
	completeText(t, records, models.ColCounty)

	if !completeNumbers(t, models.ColDispositionCode, func(i int, v *float64) { records[i].DispositionCode = v }) {
		diags = append(diags, models.MissingOptionalColumn(models.ColDispositionCode, "null"))
	}
	completeNumbers(t, models.ColFIPSCode, func(i int, v *float64) { records[i].FIPSCode = v })

	if !completeNumbers(t, models.ColVolume, func(i int, v *float64) { records[i].Volume = v }) {
		diags = append(diags, models.MissingRequiredColumn(models.ColVolume))
		schema = models.NewSchema(without(models.CanonicalColumns, models.ColVolume)...)
	}

	return models.NewDataset(records, schema), diags
}

func completeDates(t *Table, records []models.Record) *Column {
	col, ok := t.Column(models.ColProductionDate)
	if !ok || col.Kind != DateColumn {
		return nil
	}
	for i := range records {
		records[i].ProductionDate = col.Dates[i]
	}
	return col
}

// completeYears resolves every row's year: the year cell, else the row's
// date, else FallbackYear
func completeYears(t *Table, records []models.Record, dates *Column) models.Diagnostics {
	years, hasYear := t.Column(models.ColYear)
	if !hasYear && dates == nil {
		for i := range records {
			records[i].Year = models.FallbackYear
		}
		return models.Diagnostics{{
			Severity: models.SeverityWarning,
			Kind:     models.KindFallbackYear,
			Column:   models.ColYear,
			Count:    len(records),
			Message:  fmt.Sprintf("no 'year' or 'production_date' column found; using %d for every row", models.FallbackYear),
		}}
	}

	fallbacks := 0
	for i := range records {
		if hasYear {
			if y, ok := integral(years.Numbers[i]); ok {
				records[i].Year = y
				continue
			}
		}
		if dates != nil && dates.Dates[i] != nil {
			records[i].Year = dates.Dates[i].Year()
			continue
		}
		records[i].Year = models.FallbackYear
		fallbacks++
	}

	if fallbacks == 0 {
		return nil
	}
	return models.Diagnostics{{
		Severity: models.SeverityWarning,
		Kind:     models.KindFallbackYear,
		Column:   models.ColYear,
		Count:    fallbacks,
		Message:  fmt.Sprintf("%d row(s) had no resolvable year; using %d", fallbacks, models.FallbackYear),
	}}
}

func completeMonths(t *Table, records []models.Record, dates *Column) {
	months, hasMonth := t.Column(models.ColMonth)
	for i := range records {
		if hasMonth {
			if m, ok := integral(months.Numbers[i]); ok && m >= 1 && m <= 12 {
				records[i].Month = &m
			}
			continue
		}
		if dates != nil && dates.Dates[i] != nil {
			m := int(dates.Dates[i].Month())
			records[i].Month = &m
		}
	}
}

// completeText copies a categorical column, filling nulls, and reports
// whether the column existed. Null state and county cells are withheld
// locations; other nulls take the column default.
func completeText(t *Table, records []models.Record, name string) bool {
	fill := models.ColumnDefaults[name]
	nullFill := fill
	if name == models.ColState || name == models.ColCounty {
		nullFill = models.WithheldValue
	}

	col, ok := t.Column(name)
	if !ok || col.Kind != TextColumn {
		for i := range records {
			setText(&records[i], name, fill)
		}
		return false
	}

	for i := range records {
		v := col.Text[i]
		if v == "" {
			v = nullFill
		}
		setText(&records[i], name, v)
	}
	return true
}

func setText(r *models.Record, name, value string) {
	switch name {
	case models.ColCommodity:
		r.Commodity = value
	case models.ColState:
		r.State = value
	case models.ColCounty:
		r.County = value
	case models.ColOffshoreRegion:
		r.OffshoreRegion = value
	case models.ColDispositionDescription:
		r.DispositionDescription = value
	}
}

func completeNumbers(t *Table, name string, assign func(int, *float64)) bool {
	col, ok := t.Column(name)
	if !ok || col.Kind != NumberColumn {
		return false
	}
	for i, v := range col.Numbers {
		assign(i, v)
	}
	return true
}

func integral(v *float64) (int, bool) {
	if v == nil || *v != math.Trunc(*v) {
		return 0, false
	}
	return int(*v), true
}

func without(cols []string, drop string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
