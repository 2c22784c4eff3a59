package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Canonical column names of the cleaned production/disposition schema
const (
	ColProductionDate         = "production_date"
	ColYear                   = "year"
	ColMonth                  = "month"
	ColCommodity              = "commodity"
	ColState                  = "state"
	ColCounty                 = "county"
	ColOffshoreRegion         = "offshore_region"
	ColFIPSCode               = "fips_code"
	ColDispositionCode        = "disposition_code"
	ColDispositionDescription = "disposition_description"
	ColVolume                 = "volume"
)

const (
	// UnknownValue fills categorical columns the source did not carry
	UnknownValue = "Unknown"

	// WithheldValue marks a redacted location. Must match this casing exactly.
	WithheldValue = "Withheld"

	// FallbackYear is assigned when neither year nor production_date is available
	FallbackYear = 2015

	// DateLayout is the canonical on-disk date representation
	DateLayout = "2006-01-02"
)

// CanonicalColumns lists the cleaned schema in output order
var CanonicalColumns = []string{
	ColProductionDate,
	ColYear,
	ColMonth,
	ColCommodity,
	ColState,
	ColCounty,
	ColOffshoreRegion,
	ColFIPSCode,
	ColDispositionCode,
	ColDispositionDescription,
	ColVolume,
}

// ColumnDefaults holds the fill value of every optional categorical column.
// disposition_code is optional too but defaults to null, so it is absent here.
var ColumnDefaults = map[string]string{
	ColCommodity:              UnknownValue,
	ColState:                  UnknownValue,
	ColCounty:                 WithheldValue,
	ColOffshoreRegion:         UnknownValue,
	ColDispositionDescription: UnknownValue,
}

// Date is a calendar date without time-of-day
type Date struct {
	time.Time
}

// NewDate builds a UTC calendar date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalText renders the date as YYYY-MM-DD
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses YYYY-MM-DD
func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(DateLayout, string(text))
	if err != nil {
		return &ValidationError{
			Field:   ColProductionDate,
			Value:   string(text),
			Message: "invalid date format, expected YYYY-MM-DD",
		}
	}
	d.Time = t
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON accepts the quoted YYYY-MM-DD form written by MarshalJSON
func (d *Date) UnmarshalJSON(data []byte) error {
	text, err := strconv.Unquote(string(data))
	if err != nil {
		return &ValidationError{
			Field:   ColProductionDate,
			Value:   string(data),
			Message: "invalid date, expected a quoted YYYY-MM-DD string",
		}
	}
	return d.UnmarshalText([]byte(text))
}

// Record represents one row of production/disposition data.
// Optional numerics are pointers so that null survives the pipeline.
type Record struct {
	ProductionDate         *Date    `json:"production_date,omitempty"`
	Year                   int      `json:"year"`
	Month                  *int     `json:"month,omitempty"`
	Commodity              string   `json:"commodity"`
	State                  string   `json:"state"`
	County                 string   `json:"county"`
	OffshoreRegion         string   `json:"offshore_region"`
	FIPSCode               *float64 `json:"fips_code,omitempty"`
	DispositionCode        *float64 `json:"disposition_code,omitempty"`
	DispositionDescription string   `json:"disposition_description"`
	Volume                 *float64 `json:"volume,omitempty"`
}

// IsWithheld reports whether the record's state is the redaction sentinel
func (r Record) IsWithheld() bool {
	return IsWithheld(r.State)
}

// IsWithheld compares a state value against the sentinel, ignoring case
func IsWithheld(state string) bool {
	return strings.EqualFold(strings.TrimSpace(state), WithheldValue)
}

// Schema records which canonical columns the source actually carried.
// Records always have every field; Schema tells consumers which ones are real.
type Schema struct {
	present map[string]bool
}

// NewSchema creates a schema with the given columns present
func NewSchema(columns ...string) Schema {
	s := Schema{present: make(map[string]bool, len(columns))}
	for _, c := range columns {
		s.present[c] = true
	}
	return s
}

// FullSchema has every canonical column present
func FullSchema() Schema {
	return NewSchema(CanonicalColumns...)
}

// Has reports whether column was present in the source
func (s Schema) Has(column string) bool {
	return s.present[column]
}

// Columns returns the present columns in canonical order
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.present))
	for _, c := range CanonicalColumns {
		if s.present[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// Dataset is an ordered, immutable collection of records.
// Pipeline stages return new datasets and never mutate their input.
type Dataset struct {
	Records []Record
	Schema  Schema
}

// NewDataset creates a dataset
func NewDataset(records []Record, schema Schema) *Dataset {
	return &Dataset{Records: records, Schema: schema}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasVolume reports whether volume-based aggregation is possible
func (d *Dataset) HasVolume() bool {
	return d != nil && d.Schema.Has(ColVolume)
}

// Derive returns a dataset with the same schema and different records
func (d *Dataset) Derive(records []Record) *Dataset {
	return &Dataset{Records: records, Schema: d.Schema}
}
