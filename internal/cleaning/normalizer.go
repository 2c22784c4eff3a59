package cleaning

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"oilgas-dashboard/internal/models"
)

// ColumnKind is the coerced type of a normalized column
type ColumnKind int

const (
	TextColumn ColumnKind = iota
	NumberColumn
	DateColumn
)

// numericColumns are parsed leniently as numbers; year and month are typed
// integers in the record model so they are coerced here too
var numericColumns = map[string]bool{
	models.ColFIPSCode:        true,
	models.ColDispositionCode: true,
	models.ColVolume:          true,
	models.ColYear:            true,
	models.ColMonth:           true,
}

// dateLayouts are tried in order; the first match wins
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01",
	"January 2006",
	"Jan 2006",
}

var columnSeparators = strings.NewReplacer(" ", "_", "-", "_", "/", "_")

// CanonicalColumnName trims, lowercases, and replaces spaces, hyphens and
// slashes with underscores
func CanonicalColumnName(name string) string {
	return columnSeparators.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// ParseNumber strips thousands separators and whitespace, then parses a float.
// Empty, NaN and infinite inputs are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseDate parses an ISO-ish calendar date, dropping any time of day
func ParseDate(s string) (models.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return models.Date{}, false
}

// Column is a typed column of a normalized table.
// Only the slice matching Kind is populated; empty text and nil pointers are null.
type Column struct {
	Name    string
	Kind    ColumnKind
	Text    []string
	Numbers []*float64
	Dates   []*models.Date
}

// Table is a column-oriented table with canonical names and typed cells
type Table struct {
	Columns []*Column
	rows    int
	index   map[string]int
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return t.rows
}

// Column looks up a column by canonical name. Duplicate names resolve to the first.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Raw renders the table back into string cells
func (t *Table) Raw() *RawTable {
	raw := &RawTable{
		Header: make([]string, len(t.Columns)),
		Rows:   make([][]string, t.rows),
	}
	for i := range raw.Rows {
		raw.Rows[i] = make([]string, len(t.Columns))
	}

	for c, col := range t.Columns {
		raw.Header[c] = col.Name
		for r := 0; r < t.rows; r++ {
			raw.Rows[r][c] = col.cell(r)
		}
	}
	return raw
}

func (c *Column) cell(row int) string {
	switch c.Kind {
	case NumberColumn:
		if v := c.Numbers[row]; v != nil {
			return FormatNumber(*v)
		}
		return ""
	case DateColumn:
		if d := c.Dates[row]; d != nil {
			return d.String()
		}
		return ""
	default:
		return c.Text[row]
	}
}

// FormatNumber renders a float without exponent or trailing zeros
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func kindOf(name string) ColumnKind {
	switch {
	case name == models.ColProductionDate:
		return DateColumn
	case numericColumns[name]:
		return NumberColumn
	default:
		return TextColumn
	}
}

// Normalize canonicalizes column names and coerces cell types.
// Cells that fail coercion become null and are counted per column; a bad
// cell never fails the table.
func Normalize(raw *RawTable) (*Table, models.Diagnostics) {
	rows := len(raw.Rows)
	table := &Table{
		Columns: make([]*Column, len(raw.Header)),
		rows:    rows,
		index:   make(map[string]int, len(raw.Header)),
	}
	caser := cases.Title(language.Und)
	failures := make([]int, len(raw.Header))

	for c, header := range raw.Header {
		name := CanonicalColumnName(header)
		col := &Column{Name: name, Kind: kindOf(name)}

		switch col.Kind {
		case NumberColumn:
			col.Numbers = make([]*float64, rows)
		case DateColumn:
			col.Dates = make([]*models.Date, rows)
		default:
			col.Text = make([]string, rows)
		}

		for r, record := range raw.Rows {
			var cell string
			if c < len(record) {
				cell = record[c]
			}
			if !col.set(r, cell, caser) {
				failures[c]++
			}
		}

		table.Columns[c] = col
		if _, dup := table.index[name]; !dup {
			table.index[name] = c
		}
	}

	var diags models.Diagnostics
	for c, n := range failures {
		if n > 0 {
			diags = append(diags, models.CellParseFailure(table.Columns[c].Name, n))
		}
	}
	return table, diags
}

// set stores one coerced cell and reports false on a parse failure.
// Blank cells are null, not failures.
func (c *Column) set(row int, cell string, caser cases.Caser) bool {
	blank := strings.TrimSpace(cell) == ""

	switch c.Kind {
	case NumberColumn:
		if blank {
			return true
		}
		v, ok := ParseNumber(cell)
		if !ok {
			return false
		}
		c.Numbers[row] = &v
	case DateColumn:
		if blank {
			return true
		}
		d, ok := ParseDate(cell)
		if !ok {
			return false
		}
		c.Dates[row] = &d
	default:
		if !blank {
			c.Text[row] = caser.String(strings.TrimSpace(cell))
		}
	}
	return true
}
