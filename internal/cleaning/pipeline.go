package cleaning

import (
	"oilgas-dashboard/internal/models"
)

// Clean runs the normalizer and the schema completer over a raw table
func Clean(raw *RawTable) (*models.Dataset, models.Diagnostics) {
	table, diags := Normalize(raw)
	ds, more := Complete(table)
	return ds, append(diags, more...)
}

// LoadFile reads and cleans a CSV file. Only file-level problems are
// returned as errors; everything else is reported in the diagnostics.
func LoadFile(path string) (*models.Dataset, models.Diagnostics, error) {
	raw, err := ReadRawFile(path)
	if err != nil {
		return nil, nil, err
	}
	ds, diags := Clean(raw)
	return ds, diags, nil
}
