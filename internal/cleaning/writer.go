package cleaning

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"oilgas-dashboard/internal/models"
)

// number renders without exponent so cleaned files stay human readable
type number float64

func (n number) MarshalText() ([]byte, error) {
	return []byte(FormatNumber(float64(n))), nil
}

// cleanedRow is the on-disk shape of a cleaned record
type cleanedRow struct {
	ProductionDate         *models.Date `csv:"production_date"`
	Year                   int          `csv:"year"`
	Month                  *int         `csv:"month"`
	Commodity              string       `csv:"commodity"`
	State                  string       `csv:"state"`
	County                 string       `csv:"county"`
	OffshoreRegion         string       `csv:"offshore_region"`
	FIPSCode               *number      `csv:"fips_code"`
	DispositionCode        *number      `csv:"disposition_code"`
	DispositionDescription string       `csv:"disposition_description"`
	Volume                 *number      `csv:"volume"`
}

func toNumber(v *float64) *number {
	if v == nil {
		return nil
	}
	n := number(*v)
	return &n
}

func toCleanedRows(records []models.Record) []cleanedRow {
	rows := make([]cleanedRow, len(records))
	for i, r := range records {
		rows[i] = cleanedRow{
			ProductionDate:         r.ProductionDate,
			Year:                   r.Year,
			Month:                  r.Month,
			Commodity:              r.Commodity,
			State:                  r.State,
			County:                 r.County,
			OffshoreRegion:         r.OffshoreRegion,
			FIPSCode:               toNumber(r.FIPSCode),
			DispositionCode:        toNumber(r.DispositionCode),
			DispositionDescription: r.DispositionDescription,
			Volume:                 toNumber(r.Volume),
		}
	}
	return rows
}

// WriteCleaned writes a dataset as CSV. The header lists the schema's
// present columns in canonical order, so an absent volume stays absent.
func WriteCleaned(w io.Writer, ds *models.Dataset) error {
	writer := csv.NewWriter(w)
	header := ds.Schema.Columns()

	rows := toCleanedRows(ds.Records)
	if len(rows) == 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	} else {
		enc := csvutil.NewEncoder(writer)
		enc.SetHeader(header)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCleanedFile writes a dataset to path, creating parent directories
func WriteCleanedFile(path string, ds *models.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteCleaned(file, ds); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
