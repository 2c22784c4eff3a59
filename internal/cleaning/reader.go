package cleaning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"oilgas-dashboard/internal/models"
)

// RawTable is a CSV table with its original header and unvalidated cells
type RawTable struct {
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows
func (t *RawTable) NumRows() int {
	return len(t.Rows)
}

// ReadRaw reads a CSV stream into a RawTable.
// Short rows are padded with empty cells; rows wider than the header are malformed.
func ReadRaw(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &RawTable{Header: header}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// ReadRawFile opens, fully reads, and closes a CSV file
func ReadRawFile(path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ReadRaw(file)
	if err != nil {
		return nil, &models.UnreadableSourceError{Path: path, Err: err}
	}
	return table, nil
}
