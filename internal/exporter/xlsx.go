// Package exporter renders dashboard results as spreadsheet workbooks.
package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"oilgas-dashboard/internal/aggregate"
	"oilgas-dashboard/internal/dashboard"
)

// Sheet names, in workbook order
const (
	SheetSummary         = "Summary"
	SheetVolumeByYear    = "Volume by Year"
	SheetYearCommodity   = "Year x Commodity"
	SheetTopStates       = "Top States"
	SheetTopDispositions = "Top Dispositions"
	SheetDiagnostics     = "Diagnostics"
)

const (
	defaultSheet = "Sheet1"
	notAvailable = "Not available for this dataset"

	summaryLabelWidth = 28
	summaryValueWidth = 60
	rankingKeyWidth   = 36
)

// NewWorkbook builds a workbook with one sheet per dashboard panel
func NewWorkbook(res *dashboard.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetVolumeByYear, SheetYearCommodity, SheetTopStates, SheetTopDispositions, SheetDiagnostics} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *dashboard.Result) error{
		writeSummary,
		writeVolumeByYear,
		writeYearCommodity,
		writeRanking(SheetTopStates, "State", func(r *dashboard.Result) aggregate.Ranking { return r.TopStates }),
		writeRanking(SheetTopDispositions, "Disposition", func(r *dashboard.Result) aggregate.Ranking { return r.TopDispositions }),
		writeDiagnostics,
	}
	for _, write := range writers {
		if err := write(f, res); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// WriteWorkbook renders res as an .xlsx document to w
func WriteWorkbook(w io.Writer, res *dashboard.Result) error {
	f, err := NewWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeSummary(f *excelize.File, res *dashboard.Result) error {
	spec := res.Filter
	rows := [][]interface{}{
		{res.Title},
		{"Source", res.SourcePath},
		{"Year range", fmt.Sprintf("%d-%d", spec.YearMin, spec.YearMax)},
		{"Commodities", strings.Join(spec.Commodities, ", ")},
		{"State", spec.State},
		{"Include withheld", spec.IncludeWithheld},
		{"Matched rows", res.MatchedRows},
	}

	if res.KPIs.TotalVolume.Available {
		rows = append(rows,
			[]interface{}{"Total volume", res.KPIs.TotalVolume.Volume},
			[]interface{}{"Rows ≥ 0", res.KPIs.Rows.NonNegative},
			[]interface{}{"Rows < 0 (adjustments)", res.KPIs.Rows.Negative},
		)
	} else {
		rows = append(rows, []interface{}{"Total volume", notAvailable})
	}

	rows = append(rows, []interface{}{})
	for _, note := range res.Notes {
		rows = append(rows, []interface{}{note})
	}

	for i, values := range rows {
		if err := setRow(f, SheetSummary, i+1, values...); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", summaryLabelWidth); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", summaryValueWidth)
}

func writeVolumeByYear(f *excelize.File, res *dashboard.Result) error {
	if !res.VolumeByYear.Available {
		return setRow(f, SheetVolumeByYear, 1, notAvailable)
	}
	if err := setRow(f, SheetVolumeByYear, 1, "Year", "Volume"); err != nil {
		return err
	}
	for i, p := range res.VolumeByYear.Points {
		if err := setRow(f, SheetVolumeByYear, i+2, p.Year, p.Volume); err != nil {
			return err
		}
	}
	return nil
}

func writeYearCommodity(f *excelize.File, res *dashboard.Result) error {
	pivot := res.VolumeByYearAndComm
	if !pivot.Available {
		return setRow(f, SheetYearCommodity, 1, notAvailable)
	}

	header := make([]interface{}, 0, len(pivot.Commodities)+1)
	header = append(header, "Year")
	for _, c := range pivot.Commodities {
		header = append(header, c)
	}
	if err := setRow(f, SheetYearCommodity, 1, header...); err != nil {
		return err
	}

	for i, year := range pivot.Years {
		values := make([]interface{}, 0, len(pivot.Commodities)+1)
		values = append(values, year)
		for _, v := range pivot.Values[i] {
			values = append(values, v)
		}
		if err := setRow(f, SheetYearCommodity, i+2, values...); err != nil {
			return err
		}
	}
	return nil
}

func writeRanking(sheet, label string, pick func(*dashboard.Result) aggregate.Ranking) func(*excelize.File, *dashboard.Result) error {
	return func(f *excelize.File, res *dashboard.Result) error {
		ranking := pick(res)
		if !ranking.Available {
			return setRow(f, sheet, 1, notAvailable)
		}
		if err := setRow(f, sheet, 1, "Rank", label, "Volume"); err != nil {
			return err
		}
		for i, e := range ranking.Entries {
			if err := setRow(f, sheet, i+2, i+1, e.Key, e.Volume); err != nil {
				return err
			}
		}
		return f.SetColWidth(sheet, "B", "B", rankingKeyWidth)
	}
}

func writeDiagnostics(f *excelize.File, res *dashboard.Result) error {
	if err := setRow(f, SheetDiagnostics, 1, "Severity", "Kind", "Column", "Count", "Message"); err != nil {
		return err
	}
	row := 2
	for _, d := range res.Diagnostics {
		if err := setRow(f, SheetDiagnostics, row, string(d.Severity), string(d.Kind), d.Column, d.Count, d.Message); err != nil {
			return err
		}
		row++
	}
	for _, p := range res.Panels {
		if err := setRow(f, SheetDiagnostics, row, string(p.Severity), p.Panel, "", "", p.Message); err != nil {
			return err
		}
		row++
	}
	return nil
}
