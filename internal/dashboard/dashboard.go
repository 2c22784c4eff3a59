// Package dashboard assembles the full query result for one filter selection.
package dashboard

import (
	"oilgas-dashboard/internal/aggregate"
	"oilgas-dashboard/internal/filter"
	"oilgas-dashboard/internal/models"
)

// Title is the dashboard heading
const Title = "U.S. Federal Oil & Gas — Production & Disposition (2015–2025)"

// NegativeVolumeNote explains negative volumes to readers of the charts
const NegativeVolumeNote = "Note: Negative volumes often reflect adjustments/true-ups in ONRR reporting."

// KPIs are the headline figures for the filtered rows
type KPIs struct {
	TotalVolume aggregate.Total     `json:"total_volume"`
	Rows        aggregate.RowCounts `json:"rows"`
}

// Panel identifiers
const (
	PanelVolumeByYear          = "volume_by_year"
	PanelVolumeByYearCommodity = "volume_by_year_commodity"
	PanelTopStates             = "top_states"
	PanelTopDispositions       = "top_dispositions"
)

// PanelMessage describes why a chart has nothing to draw
type PanelMessage struct {
	Panel    string          `json:"panel"`
	Severity models.Severity `json:"severity"`
	Message  string          `json:"message"`
}

// Result is everything the presentation layer needs to render one view
type Result struct {
	Title               string               `json:"title"`
	SourcePath          string               `json:"source_path,omitempty"`
	Filter              filter.Spec          `json:"filter"`
	MatchedRows         int                  `json:"matched_rows"`
	KPIs                KPIs                 `json:"kpis"`
	VolumeByYear        aggregate.YearSeries `json:"volume_by_year"`
	VolumeByYearAndComm aggregate.Pivot      `json:"volume_by_year_commodity"`
	TopStates           aggregate.Ranking    `json:"top_states"`
	TopDispositions     aggregate.Ranking    `json:"top_dispositions"`
	Panels              []PanelMessage       `json:"panels,omitempty"`
	Diagnostics         models.Diagnostics   `json:"diagnostics"`
	Notes               []string             `json:"notes"`
}

// Compute filters ds with spec and aggregates the remaining rows. It does
// no I/O; the source path and load diagnostics are attached by the caller.
func Compute(ds *models.Dataset, spec filter.Spec) Result {
	filtered := filter.Apply(ds, spec)

	res := Result{
		Title:       Title,
		Filter:      spec,
		MatchedRows: filtered.Len(),
		KPIs: KPIs{
			TotalVolume: aggregate.TotalVolume(filtered),
			Rows:        aggregate.CountRows(filtered),
		},
		VolumeByYear:        aggregate.VolumeByYear(filtered),
		VolumeByYearAndComm: aggregate.VolumeByYearAndCommodity(filtered),
		TopStates:           aggregate.TopStates(filtered),
		TopDispositions:     aggregate.TopDispositions(filtered),
		Diagnostics:         models.Diagnostics{},
		Notes:               []string{NegativeVolumeNote},
	}

	res.Panels = panelMessages(res)
	return res
}

func panelMessages(res Result) []PanelMessage {
	var out []PanelMessage

	switch {
	case !res.VolumeByYear.Available:
		out = append(out, warn(PanelVolumeByYear, "Missing 'year' or 'volume' to draw by-year chart."))
	case len(res.VolumeByYear.Points) == 0:
		out = append(out, info(PanelVolumeByYear, "No data in selected filters to show by-year chart."))
	}

	switch {
	case !res.VolumeByYearAndComm.Available:
		out = append(out, warn(PanelVolumeByYearCommodity, "Missing columns to draw year & commodity chart."))
	case len(res.VolumeByYearAndComm.Years) == 0:
		out = append(out, info(PanelVolumeByYearCommodity, "No data in selected filters for year & commodity."))
	}

	switch {
	case !res.TopStates.Available:
		out = append(out, warn(PanelTopStates, "Missing 'state' or 'volume' columns."))
	case len(res.TopStates.Entries) == 0:
		out = append(out, info(PanelTopStates, "No state data to display."))
	}

	switch {
	case !res.TopDispositions.Available:
		out = append(out, warn(PanelTopDispositions, "Missing 'disposition_description' or 'volume' columns."))
	case len(res.TopDispositions.Entries) == 0:
		out = append(out, info(PanelTopDispositions, "No disposition data to display."))
	}

	return out
}

func warn(panel, msg string) PanelMessage {
	return PanelMessage{Panel: panel, Severity: models.SeverityWarning, Message: msg}
}

func info(panel, msg string) PanelMessage {
	return PanelMessage{Panel: panel, Severity: models.SeverityInfo, Message: msg}
}
