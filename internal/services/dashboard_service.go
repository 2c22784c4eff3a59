package services

import (
	"context"
	"fmt"

	"oilgas-dashboard/internal/dashboard"
	"oilgas-dashboard/internal/filter"
	"oilgas-dashboard/internal/repository"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

// Selection is a partially specified filter. Nil fields take the value
// from filter.Default for the loaded dataset.
type Selection struct {
	YearMin         *int
	YearMax         *int
	Commodities     []string
	State           *string
	IncludeWithheld *bool
}

// Resolve fills unset fields from defaults
func (sel Selection) Resolve(defaults filter.Spec) filter.Spec {
	spec := defaults
	if sel.YearMin != nil {
		spec.YearMin = *sel.YearMin
	}
	if sel.YearMax != nil {
		spec.YearMax = *sel.YearMax
	}
	if sel.Commodities != nil {
		spec.Commodities = sel.Commodities
	}
	if sel.State != nil {
		spec.State = *sel.State
	}
	if sel.IncludeWithheld != nil {
		spec.IncludeWithheld = *sel.IncludeWithheld
	}
	return spec
}

// OptionsResult lists the filter choices and the default selection
type OptionsResult struct {
	SourcePath string         `json:"source_path"`
	Rows       int            `json:"rows"`
	Choices    filter.Choices `json:"choices"`
	Defaults   filter.Spec    `json:"defaults"`
}

// DashboardService answers dashboard queries over the discovered dataset
type DashboardService struct {
	repo       repository.DatasetRepository
	candidates []string
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewDashboardService creates a new dashboard service reading from the
// first existing candidate path
func NewDashboardService(repo repository.DatasetRepository, candidates []string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	return &DashboardService{
		repo:       repo,
		candidates: candidates,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// Current discovers and loads the dataset. Both steps are cached.
func (s *DashboardService) Current(ctx context.Context) (*repository.LoadedDataset, error) {
	path, err := s.repo.Discover(ctx, s.candidates)
	if err != nil {
		return nil, err
	}
	loaded, err := s.repo.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return loaded, nil
}

// Options returns the filter choices for the current dataset
func (s *DashboardService) Options(ctx context.Context) (*OptionsResult, error) {
	loaded, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	return &OptionsResult{
		SourcePath: loaded.Path,
		Rows:       loaded.Dataset.Len(),
		Choices:    filter.Options(loaded.Dataset),
		Defaults:   filter.Default(loaded.Dataset),
	}, nil
}

// Query filters and aggregates the current dataset. The result carries the
// source path and the diagnostics recorded when the dataset was loaded.
func (s *DashboardService) Query(ctx context.Context, sel Selection) (*dashboard.Result, error) {
	loaded, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	spec := sel.Resolve(filter.Default(loaded.Dataset))
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.QueryDuration)
	result := dashboard.Compute(loaded.Dataset, spec)
	duration := timer.ObserveDuration()
	s.metrics.QueryMatchedRows.Observe(float64(result.MatchedRows))

	result.SourcePath = loaded.Path
	result.Diagnostics = append(result.Diagnostics, loaded.Diagnostics...)

	s.logger.Debug(ctx, "[DASHBOARD_QUERY] Query computed", logging.Fields{
		"source":       loaded.Path,
		"year_min":     spec.YearMin,
		"year_max":     spec.YearMax,
		"commodities":  len(spec.Commodities),
		"state":        spec.State,
		"matched_rows": result.MatchedRows,
		"duration_ms":  duration.Milliseconds(),
	})

	return &result, nil
}

// HealthCheck reports whether the data source is reachable
func (s *DashboardService) HealthCheck(ctx context.Context) error {
	if _, err := s.repo.Discover(ctx, s.candidates); err != nil {
		return err
	}
	return s.repo.HealthCheck(ctx)
}
