package services

import (
	"context"
	"fmt"
	"time"

	"oilgas-dashboard/internal/cleaning"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/internal/sampling"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

// SamplingService builds stratified samples of a cleaned dataset
type SamplingService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// SamplingResult contains sampling statistics
type SamplingResult struct {
	Source     string
	Output     string
	SourceRows int
	Rows       int
	Years      int
	Duration   time.Duration
}

// NewSamplingService creates a new sampling service
func NewSamplingService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SamplingService {
	return &SamplingService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// BuildSample reads srcPath, draws a stratified sample, and writes it to
// outPath. A source with neither a year nor a production_date column is
// rejected instead of being sampled under the fallback year.
func (s *SamplingService) BuildSample(ctx context.Context, srcPath, outPath string, opts sampling.Options) (*SamplingResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[SAMPLE_START] Building stratified sample", logging.Fields{
		"source": srcPath,
		"target": opts.Target,
		"seed":   opts.Seed,
	})

	raw, err := cleaning.ReadRawFile(srcPath)
	if err != nil {
		s.metrics.RecordLoadError("unreadable_source")
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if !hasYearSource(raw.Header) {
		return nil, &models.ValidationError{
			Field:   models.ColYear,
			Value:   srcPath,
			Message: "no 'year' or 'production_date' column found in source CSV",
		}
	}

	ds, diags := cleaning.Clean(raw)
	s.metrics.RecordLoad(ds.Len(), diags)

	sample, err := sampling.Sample(ds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", srcPath, err)
	}

	if err := cleaning.WriteCleanedFile(outPath, sample); err != nil {
		return nil, fmt.Errorf("failed to write sample: %w", err)
	}
	s.metrics.SampleRowsTotal.Add(float64(sample.Len()))

	result := &SamplingResult{
		Source:     srcPath,
		Output:     outPath,
		SourceRows: ds.Len(),
		Rows:       sample.Len(),
		Years:      countYears(sample),
		Duration:   time.Since(startTime),
	}
	s.metrics.RecordProcessingTime("build_sample", result.Duration)

	s.logger.Info(ctx, "[SAMPLE_COMPLETE] Sample written", logging.Fields{
		"output":           outPath,
		"source_rows":      result.SourceRows,
		"rows":             result.Rows,
		"years":            result.Years,
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}

func hasYearSource(header []string) bool {
	for _, h := range header {
		switch cleaning.CanonicalColumnName(h) {
		case models.ColYear, models.ColProductionDate:
			return true
		}
	}
	return false
}

func countYears(ds *models.Dataset) int {
	years := make(map[int]bool)
	for _, r := range ds.Records {
		years[r.Year] = true
	}
	return len(years)
}
