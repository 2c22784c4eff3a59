package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"oilgas-dashboard/internal/cleaning"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

// CleaningService turns raw export files into cleaned CSV files
type CleaningService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// CleaningResult contains cleaning statistics
type CleaningResult struct {
	TotalFiles int
	TotalRows  int
	Files      []FileCleaningResult
	Duration   time.Duration
	Errors     []string
}

// FileCleaningResult contains per-file cleaning statistics
type FileCleaningResult struct {
	Input       string
	Output      string
	Rows        int
	Columns     []string
	Diagnostics models.Diagnostics
}

// NewCleaningService creates a new cleaning service
func NewCleaningService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CleaningService {
	return &CleaningService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CleanFile normalizes and completes one raw CSV and writes the cleaned copy
func (s *CleaningService) CleanFile(ctx context.Context, inPath, outPath string) (*FileCleaningResult, error) {
	timer := s.metrics.NewTimer(s.metrics.LoadDuration)

	raw, err := cleaning.ReadRawFile(inPath)
	if err != nil {
		s.metrics.RecordLoadError("unreadable_source")
		return nil, fmt.Errorf("failed to read %s: %w", inPath, err)
	}

	ds, diags := cleaning.Clean(raw)
	if err := cleaning.WriteCleanedFile(outPath, ds); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	duration := timer.ObserveDuration()
	s.metrics.RecordProcessingTime("clean_file", duration)
	s.metrics.RecordLoad(ds.Len(), diags)

	for _, d := range diags {
		s.logger.Warn(ctx, "[CLEAN_DIAGNOSTIC] "+d.Message, logging.Fields{
			"file":     inPath,
			"kind":     d.Kind,
			"severity": d.Severity,
			"column":   d.Column,
		})
	}
	s.logger.Info(ctx, "[CLEAN_FILE_SUCCESS] File cleaned", logging.Fields{
		"input":       inPath,
		"output":      outPath,
		"rows":        ds.Len(),
		"duration_ms": duration.Milliseconds(),
	})

	return &FileCleaningResult{
		Input:       inPath,
		Output:      outPath,
		Rows:        ds.Len(),
		Columns:     ds.Schema.Columns(),
		Diagnostics: diags,
	}, nil
}

// CleanDirectory cleans every *.csv file in dataDir into outDir as
// <name>_cleaned.csv. A failing file is recorded and the rest are still processed.
func (s *CleaningService) CleanDirectory(ctx context.Context, dataDir, outDir string) (*CleaningResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[CLEAN_START] Starting data cleaning", logging.Fields{
		"data_dir": dataDir,
		"out_dir":  outDir,
		"stage":    "INITIALIZATION",
	})

	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	result := &CleaningResult{
		TotalFiles: len(files),
		Errors:     make([]string, 0),
	}

	for _, inPath := range files {
		outPath := filepath.Join(outDir, cleanedName(filepath.Base(inPath)))
		fileResult, err := s.CleanFile(ctx, inPath, outPath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to clean %s: %v", inPath, err))
			s.logger.Error(ctx, "[CLEAN_FILE_ERROR] File cleaning failed", logging.Fields{
				"file_path": inPath,
				"stage":     "FILE_PROCESSING",
			}, err)
			continue
		}
		result.TotalRows += fileResult.Rows
		result.Files = append(result.Files, *fileResult)
	}

	result.Duration = time.Since(startTime)
	s.logger.Info(ctx, "[CLEAN_COMPLETE] Data cleaning completed", logging.Fields{
		"total_files":      result.TotalFiles,
		"total_rows":       result.TotalRows,
		"duration_seconds": result.Duration.Seconds(),
		"error_count":      len(result.Errors),
		"stage":            "COMPLETE",
	})

	return result, nil
}

func cleanedName(base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.HasSuffix(stem, "_cleaned") {
		return stem + ".csv"
	}
	return stem + "_cleaned.csv"
}
