package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"oilgas-dashboard/internal/config"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/internal/services"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

const maxListedErrors = 10

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	in := flag.String("in", cfg.Data.RawPath, "Raw export CSV, or a directory of them")
	out := flag.String("out", "", "Cleaned CSV (file input) or output directory (directory input)")
	flag.Parse()

	logger := logging.NewStructuredLogger("oilgas-cleaner", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	metricsCollector := metrics.NewCollector("oilgas_cleaner", prometheus.NewRegistry())
	cleaningService := services.NewCleaningService(logger, metricsCollector)

	ctx := context.Background()
	logger.Info(ctx, "[CLEANER_START] Starting data cleaning", logging.Fields{
		"version": "1.0.0",
		"in":      *in,
		"out":     *out,
	})

	info, err := os.Stat(*in)
	if err != nil {
		logger.Fatal(ctx, "[CLEANER_ERROR] Input not found", logging.Fields{"in": *in}, err)
	}

	if !info.IsDir() {
		outPath := *out
		if outPath == "" {
			outPath = cfg.Data.CleanedPath
		}
		result, err := cleaningService.CleanFile(ctx, *in, outPath)
		if err != nil {
			logger.Fatal(ctx, "[CLEANER_ERROR] Cleaning failed", logging.Fields{"in": *in}, err)
		}
		printHeader()
		printFile(*result)
		return
	}

	outDir := *out
	if outDir == "" {
		outDir = filepath.Dir(cfg.Data.CleanedPath)
	}
	result, err := cleaningService.CleanDirectory(ctx, *in, outDir)
	if err != nil {
		logger.Fatal(ctx, "[CLEANER_ERROR] Cleaning failed", logging.Fields{"in": *in}, err)
	}

	printHeader()
	fmt.Printf("Total Files:  %d\n", result.TotalFiles)
	fmt.Printf("Total Rows:   %d\n", result.TotalRows)
	fmt.Printf("Duration:     %v\n", result.Duration)
	for _, file := range result.Files {
		fmt.Println(strings.Repeat("-", 80))
		printFile(file)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < maxListedErrors {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > maxListedErrors {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-maxListedErrors)
		}
		os.Exit(1)
	}
}

func printHeader() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("CLEANING COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
}

func printFile(res services.FileCleaningResult) {
	fmt.Printf("Input:    %s\n", res.Input)
	fmt.Printf("Output:   %s\n", res.Output)
	fmt.Printf("Rows:     %d\n", res.Rows)
	fmt.Printf("Columns:  %s\n", strings.Join(res.Columns, ", "))
	for _, d := range res.Diagnostics {
		marker := "!"
		if d.Severity == models.SeverityError {
			marker = "x"
		}
		fmt.Printf("  [%s] %s\n", marker, d.Message)
	}
}
