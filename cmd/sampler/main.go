package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"oilgas-dashboard/internal/config"
	"oilgas-dashboard/internal/sampling"
	"oilgas-dashboard/internal/services"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	src := flag.String("src", cfg.Sampler.SourcePath, "Cleaned CSV to sample from")
	out := flag.String("out", cfg.Sampler.OutputPath, "Where to write the sample CSV")
	target := flag.Int("target", cfg.Sampler.TargetRows, "Maximum number of rows in the sample")
	seed := flag.Int64("seed", cfg.Sampler.Seed, "Random seed")
	flag.Parse()

	cfg.Sampler.SourcePath, cfg.Sampler.OutputPath = *src, *out
	cfg.Sampler.TargetRows, cfg.Sampler.Seed = *target, *seed
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("oilgas-sampler", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	metricsCollector := metrics.NewCollector("oilgas_sampler", prometheus.NewRegistry())
	samplingService := services.NewSamplingService(logger, metricsCollector)

	ctx := context.Background()
	result, err := samplingService.BuildSample(ctx, *src, *out, sampling.Options{
		Target: *target,
		Seed:   *seed,
	})
	if err != nil {
		logger.Fatal(ctx, "[SAMPLER_ERROR] Sampling failed", logging.Fields{"src": *src}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SAMPLE COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Source:       %s (%d rows)\n", result.Source, result.SourceRows)
	fmt.Printf("Output:       %s\n", result.Output)
	fmt.Printf("Rows:         %d\n", result.Rows)
	fmt.Printf("Years:        %d\n", result.Years)
	fmt.Printf("Duration:     %v\n", result.Duration)
}
