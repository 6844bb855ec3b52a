// Package main provides the extract command: it discovers crawl output
// files per region and writes the per-region CSV tables.
package main

import (
	"flag"
	"fmt"
	"os"

	"consentobs/internal/config"
	"consentobs/internal/dataset"
	"consentobs/internal/export"
	"consentobs/internal/extract"
	"consentobs/internal/logger"
	"consentobs/internal/records"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	inputDir := flag.String("input", "", "Input directory with tranco-*.json / errors-*.json files")
	outputDir := flag.String("output", "", "Output directory for CSV tables")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *inputDir != "" {
		cfg.Input.Dir = *inputDir
	}

	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	log := logger.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format)

	categorizer, err := extract.NewCategorizerWithKeywords(cfg.Analysis.Keywords)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Invalid keyword config: %v", err))
		os.Exit(1)
	}

	builder := dataset.NewBuilder(
		dataset.NewAggregator(extract.NewExtractor(categorizer)),
		cfg.Analysis.Workers,
	)

	regions, err := records.DiscoverRegions(cfg.Input.Dir)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to scan input directory: %v", err))
		os.Exit(1)
	}

	if len(regions) == 0 {
		log.Error(fmt.Sprintf("❌ No data files found in %s", cfg.Input.Dir))
		os.Exit(1)
	}

	writer := export.NewCSVWriter(cfg.Output.Dir)

	for _, region := range regions {
		log.Info(fmt.Sprintf("📍 Processing region: %s", region.Region))

		ds, err := builder.Build(records.Open(region.DataPath))
		if err != nil {
			log.Error(fmt.Sprintf("❌ Failed to build dataset for %s: %v", region.Region, err))
			os.Exit(1)
		}

		if ds.ParseErrors() > 0 {
			log.Warn(fmt.Sprintf("⚠️  Skipped %d malformed lines in %s", ds.ParseErrors(), region.DataPath))
		}

		if err := writer.WriteRegion(region.Region, ds); err != nil {
			log.Error(fmt.Sprintf("❌ Failed to write tables for %s: %v", region.Region, err))
			os.Exit(1)
		}

		log.Info(fmt.Sprintf("✅ %s: %d sites", region.Region, ds.Len()))

		if region.ErrorsPath == "" {
			continue
		}

		crawlErrs, skipped, err := records.LoadCrawlErrors(records.Open(region.ErrorsPath))
		if err != nil {
			log.Error(fmt.Sprintf("❌ Failed to read error log for %s: %v", region.Region, err))
			os.Exit(1)
		}

		if skipped > 0 {
			log.Warn(fmt.Sprintf("⚠️  Skipped %d malformed lines in %s", skipped, region.ErrorsPath))
		}

		if err := writer.WriteCrawlErrors(region.Region, crawlErrs); err != nil {
			log.Error(fmt.Sprintf("❌ Failed to write error table for %s: %v", region.Region, err))
			os.Exit(1)
		}
	}

	log.Info(fmt.Sprintf("✅ Extraction complete, tables written to %s", cfg.Output.Dir))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.LoadConfig(path)
}
