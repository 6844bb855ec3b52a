// Package main provides the unified worker command: it ingests every
// region's crawl output, builds the datasets, and runs all configured
// exports including the cross-region comparison.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"consentobs/internal/config"
	"consentobs/internal/dataset"
	"consentobs/internal/export"
	"consentobs/internal/extract"
	"consentobs/internal/logger"
	"consentobs/internal/records"
	"consentobs/internal/validator"
)

func main() {
	// 1. Define Command-Line Flags
	// ---------------------------
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	inputDir := flag.String("input", "", "Input directory override")
	outputDir := flag.String("output", "", "Output directory override")
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

	log.Info("🚀 Starting Consent Observatory Worker Pipeline")
	log.Info(fmt.Sprintf("📍 Input: %s", cfg.Input.Dir))
	log.Info(fmt.Sprintf("🎯 Output: %s", cfg.Output.Dir))

	// 2. Ingestion & Aggregation
	// --------------------------
	log.Info("Phase 1: Ingestion & Aggregation...")

	startTime := time.Now()

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

	datasets := make(map[string]*dataset.Dataset, len(regions))

	for _, region := range regions {
		ds, err := builder.Build(records.Open(region.DataPath))
		if err != nil {
			log.Error(fmt.Sprintf("❌ Failed to build dataset for %s: %v", region.Region, err))
			os.Exit(1)
		}

		datasets[region.Region] = ds

		log.Info(fmt.Sprintf("ℹ️  %s: %d sites, %d malformed lines", region.Region, ds.Len(), ds.ParseErrors()))
	}

	log.Info(fmt.Sprintf("✅ Built %d datasets in %v", len(datasets), time.Since(startTime)))

	// 3. Validation
	// -------------
	log.Info("Phase 2: Validation...")

	for _, region := range regions {
		result := validator.ValidateDataset(datasets[region.Region])

		for _, warning := range result.Warnings {
			log.Warn(fmt.Sprintf("⚠️  %s: %s", region.Region, warning))
		}

		if !result.IsValid {
			for _, vErr := range result.Errors {
				log.Error(fmt.Sprintf("❌ %s: %s/%s: %s", region.Region, vErr.Identity, vErr.Field, vErr.Message))
			}

			os.Exit(1)
		}

		log.Info(fmt.Sprintf("ℹ️  %s: %d sites with cookies, %d with buttons, %d with CMPs",
			region.Region,
			result.Stats.SitesWithCookies,
			result.Stats.SitesWithButtons,
			result.Stats.SitesWithCMPs,
		))
	}

	// 4. Export
	// ---------
	log.Info("Phase 3: Export...")

	csvWriter := export.NewCSVWriter(cfg.Output.Dir)

	for _, region := range regions {
		ds := datasets[region.Region]

		if cfg.Output.CSV {
			if err := csvWriter.WriteRegion(region.Region, ds); err != nil {
				log.Error(fmt.Sprintf("❌ Failed to write CSV tables for %s: %v", region.Region, err))
				os.Exit(1)
			}

			if region.ErrorsPath != "" {
				crawlErrs, _, err := records.LoadCrawlErrors(records.Open(region.ErrorsPath))
				if err != nil {
					log.Error(fmt.Sprintf("❌ Failed to read error log for %s: %v", region.Region, err))
					os.Exit(1)
				}

				if err := csvWriter.WriteCrawlErrors(region.Region, crawlErrs); err != nil {
					log.Error(fmt.Sprintf("❌ Failed to write error table for %s: %v", region.Region, err))
					os.Exit(1)
				}
			}
		}

		if cfg.Output.Excel {
			dir := filepath.Join(cfg.Output.Dir, "analysis", region.Region)
			if err := export.NewExcelWriter(dir).WriteAnalysis(ds); err != nil {
				log.Error(fmt.Sprintf("❌ Failed to write workbooks for %s: %v", region.Region, err))
				os.Exit(1)
			}
		}
	}

	log.Info("✅ Per-region exports complete")

	// 5. Comparison
	// -------------
	if len(cfg.Analysis.Compare) == 2 && cfg.Output.Report {
		log.Info("Phase 4: Comparison...")

		leftRegion, rightRegion := cfg.Analysis.Compare[0], cfg.Analysis.Compare[1]

		leftDS, okL := datasets[leftRegion]
		rightDS, okR := datasets[rightRegion]

		if !okL || !okR {
			log.Error(fmt.Sprintf("❌ Compare regions not found in input: %s, %s", leftRegion, rightRegion))
			os.Exit(1)
		}

		reportPath := filepath.Join(cfg.Output.Dir, fmt.Sprintf("comparison_%s_%s.md", leftRegion, rightRegion))

		err := export.WriteComparisonReport(reportPath, export.Comparison{
			LeftName:  leftRegion,
			RightName: rightRegion,
			Left:      leftDS,
			Right:     rightDS,
		})
		if err != nil {
			log.Error(fmt.Sprintf("❌ Failed to write report: %v", err))
			os.Exit(1)
		}

		log.Info(fmt.Sprintf("✅ Comparison report written to %s", reportPath))
	}

	log.Info(fmt.Sprintf("🏁 Pipeline finished in %v", time.Since(startTime)))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.LoadConfig(path)
}
