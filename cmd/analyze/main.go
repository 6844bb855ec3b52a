// Package main provides the analyze command: it builds datasets for two
// crawl regions, joins them on site identity, prints the comparison,
// and writes the Excel workbooks and the markdown report.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"consentobs/internal/config"
	"consentobs/internal/dataset"
	"consentobs/internal/export"
	"consentobs/internal/extract"
	"consentobs/internal/logger"
	"consentobs/internal/records"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	inputDir := flag.String("input", "", "Input directory with tranco-*.json files")
	outputDir := flag.String("output", "", "Output directory")
	left := flag.String("left", "", "Left region to compare")
	right := flag.String("right", "", "Right region to compare")
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

	if *left != "" && *right != "" {
		cfg.Analysis.Compare = []string{*left, *right}
	}

	log := logger.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format)

	if len(cfg.Analysis.Compare) != 2 {
		log.Error("❌ Two regions are required: pass -left and -right or set analysis.compare")
		os.Exit(1)
	}

	leftRegion, rightRegion := cfg.Analysis.Compare[0], cfg.Analysis.Compare[1]

	categorizer, err := extract.NewCategorizerWithKeywords(cfg.Analysis.Keywords)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Invalid keyword config: %v", err))
		os.Exit(1)
	}

	builder := dataset.NewBuilder(
		dataset.NewAggregator(extract.NewExtractor(categorizer)),
		cfg.Analysis.Workers,
	)

	log.Info(fmt.Sprintf("🚀 Comparing %s vs %s", leftRegion, rightRegion))

	leftDS, err := buildRegion(builder, cfg.Input.Dir, leftRegion)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to build dataset for %s: %v", leftRegion, err))
		os.Exit(1)
	}

	rightDS, err := buildRegion(builder, cfg.Input.Dir, rightRegion)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to build dataset for %s: %v", rightRegion, err))
		os.Exit(1)
	}

	pairs := dataset.Join(leftDS, rightDS)
	onlyLeft := dataset.OnlyIn(leftDS, rightDS)
	onlyRight := dataset.OnlyIn(rightDS, leftDS)

	fmt.Println(renderTable(
		[]string{"dataset", "sites", "parse errors", "matched", "only here"},
		[][]string{
			{leftRegion, strconv.Itoa(leftDS.Len()), strconv.Itoa(leftDS.ParseErrors()), strconv.Itoa(len(pairs)), strconv.Itoa(len(onlyLeft))},
			{rightRegion, strconv.Itoa(rightDS.Len()), strconv.Itoa(rightDS.ParseErrors()), strconv.Itoa(len(pairs)), strconv.Itoa(len(onlyRight))},
		},
		1, 2, 3, 4,
	))

	if len(pairs) > 0 {
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			rows = append(rows, []string{
				p.Identity,
				strconv.Itoa(p.Left.CookiesFound()),
				strconv.Itoa(p.Right.CookiesFound()),
				strconv.Itoa(p.Left.ButtonsFound()),
				strconv.Itoa(p.Right.ButtonsFound()),
			})
		}

		fmt.Println(renderTable(
			[]string{
				"site",
				"cookies " + leftRegion, "cookies " + rightRegion,
				"buttons " + leftRegion, "buttons " + rightRegion,
			},
			rows,
			1, 2, 3, 4,
		))
	}

	// Export happens only after both datasets are fully built.
	if cfg.Output.Excel {
		for _, rd := range []struct {
			region string
			ds     *dataset.Dataset
		}{{leftRegion, leftDS}, {rightRegion, rightDS}} {
			dir := filepath.Join(cfg.Output.Dir, "analysis", rd.region)
			if err := export.NewExcelWriter(dir).WriteAnalysis(rd.ds); err != nil {
				log.Error(fmt.Sprintf("❌ Failed to write workbooks for %s: %v", rd.region, err))
				os.Exit(1)
			}
		}

		log.Info("✅ Excel workbooks written")
	}

	if cfg.Output.Report {
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

		log.Info(fmt.Sprintf("✅ Report written to %s", reportPath))
	}
}

func buildRegion(builder *dataset.Builder, inputDir, region string) (*dataset.Dataset, error) {
	regions, err := records.DiscoverRegions(inputDir)
	if err != nil {
		return nil, err
	}

	for _, rf := range regions {
		if rf.Region == region {
			return builder.Build(records.Open(rf.DataPath))
		}
	}

	return nil, fmt.Errorf("no data file for region %q in %s", region, inputDir)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.LoadConfig(path)
}
