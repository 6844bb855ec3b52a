// Package integration exercises the full pipeline: container discovery,
// record parsing, aggregation, joining, and export, end to end.
package integration

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"consentobs/internal/dataset"
	"consentobs/internal/export"
	"consentobs/internal/extract"
	"consentobs/internal/records"
	"consentobs/pkg/metadata"
)

func record(url, cookies, buttons string) string {
	return fmt.Sprintf(
		`{"url": %q, "time": 1714000000, "data": {"CookieGatherer": %s, "ButtonGatherer": %s}}`,
		url, cookies, buttons)
}

func writeZip(t *testing.T, path, member, content string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)

	m, err := w.Create(member)
	if err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	if _, err := m.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write member: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
}

func TestPipeline(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	// Region "germany" as a zip container, region "us" as plain JSONL.
	germanyLines := strings.Join([]string{
		record("https://www.shared.com/",
			`[{"name": "id", "domain": "shared.com", "secure": true}]`,
			`{"detectionsArray": [{"text": "Alle akzeptieren", "visibilityAnalysis": {}}]}`),
		record("https://only-germany.de", `[]`, `[]`),
		"this line is broken",
		record("https://shared.com",
			`[{"name": "id", "domain": "shared.com"}, {"name": "extra", "domain": "shared.com"}]`,
			`[]`),
	}, "\n")

	writeZip(t, filepath.Join(inputDir, "tranco-germany.zip"), "job-1/data.json", germanyLines)

	usLines := strings.Join([]string{
		record("https://shared.com",
			`[{"name": "id", "domain": "shared.com"}]`,
			`{"detectionsArray": [{"text": "Reject all", "visible": true}]}`),
		record("https://only-us.com", `[]`, `[]`),
	}, "\n") + "\n"

	if err := os.WriteFile(filepath.Join(inputDir, "tranco-us.json"), []byte(usLines), 0644); err != nil {
		t.Fatalf("failed to write us data: %v", err)
	}

	errorLines := `{"timestamp": "2024-04-25T00:00:00Z", "url": "https://dead.de", "errorType": "timeout", "error": "navigation timed out"}` + "\n"
	if err := os.WriteFile(filepath.Join(inputDir, "errors-germany.json"), []byte(errorLines), 0644); err != nil {
		t.Fatalf("failed to write error log: %v", err)
	}

	regions, err := records.DiscoverRegions(inputDir)
	if err != nil {
		t.Fatalf("DiscoverRegions returned unexpected error: %v", err)
	}

	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	builder := dataset.NewBuilder(
		dataset.NewAggregator(extract.NewExtractor(extract.NewCategorizer())),
		4,
	)

	datasets := make(map[string]*dataset.Dataset, len(regions))

	for _, rf := range regions {
		ds, err := builder.Build(records.Open(rf.DataPath))
		if err != nil {
			t.Fatalf("Build(%s) returned unexpected error: %v", rf.Region, err)
		}

		datasets[rf.Region] = ds
	}

	germany := datasets["germany"]
	us := datasets["us"]

	// The duplicate shared.com records collapse into one site; the broken
	// line is counted, not fatal.
	if germany.Len() != 2 {
		t.Errorf("germany has %d sites, want 2", germany.Len())
	}

	if germany.ParseErrors() != 1 {
		t.Errorf("germany parse errors = %d, want 1", germany.ParseErrors())
	}

	shared, ok := germany.Lookup("shared.com")
	if !ok {
		t.Fatal("shared.com missing from germany")
	}

	if shared.CookiesFound() != 2 {
		t.Errorf("shared.com cookies = %d, want set union of 2", shared.CookiesFound())
	}

	if !shared.HasSecureCookies() {
		t.Error("secure flag should survive the merge")
	}

	// Cross-region join.
	pairs := dataset.Join(germany, us)
	if len(pairs) != 1 || pairs[0].Identity != "shared.com" {
		t.Fatalf("join = %v, want exactly shared.com", pairs)
	}

	if got := dataset.OnlyIn(germany, us); len(got) != 1 || got[0].Identity != "only-germany.de" {
		t.Errorf("only in germany = %v", got)
	}

	// Exports.
	csvWriter := export.NewCSVWriter(outputDir)
	for _, rf := range regions {
		if err := csvWriter.WriteRegion(rf.Region, datasets[rf.Region]); err != nil {
			t.Fatalf("WriteRegion(%s) returned unexpected error: %v", rf.Region, err)
		}

		if rf.ErrorsPath != "" {
			crawlErrs, skipped, err := records.LoadCrawlErrors(records.Open(rf.ErrorsPath))
			if err != nil {
				t.Fatalf("LoadCrawlErrors returned unexpected error: %v", err)
			}

			if skipped != 0 {
				t.Errorf("skipped = %d, want 0", skipped)
			}

			if err := csvWriter.WriteCrawlErrors(rf.Region, crawlErrs); err != nil {
				t.Fatalf("WriteCrawlErrors returned unexpected error: %v", err)
			}
		}
	}

	sitesFile, err := os.Open(filepath.Join(outputDir, "sites_germany.csv"))
	if err != nil {
		t.Fatalf("sites table missing: %v", err)
	}
	defer sitesFile.Close()

	rows, err := csv.NewReader(sitesFile).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse sites table: %v", err)
	}

	if len(rows) != 3 {
		t.Errorf("sites table has %d rows, want header + 2", len(rows))
	}

	reportPath := filepath.Join(outputDir, "comparison_germany_us.md")

	err = export.WriteComparisonReport(reportPath, export.Comparison{
		LeftName:  "germany",
		RightName: "us",
		Left:      germany,
		Right:     us,
	})
	if err != nil {
		t.Fatalf("WriteComparisonReport returned unexpected error: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	if !strings.Contains(string(content), "shared.com") {
		t.Error("report should list the matched site")
	}

	if ok, err := metadata.Verify(string(content)); !ok {
		t.Errorf("report stamp should verify, got: %v", err)
	}
}
