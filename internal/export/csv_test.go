package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"consentobs/internal/dataset"
	"consentobs/internal/extract"
	"consentobs/internal/models"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	builder := dataset.NewBuilder(
		dataset.NewAggregator(extract.NewExtractor(extract.NewCategorizer())),
		1,
	)

	return builder.BuildFromRecords([]*models.RawRecord{
		{
			URL: "https://a.com",
			Data: map[string]json.RawMessage{
				extract.GathererCookie: json.RawMessage(`[{"name": "id", "domain": "a.com", "secure": true}]`),
				extract.GathererButton: json.RawMessage(`{"detectionsArray": [{"text": "Accept all", "visibilityAnalysis": {}}]}`),
				extract.GathererCMP:    json.RawMessage(`{"CMPs": [{"CMP_name": "OneTrust"}]}`),
			},
		},
		{
			URL:  "https://b.org",
			Data: map[string]json.RawMessage{},
		},
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}

	return rows
}

func TestCSVWriter_WriteRegion(t *testing.T) {
	dir := t.TempDir()

	if err := NewCSVWriter(dir).WriteRegion("eu", testDataset(t)); err != nil {
		t.Fatalf("WriteRegion returned unexpected error: %v", err)
	}

	cookies := readCSV(t, filepath.Join(dir, "cookies_eu.csv"))
	if len(cookies) != 2 {
		t.Fatalf("cookies table has %d rows, want header + 1", len(cookies))
	}

	if cookies[0][0] != "url" || cookies[0][1] != "cookie_name" {
		t.Errorf("cookie header = %v", cookies[0])
	}

	row := cookies[1]
	if row[0] != "https://a.com" || row[1] != "id" || row[3] != "true" || row[6] != "true" {
		t.Errorf("cookie row = %v", row)
	}

	buttons := readCSV(t, filepath.Join(dir, "buttons_eu.csv"))
	if len(buttons) != 2 {
		t.Fatalf("buttons table has %d rows, want header + 1", len(buttons))
	}

	if buttons[1][1] != "Accept all" || buttons[1][4] != "accept" {
		t.Errorf("button row = %v", buttons[1])
	}

	cmps := readCSV(t, filepath.Join(dir, "cmps_eu.csv"))
	if len(cmps) != 2 || cmps[1][1] != "OneTrust" {
		t.Errorf("cmps table = %v", cmps)
	}

	// Every site appears in the sites table, even the empty one.
	sites := readCSV(t, filepath.Join(dir, "sites_eu.csv"))
	if len(sites) != 3 {
		t.Fatalf("sites table has %d rows, want header + 2", len(sites))
	}

	if sites[1][3] != "true" {
		t.Errorf("sites row = %v, want has_secure_cookies=true", sites[1])
	}

	if sites[2][1] != "0" || sites[2][2] != "0" {
		t.Errorf("empty site row = %v, want zero counts", sites[2])
	}
}

func TestCSVWriter_WriteCrawlErrors(t *testing.T) {
	dir := t.TempDir()

	errs := []models.CrawlError{
		{Timestamp: "2024-04-25T00:00:00Z", URL: "https://dead.com", ErrorType: "timeout", Message: "navigation timed out"},
	}

	if err := NewCSVWriter(dir).WriteCrawlErrors("eu", errs); err != nil {
		t.Fatalf("WriteCrawlErrors returned unexpected error: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "errors_eu.csv"))
	if len(rows) != 2 {
		t.Fatalf("errors table has %d rows, want header + 1", len(rows))
	}

	if rows[1][1] != "https://dead.com" || rows[1][4] != "eu" {
		t.Errorf("error row = %v", rows[1])
	}
}

func TestCSVWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	if err := NewCSVWriter(dir).WriteRegion("eu", testDataset(t)); err != nil {
		t.Fatalf("WriteRegion returned unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "sites_eu.csv")); err != nil {
		t.Errorf("output directory was not created: %v", err)
	}
}
