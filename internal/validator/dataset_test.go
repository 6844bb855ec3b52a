package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"consentobs/internal/dataset"
	"consentobs/internal/extract"
	"consentobs/internal/models"
)

func buildDataset(t *testing.T, recs []*models.RawRecord) *dataset.Dataset {
	t.Helper()

	builder := dataset.NewBuilder(
		dataset.NewAggregator(extract.NewExtractor(extract.NewCategorizer())),
		1,
	)

	return builder.BuildFromRecords(recs)
}

func TestValidateDataset(t *testing.T) {
	ds := buildDataset(t, []*models.RawRecord{
		{
			URL: "https://a.com",
			Data: map[string]json.RawMessage{
				extract.GathererCookie: json.RawMessage(`[{"name": "id", "domain": "a.com"}]`),
				extract.GathererButton: json.RawMessage(`[{"text": "Accept all"}]`),
				extract.GathererCMP:    json.RawMessage(`{"CMPs": [{"CMP_name": "OneTrust"}]}`),
			},
		},
		{
			URL:  "https://b.com",
			Data: map[string]json.RawMessage{},
		},
	})

	result := ValidateDataset(ds)

	if !result.IsValid {
		t.Fatalf("expected a valid dataset, got errors: %v", result.Errors)
	}

	if result.Stats.TotalSites != 2 {
		t.Errorf("TotalSites = %d, want 2", result.Stats.TotalSites)
	}

	if result.Stats.SitesWithCookies != 1 {
		t.Errorf("SitesWithCookies = %d, want 1", result.Stats.SitesWithCookies)
	}

	if result.Stats.SitesWithButtons != 1 {
		t.Errorf("SitesWithButtons = %d, want 1", result.Stats.SitesWithButtons)
	}

	if result.Stats.SitesWithCMPs != 1 {
		t.Errorf("SitesWithCMPs = %d, want 1", result.Stats.SitesWithCMPs)
	}
}

func TestValidateDataset_WarnsOnUncategorized(t *testing.T) {
	ds := buildDataset(t, []*models.RawRecord{
		{
			URL: "https://a.com",
			Data: map[string]json.RawMessage{
				extract.GathererButton: json.RawMessage(`[
					{"text": "Mystery one"},
					{"text": "Mystery two"},
					{"text": "Accept all"}
				]`),
			},
		},
	})

	result := ValidateDataset(ds)

	if !result.IsValid {
		t.Fatalf("uncategorized buttons should warn, not fail: %v", result.Errors)
	}

	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning when most buttons are uncategorized")
	}

	if !strings.Contains(result.Warnings[0], "uncategorized") {
		t.Errorf("warning = %q", result.Warnings[0])
	}

	if result.Stats.UncategorizedButtons != 2 {
		t.Errorf("UncategorizedButtons = %d, want 2", result.Stats.UncategorizedButtons)
	}
}

func TestValidateDataset_DetectsBadSummaries(t *testing.T) {
	ds := buildDataset(t, nil)

	// Hand-built summaries bypass the aggregation invariants.
	broken := &models.SiteSummary{
		URL:      "",
		Identity: "a.com",
		Cookies: []models.Cookie{
			{Name: "id", Domain: "a.com"},
			{Name: "id", Domain: "a.com"},
		},
		Buttons: []models.Button{
			{Text: "Accept", Category: models.ButtonCategory("banana")},
		},
	}

	result := ValidateDataset(ds)
	if !result.IsValid {
		t.Fatal("empty dataset should be valid")
	}

	result = validateSummaries([]*models.SiteSummary{broken})

	if result.IsValid {
		t.Fatal("expected validation errors")
	}

	fields := make(map[string]bool)
	for _, e := range result.Errors {
		fields[e.Field] = true
	}

	for _, want := range []string{"url", "cookies", "buttons"} {
		if !fields[want] {
			t.Errorf("missing validation error for field %q, got %v", want, result.Errors)
		}
	}
}
