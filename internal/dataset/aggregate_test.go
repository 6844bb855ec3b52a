package dataset

import (
	"encoding/json"
	"testing"

	"consentobs/internal/extract"
	"consentobs/internal/models"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(extract.NewExtractor(extract.NewCategorizer()))
}

func TestAggregate(t *testing.T) {
	agg := newTestAggregator()

	record := &models.RawRecord{
		URL: "https://www.a.com/",
		Data: map[string]json.RawMessage{
			extract.GathererCookie: json.RawMessage(`[{"name": "id", "domain": "a.com", "secure": true}]`),
			extract.GathererButton: json.RawMessage(`{"detectionsArray": [{"text": "Accept all", "visibilityAnalysis": {}}]}`),
		},
	}

	summary := agg.Aggregate(record)

	if summary.URL != "https://www.a.com/" {
		t.Errorf("URL = %q, want original URL preserved", summary.URL)
	}

	if summary.Identity != "a.com" {
		t.Errorf("Identity = %q, want %q", summary.Identity, "a.com")
	}

	if summary.CookiesFound() != 1 {
		t.Fatalf("CookiesFound = %d, want 1", summary.CookiesFound())
	}

	c := summary.Cookies[0]
	if c.Name != "id" || c.Domain != "a.com" || !c.Secure || !c.Session {
		t.Errorf("cookie = %+v, want secure session cookie (id, a.com)", c)
	}

	if !summary.HasSecureCookies() {
		t.Error("HasSecureCookies should be true")
	}

	if summary.ButtonsFound() != 1 {
		t.Fatalf("ButtonsFound = %d, want 1", summary.ButtonsFound())
	}

	if summary.Buttons[0].Category != models.CategoryAccept {
		t.Errorf("category = %s, want %s", summary.Buttons[0].Category, models.CategoryAccept)
	}
}

func TestAggregate_EmptyRecord(t *testing.T) {
	agg := newTestAggregator()

	summary := agg.Aggregate(&models.RawRecord{
		URL:  "https://quiet.example",
		Data: map[string]json.RawMessage{},
	})

	if summary.Identity != "quiet.example" {
		t.Errorf("Identity = %q, want %q", summary.Identity, "quiet.example")
	}

	if summary.CookiesFound() != 0 || summary.ButtonsFound() != 0 || len(summary.CMPs) != 0 {
		t.Error("empty record should produce an empty summary, not fail")
	}

	if summary.TCFDetected() {
		t.Error("TCFDetected should be false without an IABJS payload")
	}
}

func TestAggregate_DedupesWithinRecord(t *testing.T) {
	agg := newTestAggregator()

	record := &models.RawRecord{
		URL: "https://a.com",
		Data: map[string]json.RawMessage{
			extract.GathererCookie: json.RawMessage(`[
				{"name": "id", "domain": "a.com"},
				{"name": "id", "domain": "a.com", "secure": true},
				{"name": "id", "domain": "b.com"}
			]`),
			extract.GathererCMP: json.RawMessage(`{"CMPs": [
				{"CMP_name": "OneTrust"},
				{"CMP_name": "OneTrust"}
			]}`),
		},
	}

	summary := agg.Aggregate(record)

	if summary.CookiesFound() != 2 {
		t.Fatalf("CookiesFound = %d, want 2", summary.CookiesFound())
	}

	// Flags of duplicate observations are OR-combined.
	if !summary.Cookies[0].Secure {
		t.Error("merged duplicate should keep the secure flag")
	}

	if len(summary.CMPs) != 1 {
		t.Errorf("got %d CMPs, want 1", len(summary.CMPs))
	}
}
