package extract

import (
	"testing"

	"consentobs/internal/models"
)

func TestNewCategorizer(t *testing.T) {
	c := NewCategorizer()
	if c == nil {
		t.Fatal("NewCategorizer returned nil")
	}
}

func TestCategorizer_Categorize_Keywords(t *testing.T) {
	c := NewCategorizer()

	tests := []struct {
		text string
		want models.ButtonCategory
	}{
		{"Accept all", models.CategoryAccept},
		{"ACCEPT COOKIES", models.CategoryAccept},
		{"I agree", models.CategoryAccept},
		{"Allow all cookies", models.CategoryAccept},
		{"Akzeptieren", models.CategoryAccept},
		{"Reject", models.CategoryReject},
		{"Decline all", models.CategoryReject},
		{"Do not accept", models.CategoryReject},
		{"No thanks", models.CategoryReject},
		{"Only necessary", models.CategoryReject},
		{"Ablehnen", models.CategoryReject},
		{"Cookie settings", models.CategorySettings},
		{"Manage preferences", models.CategorySettings},
		{"Customize", models.CategorySettings},
		{"", models.CategoryUnknown},
		{"Weiter zur Startseite bitte", models.CategoryUnknown},
		{"12345", models.CategoryUnknown},
	}

	for _, tt := range tests {
		if got := c.Categorize(tt.text, ""); got != tt.want {
			t.Errorf("Categorize(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestCategorizer_Categorize_NormalizedOverride(t *testing.T) {
	c := NewCategorizer()

	// A present normalized category always wins over the text.
	if got := c.Categorize("Accept all", "reject"); got != models.CategoryReject {
		t.Errorf("Categorize with normalized reject = %s, want %s", got, models.CategoryReject)
	}

	if got := c.Categorize("whatever", "1"); got != models.CategoryAccept {
		t.Errorf("Categorize with normalized code 1 = %s, want %s", got, models.CategoryAccept)
	}

	if got := c.Categorize("whatever", "customize"); got != models.CategorySettings {
		t.Errorf("Categorize with normalized customize = %s, want %s", got, models.CategorySettings)
	}

	// An unrecognizable normalized value falls back to the text.
	if got := c.Categorize("Reject", "weird-value"); got != models.CategoryReject {
		t.Errorf("Categorize with bad normalized value = %s, want %s", got, models.CategoryReject)
	}
}

func TestCategorizer_Categorize_Deterministic(t *testing.T) {
	c := NewCategorizer()

	first := c.Categorize("Accept or reject cookies", "")
	for range 10 {
		if got := c.Categorize("Accept or reject cookies", ""); got != first {
			t.Fatalf("Categorize not deterministic: %s then %s", first, got)
		}
	}

	// Reject is ordered before Accept, so mixed labels land there.
	if first != models.CategoryReject {
		t.Errorf("Categorize(mixed) = %s, want %s", first, models.CategoryReject)
	}
}

func TestNewCategorizerWithKeywords(t *testing.T) {
	c, err := NewCategorizerWithKeywords(map[string][]string{
		"accept": {"oui"},
	})
	if err != nil {
		t.Fatalf("NewCategorizerWithKeywords returned unexpected error: %v", err)
	}

	if got := c.Categorize("Oui", ""); got != models.CategoryAccept {
		t.Errorf("Categorize(Oui) = %s, want %s", got, models.CategoryAccept)
	}

	// The override replaces the default accept list entirely.
	if got := c.Categorize("Accept all", ""); got != models.CategoryUnknown {
		t.Errorf("Categorize(Accept all) = %s, want %s", got, models.CategoryUnknown)
	}
}

func TestNewCategorizerWithKeywords_UnknownCategory(t *testing.T) {
	_, err := NewCategorizerWithKeywords(map[string][]string{
		"dismiss": {"close"},
	})
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
}
