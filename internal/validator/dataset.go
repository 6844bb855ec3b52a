// Package validator checks built datasets for integrity before export.
package validator

import (
	"fmt"

	"consentobs/internal/dataset"
	"consentobs/internal/models"
)

// ValidationError represents one integrity problem with context.
type ValidationError struct {
	Identity string
	Field    string
	Message  string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalSites           int
	SitesWithCookies     int
	SitesWithButtons     int
	SitesWithCMPs        int
	UncategorizedButtons int
}

// ValidateDataset checks the invariants export relies on: every summary
// carries a URL and identity, cookie keys are unique within a site, and
// every button has a category. A high share of uncategorized buttons is
// a warning, not an error — it usually means the keyword lists need
// tuning for the crawl's languages.
func ValidateDataset(ds *dataset.Dataset) *ValidationResult {
	return validateSummaries(ds.Summaries())
}

func validateSummaries(summaries []*models.SiteSummary) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	totalButtons := 0

	for _, site := range summaries {
		result.Stats.TotalSites++

		if site.URL == "" {
			result.addError(site.Identity, "url", "summary has empty URL")
		}

		if site.Identity == "" {
			result.addError(site.URL, "identity", "summary has empty identity")
		}

		if site.CookiesFound() > 0 {
			result.Stats.SitesWithCookies++
		}

		if site.ButtonsFound() > 0 {
			result.Stats.SitesWithButtons++
		}

		if len(site.CMPs) > 0 {
			result.Stats.SitesWithCMPs++
		}

		seenCookies := make(map[string]bool, len(site.Cookies))

		for _, c := range site.Cookies {
			if seenCookies[c.Key()] {
				result.addError(site.Identity, "cookies",
					fmt.Sprintf("duplicate cookie (%s, %s)", c.Name, c.Domain))
			}

			seenCookies[c.Key()] = true
		}

		for _, b := range site.Buttons {
			totalButtons++

			switch b.Category {
			case models.CategoryAccept, models.CategoryReject, models.CategorySettings:
			case models.CategoryUnknown:
				result.Stats.UncategorizedButtons++
			default:
				result.addError(site.Identity, "buttons",
					fmt.Sprintf("button %q has category %q outside the taxonomy", b.Text, b.Category))
			}
		}
	}

	if totalButtons > 0 && result.Stats.UncategorizedButtons*2 > totalButtons {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d of %d buttons are uncategorized; keyword lists may need tuning",
			result.Stats.UncategorizedButtons, totalButtons))
	}

	return result
}

func (r *ValidationResult) addError(identity, field, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Identity: identity,
		Field:    field,
		Message:  message,
	})
	r.IsValid = false
}
