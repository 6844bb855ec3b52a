// Package extract turns raw gatherer payloads into typed entities and
// classifies consent buttons into the fixed category taxonomy.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"consentobs/internal/models"
	"consentobs/pkg/utils"
)

// ErrUnknownCategory is returned when configured keyword lists name a
// category outside the fixed taxonomy.
var ErrUnknownCategory = errors.New("unknown button category")

// defaultKeywords maps each category to its curated label keywords,
// including the common non-English consent phrasings seen in crawls.
// Matching is substring-based on lower-cased, whitespace-normalized text.
func defaultKeywords() map[models.ButtonCategory][]string {
	return map[models.ButtonCategory][]string{
		models.CategoryReject: {
			"reject", "decline", "deny", "refuse", "do not accept", "no thanks",
			"no, thanks", "opt-out", "opt out", "only necessary", "essential only",
			"ablehnen", "nur notwendige", "rechazar", "refuser", "rifiuta", "weigeren",
		},
		models.CategoryAccept: {
			"accept", "agree", "allow", "consent", "got it",
			"akzeptieren", "einverstanden", "accepter", "aceptar", "accetta", "accepteren",
		},
		models.CategorySettings: {
			"settings", "preferences", "manage", "customize", "customise", "configure",
			"options", "einstellungen", "paramètres", "configurar", "impostazioni",
			"instellingen",
		},
	}
}

// normalizedAliases maps values of the NormalizedWordButtonGatherer's
// category field onto the taxonomy. The gatherer emits either names or
// the numeric codes 1..3.
var normalizedAliases = map[string]models.ButtonCategory{
	"accept":     models.CategoryAccept,
	"1":          models.CategoryAccept,
	"reject":     models.CategoryReject,
	"reject_all": models.CategoryReject,
	"2":          models.CategoryReject,
	"settings":   models.CategorySettings,
	"customize":  models.CategorySettings,
	"3":          models.CategorySettings,
}

// Categorizer classifies button labels. Classification is deterministic:
// categories are tried in the fixed models.Categories order and the
// first keyword hit wins.
type Categorizer struct {
	keywords map[models.ButtonCategory][]string
}

// NewCategorizer creates a categorizer with the built-in keyword lists.
func NewCategorizer() *Categorizer {
	return &Categorizer{keywords: defaultKeywords()}
}

// NewCategorizerWithKeywords creates a categorizer from configured
// keyword lists. Categories absent from the map keep their defaults.
func NewCategorizerWithKeywords(lists map[string][]string) (*Categorizer, error) {
	keywords := defaultKeywords()

	for name, words := range lists {
		category := models.ButtonCategory(strings.ToLower(name))
		if _, ok := keywords[category]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}

		lowered := make([]string, 0, len(words))
		for _, w := range words {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(w)))
		}

		keywords[category] = lowered
	}

	return &Categorizer{keywords: keywords}, nil
}

// Categorize maps a button's text to its category. A recognizable
// normalized category value wins over the text heuristics; with no
// normalized value and no keyword hit the result is CategoryUnknown.
func (c *Categorizer) Categorize(rawText, normalizedCategory string) models.ButtonCategory {
	if normalizedCategory != "" {
		if category, ok := normalizedAliases[strings.ToLower(strings.TrimSpace(normalizedCategory))]; ok {
			return category
		}
	}

	text := strings.ToLower(utils.NormalizeWhitespace(rawText))
	if text == "" {
		return models.CategoryUnknown
	}

	for _, category := range models.Categories() {
		for _, keyword := range c.keywords[category] {
			if keyword != "" && strings.Contains(text, keyword) {
				return category
			}
		}
	}

	return models.CategoryUnknown
}
