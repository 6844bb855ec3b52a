package dataset

import (
	"consentobs/internal/extract"
	"consentobs/internal/models"
)

// Aggregator turns one raw record into a site summary by running every
// applicable extractor and merging the results.
type Aggregator struct {
	extractor *extract.Extractor
}

// NewAggregator creates an aggregator over the given extractor.
func NewAggregator(extractor *extract.Extractor) *Aggregator {
	return &Aggregator{extractor: extractor}
}

// Aggregate builds the SiteSummary for one record. A record whose
// gatherers produced nothing still yields a summary with empty
// collections; a site without detected consent machinery is a result,
// not an error.
func (a *Aggregator) Aggregate(record *models.RawRecord) *models.SiteSummary {
	entities := a.extractor.ExtractAll(record.Data)

	summary := &models.SiteSummary{
		URL:      record.URL,
		Identity: NormalizeIdentity(record.URL),
		Buttons:  entities.Buttons,
		TCF:      entities.TCF,
	}

	summary.Cookies = dedupeCookies(entities.Cookies)
	summary.CMPs = dedupeCMPs(entities.CMPs)

	return summary
}

// dedupeCookies unions cookies on their (name, domain) key, keeping
// first-seen order and OR-combining flags of repeats.
func dedupeCookies(cookies []models.Cookie) []models.Cookie {
	if len(cookies) == 0 {
		return nil
	}

	index := make(map[string]int, len(cookies))
	out := make([]models.Cookie, 0, len(cookies))

	for _, c := range cookies {
		if i, ok := index[c.Key()]; ok {
			out[i].Merge(c)
			continue
		}

		index[c.Key()] = len(out)
		out = append(out, c)
	}

	return out
}

// dedupeCMPs unions CMP detections on their name, first-seen order.
func dedupeCMPs(cmps []models.CmpDetection) []models.CmpDetection {
	if len(cmps) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(cmps))
	out := make([]models.CmpDetection, 0, len(cmps))

	for _, c := range cmps {
		if seen[c.Name] {
			continue
		}

		seen[c.Name] = true
		out = append(out, c)
	}

	return out
}
