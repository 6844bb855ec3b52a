package dataset

import "consentobs/internal/models"

// Dataset is one crawl run: an ordered collection of site summaries
// keyed by normalized identity. It is immutable once built.
type Dataset struct {
	summaries   []*models.SiteSummary
	byIdentity  map[string]*models.SiteSummary
	parseErrors int
}

// Len returns the number of distinct sites.
func (d *Dataset) Len() int {
	return len(d.summaries)
}

// Summaries returns the site summaries in first-seen order.
func (d *Dataset) Summaries() []*models.SiteSummary {
	out := make([]*models.SiteSummary, len(d.summaries))
	copy(out, d.summaries)

	return out
}

// Lookup finds the summary for a normalized identity.
func (d *Dataset) Lookup(identity string) (*models.SiteSummary, bool) {
	s, ok := d.byIdentity[identity]
	return s, ok
}

// Identities returns the normalized identities in first-seen order.
func (d *Dataset) Identities() []string {
	out := make([]string, 0, len(d.summaries))
	for _, s := range d.summaries {
		out = append(out, s.Identity)
	}

	return out
}

// ParseErrors reports how many malformed lines were skipped while the
// dataset was built.
func (d *Dataset) ParseErrors() int {
	return d.parseErrors
}
