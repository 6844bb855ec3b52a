package dataset

import "consentobs/internal/models"

// JoinedPair is one site present in both datasets of a comparison.
type JoinedPair struct {
	Identity string
	Left     *models.SiteSummary
	Right    *models.SiteSummary
}

// Join intersects two datasets by normalized identity. Exactly one pair
// is produced per identity present in both; order follows a's iteration
// order. Sites on one side only are not an error — they are exposed via
// OnlyIn so the restriction is always inspectable.
func Join(a, b *Dataset) []JoinedPair {
	var pairs []JoinedPair

	for _, left := range a.summaries {
		right, ok := b.byIdentity[left.Identity]
		if !ok {
			continue
		}

		pairs = append(pairs, JoinedPair{
			Identity: left.Identity,
			Left:     left,
			Right:    right,
		})
	}

	return pairs
}

// OnlyIn returns the sites present in a but absent from b, in a's
// iteration order.
func OnlyIn(a, b *Dataset) []*models.SiteSummary {
	var out []*models.SiteSummary

	for _, s := range a.summaries {
		if _, ok := b.byIdentity[s.Identity]; !ok {
			out = append(out, s)
		}
	}

	return out
}
