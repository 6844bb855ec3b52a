// Package dataset folds extracted entities into per-site summaries,
// builds deduplicated datasets, and joins datasets for comparison.
package dataset

import (
	"net/url"
	"strings"

	"consentobs/pkg/utils"
)

// NormalizeIdentity computes the site identity used as the join and
// dedup key: scheme stripped, host lower-cased, leading "www." and any
// trailing slash removed. Aggregation and joining must both key on this
// one function so the two never skew apart.
func NormalizeIdentity(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(utils.EnsureScheme(raw))
	if err != nil || parsed.Host == "" {
		return fallbackIdentity(raw)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimRight(parsed.Path, "/")

	return host + path
}

// fallbackIdentity handles strings the URL parser rejects.
func fallbackIdentity(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		raw = raw[i+3:]
	}

	raw = strings.TrimRight(raw, "/")

	host := raw
	rest := ""

	if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		host, rest = raw[:i], raw[i:]
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")

	return host + rest
}
