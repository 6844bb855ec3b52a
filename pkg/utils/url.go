package utils

import "strings"

// EnsureScheme prefixes bare domains with https:// so they parse as URLs.
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if strings.Contains(raw, "://") {
		return raw
	}

	return "https://" + raw
}
