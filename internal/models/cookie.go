package models

import "strings"

// SameSite is the cross-site policy reported for a cookie.
type SameSite string

// SameSite values. Observations that carry no recognizable policy map to
// SameSiteUnknown.
const (
	SameSiteStrict  SameSite = "Strict"
	SameSiteLax     SameSite = "Lax"
	SameSiteNone    SameSite = "None"
	SameSiteUnknown SameSite = "Unknown"
)

// ParseSameSite maps a raw sameSite string to the fixed policy set.
func ParseSameSite(raw string) SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return SameSiteStrict
	case "lax":
		return SameSiteLax
	case "none":
		return SameSiteNone
	default:
		return SameSiteUnknown
	}
}

// Cookie is one observed cookie. Within a site a cookie is identified by
// (Name, Domain); repeated observations of the same cookie are merged.
type Cookie struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Secure   bool     `json:"secure"`
	HTTPOnly bool     `json:"httpOnly"`
	SameSite SameSite `json:"sameSite"`
	Session  bool     `json:"session"`
}

// Key returns the (name, domain) identity used for deduplication.
func (c Cookie) Key() string {
	return c.Name + "\x00" + c.Domain
}

// Merge combines a repeated observation of the same cookie into c.
// Boolean flags are OR-combined; a known sameSite policy wins over an
// unknown one.
func (c *Cookie) Merge(other Cookie) {
	c.Secure = c.Secure || other.Secure
	c.HTTPOnly = c.HTTPOnly || other.HTTPOnly
	c.Session = c.Session || other.Session

	if c.SameSite == SameSiteUnknown && other.SameSite != SameSiteUnknown {
		c.SameSite = other.SameSite
	}
}
