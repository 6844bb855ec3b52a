package models

import "encoding/json"

// CmpDetection records the presence of a known consent-management
// platform on a site. A missing CMP gatherer simply yields none.
type CmpDetection struct {
	Name string          `json:"name"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// TcfSignal records whether the IAB TCF API was reachable on a page and
// the opaque ping result when it was.
type TcfSignal struct {
	APIDetected bool            `json:"apiDetected"`
	PingResult  json.RawMessage `json:"pingResult,omitempty"`
}

// SiteSummary is the per-site rollup of every entity extracted from that
// site's record(s). Exactly one summary exists per normalized identity
// within a dataset.
type SiteSummary struct {
	URL      string         `json:"url"`
	Identity string         `json:"identity"`
	Cookies  []Cookie       `json:"cookies"`
	Buttons  []Button       `json:"buttons"`
	CMPs     []CmpDetection `json:"cmps"`
	TCF      *TcfSignal     `json:"tcf,omitempty"`
}

// HasSecureCookies reports whether any observed cookie carries the
// Secure flag. Recomputed from the cookies, never stored.
func (s *SiteSummary) HasSecureCookies() bool {
	for _, c := range s.Cookies {
		if c.Secure {
			return true
		}
	}

	return false
}

// CookiesFound returns the number of distinct cookies observed.
func (s *SiteSummary) CookiesFound() int {
	return len(s.Cookies)
}

// ButtonsFound returns the number of button detections observed.
func (s *SiteSummary) ButtonsFound() int {
	return len(s.Buttons)
}

// CategoryCounts tallies buttons per category.
func (s *SiteSummary) CategoryCounts() map[ButtonCategory]int {
	counts := make(map[ButtonCategory]int)
	for _, b := range s.Buttons {
		counts[b.Category]++
	}

	return counts
}

// TCFDetected reports whether the IAB TCF API was seen. An absent signal
// means not detected.
func (s *SiteSummary) TCFDetected() bool {
	return s.TCF != nil && s.TCF.APIDetected
}
