package models

// CrawlError is one entry from a crawl-time error log (errors-*.json).
// These records describe sites the crawler could not visit and are kept
// separate from the per-site summaries.
type CrawlError struct {
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	ErrorType string `json:"errorType"`
	Message   string `json:"error"`
	Region    string `json:"region,omitempty"`
}
