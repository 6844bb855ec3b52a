// Package models defines data structures shared by the record reader,
// extractors, and aggregation engine.
package models

import (
	"encoding/json"
	"strconv"
)

// RawRecord is one parsed crawl observation: a visited URL plus the raw
// output of every gatherer that ran against it. Gatherer payloads stay
// opaque until an extractor claims them; unknown gatherer keys are kept
// but never interpreted.
type RawRecord struct {
	URL             string                     `json:"url"`
	Time            FlexTime                   `json:"time"`
	RequestStrategy string                     `json:"requestStrategy"`
	Data            map[string]json.RawMessage `json:"data"`
}

// FlexTime holds a record timestamp that servers emit either as a string
// or as a number. It keeps the original textual form.
type FlexTime string

// UnmarshalJSON accepts both string and numeric timestamps.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = FlexTime(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*t = FlexTime(n.String())

	return nil
}

// String returns the textual form of the timestamp.
func (t FlexTime) String() string {
	return string(t)
}

// Unix interprets the timestamp as Unix seconds, returning 0 when the
// value is empty or not numeric.
func (t FlexTime) Unix() int64 {
	v, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return 0
	}

	return v
}
