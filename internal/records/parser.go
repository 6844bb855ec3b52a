package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"consentobs/internal/models"
)

// Record validation errors.
var (
	ErrInvalidJSON = errors.New("line is not valid JSON")
	ErrNotObject   = errors.New("line is not a JSON object")
	ErrMissingURL  = errors.New("record has no url field")
	ErrEmptyLine   = errors.New("line is empty")
)

// ParseError reports one malformed record line. The aggregation driver
// counts these and keeps going; no single bad line aborts a run.
type ParseError struct {
	Line int
	Err  error
}

// Error describes the failure with its line position.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is checks.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses one JSONL line into a RawRecord. It is pure: the same
// line always yields the same record or the same *ParseError.
func Parse(lineNo int, line string) (*models.RawRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &ParseError{Line: lineNo, Err: ErrEmptyLine}
	}

	if line[0] != '{' {
		return nil, &ParseError{Line: lineNo, Err: ErrNotObject}
	}

	var record models.RawRecord
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}

	if record.URL == "" {
		return nil, &ParseError{Line: lineNo, Err: ErrMissingURL}
	}

	return &record, nil
}

// ParseCrawlError parses one line of an errors-*.json log. These logs
// are looser than record files, so only valid JSON is required.
func ParseCrawlError(lineNo int, line string) (*models.CrawlError, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '{' {
		return nil, &ParseError{Line: lineNo, Err: ErrNotObject}
	}

	var crawlErr models.CrawlError
	if err := json.Unmarshal([]byte(line), &crawlErr); err != nil {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}

	return &crawlErr, nil
}
