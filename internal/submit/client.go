// Package submit sends website lists to the consent-observatory server
// for crawling, falling back to a local pending-job queue when the
// server cannot be reached.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consentobs/internal/config"
	"consentobs/internal/logger"
)

// ErrSubmissionFailed is returned when no configured port accepted the
// submission.
var ErrSubmissionFailed = errors.New("submission failed on all ports")

// Path tells the caller which way a submission went. The fallback path
// means nothing reached the server; the caller must not treat the job
// as submitted.
type Path string

// Submission paths.
const (
	PathNetwork  Path = "network"
	PathFallback Path = "fallback"
)

// Result describes the outcome of one submission.
type Result struct {
	JobID     string
	Path      Path
	QueueFile string
}

// Client submits website lists for analysis.
type Client struct {
	cfg        config.SubmissionConfig
	httpClient *http.Client
	queue      *QueueWriter
	logger     *logger.Logger
}

// NewClient creates a submission client from config.
func NewClient(cfg config.SubmissionConfig, log *logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Retry.GetTimeout(),
		},
		queue:  NewQueueWriter(cfg.QueueDir),
		logger: log,
	}
}

// Submit posts the website list to the server, trying each configured
// port in order with the configured retry policy. Only a response the
// server acknowledged counts as success.
func (c *Client) Submit(ctx context.Context, urls []string) (*Result, error) {
	scheme, host, port, err := c.serverAddress()
	if err != nil {
		return nil, err
	}

	ports := c.cfg.Ports
	if port != 0 {
		ports = []int{port}
	}

	form := c.buildForm(urls)

	var lastErr error

	for _, p := range ports {
		jobID, err := c.submitOnPort(ctx, scheme, host, p, form)
		if err != nil {
			c.logger.Debug("submission attempt failed", "port", p, "error", err)
			lastErr = err

			continue
		}

		return &Result{JobID: jobID, Path: PathNetwork}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, lastErr)
	}

	return nil, ErrSubmissionFailed
}

// SubmitWithFallback submits over the network and, when that fails,
// persists a pending-job descriptor to the local queue. The result's
// Path reports which of the two happened.
func (c *Client) SubmitWithFallback(ctx context.Context, urls []string) (*Result, error) {
	result, err := c.Submit(ctx, urls)
	if err == nil {
		return result, nil
	}

	c.logger.Warn("submission failed, writing pending job to local queue", "error", err)

	queueFile, queueErr := c.queue.Enqueue(PendingJob{
		SubmittedAt: time.Now().UTC(),
		ServerURL:   c.cfg.ServerURL,
		Email:       c.cfg.Email,
		Ruleset:     c.cfg.Ruleset,
		URLs:        urls,
	})
	if queueErr != nil {
		return nil, fmt.Errorf("failed to enqueue after %v: %w", err, queueErr)
	}

	return &Result{Path: PathFallback, QueueFile: queueFile}, nil
}

// serverAddress splits the configured base URL. A port of 0 means the
// URL named none and the configured port list applies.
func (c *Client) serverAddress() (scheme, host string, port int, err error) {
	parsed, err := url.Parse(c.cfg.ServerURL)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid server URL: %w", err)
	}

	scheme = parsed.Scheme
	if scheme == "" {
		scheme = "http"
	}

	host = parsed.Hostname()
	if host == "" {
		host = "localhost"
	}

	if p := parsed.Port(); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return scheme, host, port, nil
}

// buildForm assembles the submission form, enabling every configured
// gatherer option.
func (c *Client) buildForm(urls []string) url.Values {
	form := url.Values{}
	form.Set("email", c.cfg.Email)
	form.Set("urls", strings.Join(urls, "\n"))
	form.Set("rulesetName", c.cfg.Ruleset)

	for _, gatherer := range c.cfg.Gatherers {
		form.Set("rulesetOption."+gatherer, "true")
	}

	form.Set("rulesetOption.skipWaiting", "false")

	return form
}

func (c *Client) submitOnPort(ctx context.Context, scheme, host string, port int, form url.Values) (string, error) {
	origin := fmt.Sprintf("%s://%s", scheme, host)
	if port != 80 && port != 443 {
		origin = fmt.Sprintf("%s:%d", origin, port)
	}

	endpoint := origin + "/analysis/new"

	var lastErr error

	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if delay := c.cfg.Retry.GetRetryDelay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		jobID, err := c.post(ctx, origin, endpoint, form)
		if err == nil {
			return jobID, nil
		}

		lastErr = err
	}

	return "", lastErr
}

func (c *Client) post(ctx context.Context, origin, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", endpoint)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return extractJobID(body), nil
}

// extractJobID pulls the job identifier out of the response, tolerating
// the field names and shapes different server versions use.
func extractJobID(body []byte) string {
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}

	for _, key := range []string{"jobId", "job_id", "id", "job"} {
		raw, ok := resp[key]
		if !ok {
			continue
		}

		var nested struct {
			ID json.RawMessage `json:"id"`
		}

		if err := json.Unmarshal(raw, &nested); err == nil && len(nested.ID) > 0 {
			raw = nested.ID
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}

		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}

	return ""
}
