package submit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PendingJob is the descriptor persisted when a submission could not
// reach the server, so the job can be retried later.
type PendingJob struct {
	SubmittedAt time.Time `json:"submittedAt"`
	ServerURL   string    `json:"serverUrl"`
	Email       string    `json:"email"`
	Ruleset     string    `json:"ruleset"`
	URLs        []string  `json:"urls"`
}

// QueueWriter persists pending jobs into a well-known directory.
type QueueWriter struct {
	dir string
}

// NewQueueWriter creates a writer targeting the queue directory.
func NewQueueWriter(dir string) *QueueWriter {
	return &QueueWriter{dir: dir}
}

// Enqueue writes the pending-job descriptor and returns its path.
func (q *QueueWriter) Enqueue(job PendingJob) (string, error) {
	if err := os.MkdirAll(q.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create queue directory: %w", err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal pending job: %w", err)
	}

	path := filepath.Join(q.dir, fmt.Sprintf("pending-job-%d.json", job.SubmittedAt.UnixNano()))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write pending job: %w", err)
	}

	return path, nil
}

// List returns the queued pending-job files, oldest first.
func (q *QueueWriter) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(q.dir, "pending-job-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	return matches, nil
}
