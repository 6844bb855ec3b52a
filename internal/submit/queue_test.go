package submit

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestQueueWriter_Enqueue(t *testing.T) {
	q := NewQueueWriter(t.TempDir())

	job := PendingJob{
		SubmittedAt: time.Now().UTC(),
		ServerURL:   "http://localhost:5173",
		Email:       "researcher@example.com",
		Ruleset:     "Scrape-O-Matic Data Gatherers",
		URLs:        []string{"https://a.com", "https://b.com"},
	}

	path, err := q.Enqueue(job)
	if err != nil {
		t.Fatalf("Enqueue returned unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read queue file: %v", err)
	}

	var restored PendingJob
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("queue file is not valid JSON: %v", err)
	}

	if restored.Email != job.Email {
		t.Errorf("Email = %q, want %q", restored.Email, job.Email)
	}

	if len(restored.URLs) != 2 {
		t.Errorf("got %d URLs, want 2", len(restored.URLs))
	}
}

func TestQueueWriter_List(t *testing.T) {
	q := NewQueueWriter(t.TempDir())

	if files, err := q.List(); err != nil || len(files) != 0 {
		t.Fatalf("empty queue: files=%v err=%v", files, err)
	}

	for i := range 3 {
		_, err := q.Enqueue(PendingJob{
			SubmittedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
			URLs:        []string{"https://a.com"},
		})
		if err != nil {
			t.Fatalf("Enqueue returned unexpected error: %v", err)
		}
	}

	files, err := q.List()
	if err != nil {
		t.Fatalf("List returned unexpected error: %v", err)
	}

	if len(files) != 3 {
		t.Errorf("got %d queued jobs, want 3", len(files))
	}
}
