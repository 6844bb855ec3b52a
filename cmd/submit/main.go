// Package main provides the submit command: it reads a website list and
// submits it to the consent-observatory server, queueing the job
// locally when the server cannot be reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"consentobs/internal/config"
	"consentobs/internal/logger"
	"consentobs/internal/submit"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	file := flag.String("file", "", "CSV file with websites (rank,domain or bare domains)")
	limit := flag.Int("limit", 0, "Max number of websites to submit (0 = all)")
	serverURL := flag.String("server", "", "Server base URL override")
	email := flag.String("email", "", "Submission email override")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		cfg.Submission.ServerURL = *serverURL
	}

	if *email != "" {
		cfg.Submission.Email = *email
	}

	log := logger.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format)

	if *file == "" {
		log.Error("Please provide a website list with -file")
		flag.PrintDefaults()
		os.Exit(1)
	}

	urls, err := submit.ReadWebsiteList(*file, *limit)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read website list: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("📍 Submitting %d websites to %s", len(urls), cfg.Submission.ServerURL))

	client := submit.NewClient(cfg.Submission, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Submission.GetSubmissionTimeout())
	defer cancel()

	result, err := client.SubmitWithFallback(ctx, urls)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Submission failed and could not be queued: %v", err))
		os.Exit(1)
	}

	switch result.Path {
	case submit.PathNetwork:
		if result.JobID != "" {
			log.Info(fmt.Sprintf("✅ Job submitted: %s", result.JobID))
		} else {
			log.Info("✅ Job submitted (server returned no job id)")
		}
	case submit.PathFallback:
		log.Warn(fmt.Sprintf("⚠️  Server unreachable, job queued locally: %s", result.QueueFile))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.LoadConfig(path)
}
