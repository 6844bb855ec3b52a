package dataset

import (
	"runtime"
	"sort"
	"sync"

	"consentobs/internal/models"
	"consentobs/internal/records"
)

// workQueueSize bounds the line queue between the single container
// reader and the aggregation workers, keeping memory bounded for very
// large containers.
const workQueueSize = 256

// Builder constructs datasets from record sources. Extraction is
// parallelized at the record level; merging is deferred until all
// workers finish and is ordered by line position, so the final dataset
// content is deterministic regardless of worker scheduling.
type Builder struct {
	aggregator *Aggregator
	workers    int
}

// NewBuilder creates a builder running the given number of aggregation
// workers. A count below 1 uses one worker per CPU.
func NewBuilder(aggregator *Aggregator, workers int) *Builder {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	return &Builder{aggregator: aggregator, workers: workers}
}

type lineJob struct {
	lineNo int
	line   string
}

type lineResult struct {
	lineNo  int
	summary *models.SiteSummary
}

// Build reads every line of the source, aggregates records in parallel,
// and merges them into a dataset. Malformed lines are counted and
// skipped; only a broken container (missing data member, I/O failure)
// is fatal.
func (b *Builder) Build(src records.Source) (*Dataset, error) {
	jobs := make(chan lineJob, workQueueSize)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		results     []lineResult
		parseErrors int
	)

	for range b.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for job := range jobs {
				record, err := records.Parse(job.lineNo, job.line)

				mu.Lock()
				if err != nil {
					parseErrors++
				} else {
					results = append(results, lineResult{
						lineNo:  job.lineNo,
						summary: b.aggregator.Aggregate(record),
					})
				}
				mu.Unlock()
			}
		}()
	}

	scanErr := src.Scan(func(lineNo int, line string) error {
		jobs <- lineJob{lineNo: lineNo, line: line}
		return nil
	})

	close(jobs)
	wg.Wait()

	if scanErr != nil {
		return nil, scanErr
	}

	// Merge in line order so arrival order never matters.
	sort.Slice(results, func(i, j int) bool {
		return results[i].lineNo < results[j].lineNo
	})

	summaries := make([]*models.SiteSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, r.summary)
	}

	ds := buildFromSummaries(summaries)
	ds.parseErrors = parseErrors

	return ds, nil
}

// BuildFromRecords builds a dataset from in-memory records, in order.
func (b *Builder) BuildFromRecords(recs []*models.RawRecord) *Dataset {
	summaries := make([]*models.SiteSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, b.aggregator.Aggregate(rec))
	}

	return buildFromSummaries(summaries)
}

// buildFromSummaries folds per-record summaries into one summary per
// identity. Repeat observations of a site accumulate evidence: cookies
// and CMPs are set-unioned, buttons concatenated in first-seen order.
func buildFromSummaries(summaries []*models.SiteSummary) *Dataset {
	ds := &Dataset{byIdentity: make(map[string]*models.SiteSummary)}

	for _, s := range summaries {
		existing, ok := ds.byIdentity[s.Identity]
		if !ok {
			ds.byIdentity[s.Identity] = s
			ds.summaries = append(ds.summaries, s)

			continue
		}

		mergeSummaries(existing, s)
	}

	return ds
}

// mergeSummaries merges src into dst. The merge is commutative and
// associative over entity content and idempotent for the set-valued
// fields.
func mergeSummaries(dst, src *models.SiteSummary) {
	dst.Cookies = dedupeCookies(append(dst.Cookies, src.Cookies...))
	dst.CMPs = dedupeCMPs(append(dst.CMPs, src.CMPs...))
	dst.Buttons = append(dst.Buttons, src.Buttons...)

	if dst.TCF == nil {
		dst.TCF = src.TCF
	} else if src.TCF != nil && src.TCF.APIDetected {
		dst.TCF = src.TCF
	}
}
