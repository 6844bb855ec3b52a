package records

import "consentobs/internal/models"

// LoadCrawlErrors reads an errors-*.json log. Malformed lines are
// skipped and counted, matching how record lines are treated.
func LoadCrawlErrors(src Source) ([]models.CrawlError, int, error) {
	var (
		errs    []models.CrawlError
		skipped int
	)

	err := src.Scan(func(lineNo int, line string) error {
		crawlErr, parseErr := ParseCrawlError(lineNo, line)
		if parseErr != nil {
			skipped++
			return nil
		}

		errs = append(errs, *crawlErr)

		return nil
	})
	if err != nil {
		return nil, skipped, err
	}

	return errs, skipped, nil
}
