package submit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"consentobs/pkg/utils"
)

// ErrNoWebsites is returned when a website list file contains no usable
// domains.
var ErrNoWebsites = errors.New("no websites found in file")

// ReadWebsiteList reads domains from a CSV website list. Rows are
// either "rank,domain" (Tranco style) or a bare domain per line; the
// domains are returned as https URLs. A positive limit caps the result.
func ReadWebsiteList(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open website list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse website list: %w", err)
	}

	var urls []string

	for _, row := range rows {
		domain := ""

		if len(row) >= 2 {
			domain = row[1]
		} else if len(row) == 1 {
			domain = row[0]
		}

		domain = strings.TrimSpace(domain)
		if domain == "" {
			continue
		}

		urls = append(urls, utils.EnsureScheme(domain))

		if limit > 0 && len(urls) >= limit {
			break
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWebsites, path)
	}

	return urls, nil
}
