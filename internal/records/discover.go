package records

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Input file naming produced by the crawl runners: one data file and one
// optional error log per region.
const (
	dataFilePrefix  = "tranco-"
	errorFilePrefix = "errors-"
)

// RegionFiles points at the input files belonging to one crawl region.
type RegionFiles struct {
	Region     string
	DataPath   string
	ErrorsPath string
}

// DiscoverRegions scans dir for tranco-<region>.json/.zip data files and
// their matching errors-<region>.json logs. Regions are returned sorted
// by name; regions without a data file are skipped.
func DiscoverRegions(dir string) ([]RegionFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	byRegion := make(map[string]*RegionFiles)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		switch {
		case strings.HasPrefix(stem, dataFilePrefix) && (ext == ".json" || ext == ".zip"):
			region := strings.TrimPrefix(stem, dataFilePrefix)
			rf := regionEntry(byRegion, region)
			// Prefer the plain JSONL file when both exist.
			if rf.DataPath == "" || ext == ".json" {
				rf.DataPath = filepath.Join(dir, name)
			}
		case strings.HasPrefix(stem, errorFilePrefix) && ext == ".json":
			region := strings.TrimPrefix(stem, errorFilePrefix)
			regionEntry(byRegion, region).ErrorsPath = filepath.Join(dir, name)
		}
	}

	var regions []RegionFiles

	for _, rf := range byRegion {
		if rf.DataPath == "" {
			continue
		}

		regions = append(regions, *rf)
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Region < regions[j].Region
	})

	return regions, nil
}

func regionEntry(byRegion map[string]*RegionFiles, region string) *RegionFiles {
	rf, ok := byRegion[region]
	if !ok {
		rf = &RegionFiles{Region: region}
		byRegion[region] = rf
	}

	return rf
}
