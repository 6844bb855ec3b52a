// Package records reads newline-delimited JSON crawl records out of the
// containers the consent-observatory server produces.
package records

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataMemberSuffix is the fixed suffix of the JSONL member the server
// places inside completed result archives.
const DataMemberSuffix = "data.json"

// Scanner buffer sizing. Records can carry full DOM dumps, so single
// lines may run to many megabytes.
const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 32 * 1024 * 1024
)

// ErrNoDataMember is returned when an archive has no member whose name
// ends in DataMemberSuffix.
var ErrNoDataMember = errors.New("no data member found in archive")

// Source yields the raw text lines of one crawl output container in file
// order. Scan may be called again to restart from the beginning; lines
// are streamed, never buffered as a whole.
type Source interface {
	// Name identifies the container, for logging and error messages.
	Name() string
	// Scan calls fn for every non-blank line. Line numbers are physical
	// 1-based positions. A non-nil error from fn stops the scan and is
	// returned as-is.
	Scan(fn func(lineNo int, line string) error) error
}

// ZipSource streams lines from the first data member of a zip archive.
type ZipSource struct {
	path   string
	suffix string
}

// NewZipSource creates a source over the archive at path, locating the
// member by the standard data suffix.
func NewZipSource(path string) *ZipSource {
	return &ZipSource{path: path, suffix: DataMemberSuffix}
}

// Name returns the archive path.
func (z *ZipSource) Name() string {
	return z.path
}

// Scan streams the data member line by line. Decompression is streaming,
// so archives larger than memory are fine.
func (z *ZipSource) Scan(fn func(lineNo int, line string) error) error {
	archive, err := zip.OpenReader(z.path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", z.path, err)
	}
	defer archive.Close()

	var member *zip.File

	for _, f := range archive.File {
		if strings.HasSuffix(f.Name, z.suffix) {
			member = f
			break
		}
	}

	if member == nil {
		return fmt.Errorf("%w: %s (want member suffix %q)", ErrNoDataMember, z.path, z.suffix)
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open member %s: %w", member.Name, err)
	}
	defer rc.Close()

	return scanLines(bufio.NewScanner(rc), fn)
}

// FileSource streams lines from a plain JSONL file.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the JSONL file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (f *FileSource) Name() string {
	return f.path
}

// Scan streams the file line by line.
func (f *FileSource) Scan(fn func(lineNo int, line string) error) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", f.path, err)
	}
	defer file.Close()

	return scanLines(bufio.NewScanner(file), fn)
}

// Open picks the source type from the file extension.
func Open(path string) Source {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return NewZipSource(path)
	}

	return NewFileSource(path)
}

func scanLines(scanner *bufio.Scanner, fn func(lineNo int, line string) error) error {
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := fn(lineNo, line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read lines: %w", err)
	}

	return nil
}
