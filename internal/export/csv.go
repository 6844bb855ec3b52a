// Package export serializes built datasets into the flat output files
// consumed downstream: per-region CSV tables, Excel analysis workbooks,
// and a markdown comparison report.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"consentobs/internal/dataset"
	"consentobs/internal/models"
)

// CSVWriter writes one set of region tables per dataset.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer targeting the given output directory.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// WriteRegion writes the cookies, buttons, cmps, and sites tables for
// one region's dataset.
func (w *CSVWriter) WriteRegion(region string, ds *dataset.Dataset) error {
	if err := w.writeCookies(region, ds); err != nil {
		return err
	}

	if err := w.writeButtons(region, ds); err != nil {
		return err
	}

	if err := w.writeCMPs(region, ds); err != nil {
		return err
	}

	return w.writeSites(region, ds)
}

func (w *CSVWriter) writeCookies(region string, ds *dataset.Dataset) error {
	header := []string{"url", "cookie_name", "domain", "secure", "httpOnly", "sameSite", "session"}

	var rows [][]string

	for _, site := range ds.Summaries() {
		for _, c := range site.Cookies {
			rows = append(rows, []string{
				site.URL,
				c.Name,
				c.Domain,
				strconv.FormatBool(c.Secure),
				strconv.FormatBool(c.HTTPOnly),
				string(c.SameSite),
				strconv.FormatBool(c.Session),
			})
		}
	}

	return w.writeTable(fmt.Sprintf("cookies_%s.csv", region), header, rows)
}

func (w *CSVWriter) writeButtons(region string, ds *dataset.Dataset) error {
	header := []string{"url", "button_text", "html", "is_visible", "category"}

	var rows [][]string

	for _, site := range ds.Summaries() {
		for _, b := range site.Buttons {
			rows = append(rows, []string{
				site.URL,
				b.Text,
				b.HTML,
				strconv.FormatBool(b.IsVisible),
				string(b.Category),
			})
		}
	}

	return w.writeTable(fmt.Sprintf("buttons_%s.csv", region), header, rows)
}

func (w *CSVWriter) writeCMPs(region string, ds *dataset.Dataset) error {
	header := []string{"website_url", "cmp_name"}

	var rows [][]string

	for _, site := range ds.Summaries() {
		for _, c := range site.CMPs {
			rows = append(rows, []string{site.URL, c.Name})
		}
	}

	return w.writeTable(fmt.Sprintf("cmps_%s.csv", region), header, rows)
}

func (w *CSVWriter) writeSites(region string, ds *dataset.Dataset) error {
	header := []string{"url", "cookies_found", "buttons_found", "has_secure_cookies"}

	var rows [][]string

	for _, site := range ds.Summaries() {
		rows = append(rows, []string{
			site.URL,
			strconv.Itoa(site.CookiesFound()),
			strconv.Itoa(site.ButtonsFound()),
			strconv.FormatBool(site.HasSecureCookies()),
		})
	}

	return w.writeTable(fmt.Sprintf("sites_%s.csv", region), header, rows)
}

// WriteCrawlErrors writes the per-region crawl error log table.
func (w *CSVWriter) WriteCrawlErrors(region string, errs []models.CrawlError) error {
	header := []string{"timestamp", "website_url", "error_type", "error_message", "region"}

	var rows [][]string

	for _, e := range errs {
		rows = append(rows, []string{e.Timestamp, e.URL, e.ErrorType, e.Message, region})
	}

	return w.writeTable(fmt.Sprintf("errors_%s.csv", region), header, rows)
}

func (w *CSVWriter) writeTable(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return nil
}
