package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"consentobs/internal/dataset"
)

// Excel output file names, one workbook per analysis table.
const (
	cookiesWorkbook = "cookies.xlsx"
	buttonsWorkbook = "buttons.xlsx"
	sitesWorkbook   = "sites_summary.xlsx"

	sheetName = "Data"
)

// ExcelWriter writes the analysis workbooks for one dataset.
type ExcelWriter struct {
	dir string
}

// NewExcelWriter creates a writer targeting the given directory.
func NewExcelWriter(dir string) *ExcelWriter {
	return &ExcelWriter{dir: dir}
}

// WriteAnalysis writes cookies.xlsx, buttons.xlsx, and
// sites_summary.xlsx for the dataset. Empty tables are skipped rather
// than written as header-only workbooks.
func (w *ExcelWriter) WriteAnalysis(ds *dataset.Dataset) error {
	cookieRows := [][]any{}
	buttonRows := [][]any{}
	siteRows := [][]any{}

	for _, site := range ds.Summaries() {
		for _, c := range site.Cookies {
			cookieRows = append(cookieRows, []any{
				site.URL, c.Name, c.Domain, c.Secure, c.HTTPOnly, string(c.SameSite), c.Session,
			})
		}

		for _, b := range site.Buttons {
			buttonRows = append(buttonRows, []any{
				site.URL, b.Text, b.HTML, b.IsVisible, string(b.Category),
			})
		}

		siteRows = append(siteRows, []any{
			site.URL, site.CookiesFound(), site.ButtonsFound(), site.HasSecureCookies(),
		})
	}

	workbooks := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{
			name:   cookiesWorkbook,
			header: []any{"url", "cookie_name", "domain", "secure", "httpOnly", "sameSite", "session"},
			rows:   cookieRows,
		},
		{
			name:   buttonsWorkbook,
			header: []any{"url", "button_text", "html", "is_visible", "category"},
			rows:   buttonRows,
		},
		{
			name:   sitesWorkbook,
			header: []any{"url", "cookies_found", "buttons_found", "has_secure_cookies"},
			rows:   siteRows,
		},
	}

	for _, wb := range workbooks {
		if len(wb.rows) == 0 {
			continue
		}

		if err := w.writeWorkbook(wb.name, wb.header, wb.rows); err != nil {
			return err
		}
	}

	return nil
}

func (w *ExcelWriter) writeWorkbook(name string, header []any, rows [][]any) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}

		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(w.dir, name)
	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}
