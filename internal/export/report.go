package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"consentobs/internal/dataset"
	"consentobs/internal/formatter"
	"consentobs/internal/models"
	"consentobs/pkg/metadata"
)

// Comparison holds the inputs of a two-region comparison report.
type Comparison struct {
	LeftName  string
	RightName string
	Left      *dataset.Dataset
	Right     *dataset.Dataset
}

// BuildComparisonReport renders a markdown report for two joined
// datasets: per-dataset overviews, button category distributions, the
// matched pairs, and the sites excluded on either side. The report body
// is stamped with a provenance metadata block.
func BuildComparisonReport(cmp Comparison) string {
	pairs := dataset.Join(cmp.Left, cmp.Right)
	onlyLeft := dataset.OnlyIn(cmp.Left, cmp.Right)
	onlyRight := dataset.OnlyIn(cmp.Right, cmp.Left)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Consent comparison: %s vs %s\n\n", cmp.LeftName, cmp.RightName))

	sb.WriteString("## Datasets\n\n")
	sb.WriteString(formatter.Table(
		[]string{"dataset", "sites", "parse errors", "cookies", "buttons", "secure-cookie sites", "tcf sites"},
		[][]string{
			overviewRow(cmp.LeftName, cmp.Left),
			overviewRow(cmp.RightName, cmp.Right),
		},
	))
	sb.WriteString("\n")

	sb.WriteString("## Button categories\n\n")
	sb.WriteString(formatter.Table(
		[]string{"dataset", "accept", "reject", "settings", "unknown"},
		[][]string{
			categoryRow(cmp.LeftName, cmp.Left),
			categoryRow(cmp.RightName, cmp.Right),
		},
	))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("## Matched sites (%d)\n\n", len(pairs)))

	if len(pairs) > 0 {
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			rows = append(rows, []string{
				p.Identity,
				strconv.Itoa(p.Left.CookiesFound()),
				strconv.Itoa(p.Right.CookiesFound()),
				strconv.Itoa(p.Left.ButtonsFound()),
				strconv.Itoa(p.Right.ButtonsFound()),
				strconv.FormatBool(p.Left.HasSecureCookies()),
				strconv.FormatBool(p.Right.HasSecureCookies()),
			})
		}

		sb.WriteString(formatter.Table(
			[]string{
				"site",
				"cookies (" + cmp.LeftName + ")", "cookies (" + cmp.RightName + ")",
				"buttons (" + cmp.LeftName + ")", "buttons (" + cmp.RightName + ")",
				"secure (" + cmp.LeftName + ")", "secure (" + cmp.RightName + ")",
			},
			rows,
		))
		sb.WriteString("\n")
	}

	writeOnlySection(&sb, cmp.LeftName, onlyLeft)
	writeOnlySection(&sb, cmp.RightName, onlyRight)

	sites := cmp.Left.Len() + cmp.Right.Len()
	parseErrors := cmp.Left.ParseErrors() + cmp.Right.ParseErrors()

	return metadata.Sign(sb.String(), sites, parseErrors)
}

// WriteComparisonReport renders the report and writes it to path.
func WriteComparisonReport(path string, cmp Comparison) error {
	content := BuildComparisonReport(cmp)

	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func overviewRow(name string, ds *dataset.Dataset) []string {
	cookies := 0
	buttons := 0
	secureSites := 0
	tcfSites := 0

	for _, s := range ds.Summaries() {
		cookies += s.CookiesFound()
		buttons += s.ButtonsFound()

		if s.HasSecureCookies() {
			secureSites++
		}

		if s.TCFDetected() {
			tcfSites++
		}
	}

	return []string{
		name,
		strconv.Itoa(ds.Len()),
		strconv.Itoa(ds.ParseErrors()),
		strconv.Itoa(cookies),
		strconv.Itoa(buttons),
		strconv.Itoa(secureSites),
		strconv.Itoa(tcfSites),
	}
}

func categoryRow(name string, ds *dataset.Dataset) []string {
	counts := make(map[models.ButtonCategory]int)

	for _, s := range ds.Summaries() {
		for category, n := range s.CategoryCounts() {
			counts[category] += n
		}
	}

	return []string{
		name,
		strconv.Itoa(counts[models.CategoryAccept]),
		strconv.Itoa(counts[models.CategoryReject]),
		strconv.Itoa(counts[models.CategorySettings]),
		strconv.Itoa(counts[models.CategoryUnknown]),
	}
}

func writeOnlySection(sb *strings.Builder, name string, only []*models.SiteSummary) {
	sb.WriteString(fmt.Sprintf("## Only in %s (%d)\n\n", name, len(only)))

	if len(only) == 0 {
		sb.WriteString("(none)\n\n")
		return
	}

	for _, s := range only {
		sb.WriteString("- " + s.Identity + "\n")
	}

	sb.WriteString("\n")
}
