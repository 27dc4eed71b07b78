package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/dustin/go-humanize"
)

// FormatCatalog lists the known programs and academic years.
func FormatCatalog(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(SourceBadge(c.IsFallback))
	if c.IsFallback {
		b.WriteString(Dim("  category source not found, using built-in lists"))
	}
	b.WriteString("\n\n")

	b.WriteString(Header(fmt.Sprintf("Programs (%d)", len(c.Programs))))
	b.WriteString("\n")
	for _, p := range c.Programs {
		b.WriteString("  " + StyleFg.Render(p) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(Header(fmt.Sprintf("Academic years (%d)", len(c.Years))))
	b.WriteString("\n")
	for _, y := range c.Years {
		b.WriteString("  " + StyleFg.Render(y) + "\n")
	}
	return b.String()
}

// FormatImportResult summarizes a finished history import.
func FormatImportResult(res *contract.ImportResult) string {
	content := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s",
		StyleFg.Render("Source:  "), Bold(res.Source),
		StyleFg.Render("Records: "), StyleBlue.Render(humanize.Comma(int64(res.Records))),
		StyleFg.Render("Programs:"), StyleBlue.Render(fmt.Sprint(res.Programs)),
		StyleFg.Render("Years:   "), StyleBlue.Render(fmt.Sprint(res.Years)),
	)
	return RenderBox("History imported", content) + "\n" + Dim("import "+res.ImportID)
}

// FormatHistory renders the stored historical records with a summary line.
func FormatHistory(summary *contract.HistorySummary, records []domain.HistoricalRecord) string {
	if summary.Records == 0 {
		return Dim("No history imported. Run 'polipredict history import FILE'.") + "\n"
	}

	var b strings.Builder
	b.WriteString(Header("History"))
	b.WriteString("\n")
	if last := summary.LastImport; last != nil {
		b.WriteString(fmt.Sprintf("%s records from %s, imported %s\n\n",
			humanize.Comma(int64(summary.Records)), Bold(last.Source), Timestamp(last.ImportedAt)))
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{TruncID(r.ID), r.Program, r.AcademicYear})
	}
	b.WriteString(RenderTable([]string{"ID", "PROGRAM", "YEAR"}, rows))
	return b.String()
}
