package marchespublics

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// Result cells carry ASP.NET generated ids: a stable prefix, the row index,
// and a stable suffix. Matching on prefix+suffix sidesteps the index.
const (
	titleCellSel    = `[id^="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_"][id$="_panelBlocObjet"]`
	deadlineCellSel = `[id^="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_"][id$="_dateHeureLimiteRemisePlis"]`
)

// parseResults walks the title cells of the results table and pairs each
// with its deadline cell. A row whose deadline cell is absent keeps the
// record with "N/A", matching what the portal renders for open-ended
// consultations. Untitled rows are skipped and duplicate titles collapse.
func parseResults(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse results HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	doc.Find(titleCellSel).Each(func(_ int, cell *goquery.Selection) {
		title := strings.TrimSpace(cell.Text())
		if title == "" {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}

		row := cell.Closest("tr")
		deadline := strings.TrimSpace(row.Find(deadlineCellSel).First().Text())
		if deadline == "" {
			deadline = "N/A"
		}

		records = append(records, models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         strings.TrimSpace(row.Find("a").First().AttrOr("href", "")),
		})
	})
	return records
}
