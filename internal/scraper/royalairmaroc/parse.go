package royalairmaroc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// The RFQ list shows at most twenty rows per page.
const (
	firstRowIndex = 1
	lastRowIndex  = 20
)

// parseTable extracts tender records from the RFQ table. Column classes are
// stable Dojo grid identifiers. Untitled rows are skipped and duplicate
// titles collapse.
func parseTable(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse RFQ table HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	for idx := firstRowIndex; idx <= lastRowIndex; idx++ {
		row := doc.Find(fmt.Sprintf("tbody > tr:nth-child(%d)", idx))
		if row.Length() == 0 {
			continue
		}

		title := strings.TrimSpace(row.Find("td.col_TITLE.tdMedium").First().Text())
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		deadline := strings.TrimSpace(row.Find("td.col_INTEREST_TIME_LIMIT.tdMedium").First().Text())

		records = append(records, models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         cleanLink(row.Find("a").First().AttrOr("href", "")),
		})
	}
	return records
}

// cleanLink rewrites a raw RFQ row href into a stable absolute URL. Row
// links carry a session-scoped tail after the .do action and an /init path
// segment that only resolves inside the session that produced it.
func cleanLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if i := strings.Index(href, ".do"); i >= 0 {
		href = href[:i+len(".do")]
	}
	href = strings.ReplaceAll(href, "/init", "/")
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
