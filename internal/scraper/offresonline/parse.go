package offresonline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// Row clicks go through window.location or window.open depending on the
// alert kind.
var (
	windowLocationRe = regexp.MustCompile(`window\.location\s*=\s*'([^']+)'`)
	windowOpenRe     = regexp.MustCompile(`window\.open\s*\(\s*'([^']+)'`)
)

// parseTable extracts tender records from the alert table. Rows are probed
// by fixed position; the title sits in the second cell and the deadline in
// bold inside the third. Untitled rows are skipped and duplicate titles
// collapse.
func parseTable(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse alert table HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	for idx := firstRowIndex; idx <= lastRowIndex; idx++ {
		row := doc.Find(fmt.Sprintf("tr:nth-child(%d)", idx))
		if row.Length() == 0 {
			continue
		}

		title := strings.TrimSpace(row.Find("td:nth-child(2)").First().Text())
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		deadline := strings.TrimSpace(row.Find("td:nth-child(3) b").First().Text())

		records = append(records, models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         extractLink(row),
		})
	}
	return records
}

func extractLink(row *goquery.Selection) string {
	onclick := row.AttrOr("onclick", "")
	if onclick == "" {
		onclick = row.Find("[onclick]").First().AttrOr("onclick", "")
	}
	if m := windowLocationRe.FindStringSubmatch(onclick); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := windowOpenRe.FindStringSubmatch(onclick); m != nil {
		return strings.TrimSpace(m[1])
	}
	if href, ok := row.Find("a").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}
