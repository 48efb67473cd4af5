package cgi

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// parseTable extracts tender records from the opportunity table. The first
// row is the header; column 2 holds the title and column 4 the closing date.
// Rows without a title are skipped and duplicate titles collapse.
func parseTable(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse table HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}

		title := strings.TrimSpace(row.Find("td:nth-child(2)").First().Text())
		if title == "" {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}

		deadline := strings.TrimSpace(row.Find("td:nth-child(4)").First().Text())

		records = append(records, models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         strings.TrimSpace(row.Find("a").First().AttrOr("href", "")),
		})
	})
	return records
}
