package marsamaroc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

var onclickHrefRe = regexp.MustCompile(`location\.href=['"](.*?)['"]`)

// parseListing extracts tender records from the authenticated home page's
// card container. The deadline lives in a span the portal marks with a
// literal style="display:;" attribute, an artifact of its template engine.
func parseListing(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse listing HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	for idx := firstCardIndex; idx <= lastCardIndex; idx++ {
		card := doc.Find(fmt.Sprintf("div.content > div:nth-child(%d)", idx))
		if card.Length() == 0 {
			continue
		}

		title := strings.TrimSpace(card.Find("div.p-objet").First().Text())
		if title == "" {
			log.Debug().Str("scraper", scraperID).Int("card", idx).Msg("Card has no title, skipping")
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		deadline := strings.TrimSpace(card.Find(`span[style="display:;"]`).First().Text())

		records = append(records, models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         extractLink(card),
		})
	}
	return records
}

func extractLink(card *goquery.Selection) string {
	onclick := card.AttrOr("onclick", "")
	if onclick == "" {
		onclick = card.Find("[onclick]").First().AttrOr("onclick", "")
	}
	if m := onclickHrefRe.FindStringSubmatch(onclick); m != nil {
		return strings.TrimSpace(m[1])
	}
	if href, ok := card.Find("a").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}
