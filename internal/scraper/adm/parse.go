package adm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// onclickHrefRe pulls the target URL out of the card's inline
// location.href handler.
var onclickHrefRe = regexp.MustCompile(`location\.href\s*=\s*['"]([^'"]+)['"]`)

// objetLabelRe strips the leading "Objet:" label the card prepends to the
// tender title.
var objetLabelRe = regexp.MustCompile(`(?s)^\s*Objet\s*:?\s*`)

// parseListing extracts tender records from the rendered results container.
// Cards are fixed-position children; an absent position just means fewer
// results on the page. A card without a title is skipped, and duplicate
// titles within one page are collapsed.
func parseListing(html string) []models.TenderRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to parse results HTML")
		return nil
	}

	var records []models.TenderRecord
	seen := make(map[string]struct{})

	for idx := firstCardIndex; idx <= lastCardIndex; idx++ {
		card := doc.Find(fmt.Sprintf("div.content > div:nth-child(%d)", idx))
		if card.Length() == 0 {
			continue
		}

		title := cleanTitle(card.Find("div.info.p-card div.p-objet").First().Text())
		if title == "" {
			log.Debug().Str("scraper", scraperID).Int("card", idx).Msg("Card has no title, skipping")
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		deadline := cleanDeadline(card.Find("div.leftColumn div.limita").First())

		rec := models.TenderRecord{
			Title:        title,
			DeadlineText: deadline,
			DeadlineISO:  dateparse.Normalize(deadline),
			Link:         extractLink(card),
		}
		records = append(records, rec)
	}
	return records
}

func cleanTitle(text string) string {
	text = objetLabelRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// cleanDeadline prefers the span inside the deadline block; when the span is
// missing the block's own text carries the date behind a label.
func cleanDeadline(block *goquery.Selection) string {
	if block.Length() == 0 {
		return ""
	}
	text := block.Find("span").First().Text()
	if strings.TrimSpace(text) == "" {
		text = block.Text()
	}
	text = strings.ReplaceAll(text, "Date limite de remise des plis", "")
	return strings.TrimSpace(text)
}

func extractLink(card *goquery.Selection) string {
	if href, ok := card.Find("a").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	onclick := card.AttrOr("onclick", "")
	if onclick == "" {
		onclick = card.Find("[onclick]").First().AttrOr("onclick", "")
	}
	if m := onclickHrefRe.FindStringSubmatch(onclick); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
