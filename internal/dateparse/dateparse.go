// Package dateparse converts heterogeneous portal date text into canonical
// ISO dates. Portals return anything from "27/08/2025" to "Ven 05 Sep 2025"
// to "August 27, 2025", so the parser is a fixed-priority pattern table with
// a lax numeric fallback: best-effort coverage beats strict validation, and
// an unparseable date must never abort a scrape.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sentinel values portals use for "no deadline". Matched case-sensitively on
// the trimmed input, like the rest of the system expects.
var noValueSentinels = map[string]struct{}{
	"":              {},
	"N/A":           {},
	"Non spécifiée": {},
}

type pattern struct {
	re *regexp.Regexp
	// parse maps the submatches to (year, month, day). nil means the numeric
	// groups are already (a, b, c) in the order given by order.
	order groupOrder
}

type groupOrder int

const (
	orderDMY groupOrder = iota // day, month, year
	orderYMD                   // year, month, day
	orderDMY2                  // day, month, 2-digit year
	orderFrenchMonth           // day, french month name, year
	orderEnglishMonth          // english month name, day, year
)

var patterns = []pattern{
	{regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), orderDMY},
	{regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`), orderDMY},
	{regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`), orderDMY},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), orderYMD},
	{regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2})`), orderDMY2},
	// French with a leading weekday token, e.g. "Ven 05 Sep 2025".
	{regexp.MustCompile(`\p{L}+\s+(\d{1,2})\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre|jan|fév|mar|avr|jun|jul|aoû|sep|oct|nov|déc)\s+(\d{4})`), orderFrenchMonth},
	// French without the weekday, e.g. "27 août 2025".
	{regexp.MustCompile(`(\d{1,2})\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+(\d{4})`), orderFrenchMonth},
	// English, e.g. "August 27, 2025".
	{regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})`), orderEnglishMonth},
}

var frenchMonths = map[string]int{
	"janvier": 1, "février": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "août": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12,
	"jan": 1, "fév": 2, "mar": 3, "avr": 4,
	"jun": 6, "jul": 7, "aoû": 8,
	"sep": 9, "oct": 10, "nov": 11, "déc": 12,
}

var englishMonths = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

var digitRuns = regexp.MustCompile(`\d+`)

// Normalize converts date text to "YYYY-MM-DD". It returns "" when the text
// carries no recoverable date; callers treat that as "deadline unknown".
func Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if _, sentinel := noValueSentinels[trimmed]; sentinel {
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if iso, ok := resolve(p.order, m[1], m[2], m[3]); ok {
			return iso
		}
		// A matched pattern with invalid values falls through to the next
		// one, mirroring a strptime failure.
	}

	return numericFallback(trimmed)
}

func resolve(order groupOrder, a, b, c string) (string, bool) {
	switch order {
	case orderDMY:
		return calendarDate(atoi(c), atoi(b), atoi(a))
	case orderYMD:
		return calendarDate(atoi(a), atoi(b), atoi(c))
	case orderDMY2:
		return calendarDate(expandYear(atoi(c)), atoi(b), atoi(a))
	case orderFrenchMonth:
		month, ok := frenchMonths[b]
		if !ok {
			return "", false
		}
		return formatISO(atoi(c), month, atoi(a)), true
	case orderEnglishMonth:
		month, ok := englishMonths[a]
		if !ok {
			return "", false
		}
		return formatISO(atoi(c), month, atoi(b)), true
	}
	return "", false
}

// numericFallback pulls all digit runs out of the text and interprets the
// first three as day/month/year. Validation is deliberately lax: the day is
// only range-checked against [1,31], not against the month's real length, so
// "31/04/2025" is accepted. Capturing something from messy portal text is
// preferred over rejecting it; the store keeps the raw text alongside.
func numericFallback(text string) string {
	runs := digitRuns.FindAllString(text, -1)
	if len(runs) < 3 {
		return ""
	}
	day, month, year := atoi(runs[0]), atoi(runs[1]), atoi(runs[2])
	if len(runs[2]) == 2 {
		year = expandYear(year)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return ""
	}
	return formatISO(year, month, day)
}

// calendarDate validates the triple against the real calendar (leap years,
// month lengths) and emits it as ISO. time.Date normalizes overflow, so a
// round-trip mismatch means the input was not a legal date.
func calendarDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return formatISO(year, month, day), true
}

// expandYear applies the 2-digit pivot rule: <50 is 2000s, otherwise 1900s.
func expandYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

func formatISO(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
