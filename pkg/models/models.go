package models

import "strings"

// TenderRecord is one procurement notice extracted from a portal listing.
//
// Records are identified for deduplication by the pair (site, lower-cased
// trimmed title). Links and deadlines are best-effort: portals frequently omit
// them or render them in inconsistent formats, so neither participates in
// identity.
type TenderRecord struct {
	Title        string `json:"title"`
	DeadlineText string `json:"deadline_text,omitempty"`
	DeadlineISO  string `json:"deadline_iso,omitempty"`
	Link         string `json:"link,omitempty"`
}

// HasTitle reports whether the record carries a non-empty title after trimming.
// Records without one are discarded everywhere in the pipeline.
func (r TenderRecord) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// Result summarizes one scraper invocation.
type Result struct {
	// Site is the canonical display name of the portal.
	Site string `json:"site"`
	// Found is the number of records extracted before cross-run deduplication.
	Found int `json:"found"`
	// Records holds only the records not previously seen for this site, in
	// page discovery order.
	Records []TenderRecord `json:"records"`
}

// New returns the number of records that survived deduplication.
func (r *Result) New() int {
	return len(r.Records)
}
