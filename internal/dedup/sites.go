package dedup

// siteNames maps scraper ids to the canonical display names used as the join
// key against the persisted store. Fixed table; discovery is not attempted.
var siteNames = map[string]string{
	"adm":            "ADM - Autoroutes du Maroc",
	"marchespublics": "Marchés Publics",
	"marsamaroc":     "Marsa Maroc",
	"offresonline":   "Offres Online",
	"royalairmaroc":  "Royal Air Maroc",
	"cgi":            "CGI E-Sourcing",
}

// SiteNameFor resolves a scraper id to its canonical site name. Unknown ids
// pass through unchanged.
func SiteNameFor(scraperID string) string {
	if name, ok := siteNames[scraperID]; ok {
		return name
	}
	return scraperID
}
