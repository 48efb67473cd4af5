package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel      = "info"
	DefaultJSONLog       = false
	DefaultDataDir       = "data"
	DefaultDBPath        = "tenders.db"
	DefaultHeadless      = true
	DefaultUserAgent     = "TenderScrape/1.0"
	DefaultScrapeTimeout = 10 * time.Minute
	DefaultStagger       = 5 * time.Second
)
