// Package scraper defines the contract every portal scraper implements. The
// six portals share only this shape: selectors, waits, index bounds and
// failure policy differ per portal and live with each implementation.
package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/tender-radar/tenderscrape/internal/creds"
	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/export"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

// SiteScraper runs one full scrape against one portal: authenticate,
// navigate, extract, deduplicate, export.
type SiteScraper interface {
	// ID is the scraper's short identifier (also its export directory name).
	ID() string
	// Site is the canonical display site name.
	Site() string
	// Scrape performs one run and returns the records that survived
	// deduplication. A run that legitimately finds nothing returns an empty
	// result and a nil error; zero results is not a failure.
	Scrape(ctx context.Context) (*models.Result, error)
}

// Deps carries the collaborators every portal scraper needs.
type Deps struct {
	Gateway     *dedup.Gateway
	Sink        *export.Sink
	Credentials creds.Source
	Headless    bool
	ChromePath  string
	UserAgent   string
	// Timeout bounds one whole scrape attempt.
	Timeout time.Duration
}

// Shared failure sentinels. Each portal decides which of these it can
// recover from.
var (
	ErrLoginFailed       = errors.New("portal login failed")
	ErrContainerNotFound = errors.New("results container not found")
)
