// Package dedup filters freshly scraped tender batches against the persisted
// store. The scraper side of the call is a live browser session, so the
// gateway is strictly fail-open: a missing store, a lookup error, a panic or
// a slow database all degrade to "everything is new" instead of aborting the
// run.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

// Checker is the narrow view of the store the gateway needs.
type Checker interface {
	// SiteID resolves a site by canonical name without creating it.
	SiteID(ctx context.Context, name string) (int64, bool, error)
	// TenderExists reports whether the title is already recorded for the site,
	// compared case-insensitively on the trimmed title.
	TenderExists(ctx context.Context, siteID int64, title string) (bool, error)
}

// Gateway filters new tenders against a Checker. A nil Checker means the
// store is not configured and every batch passes through untouched.
type Gateway struct {
	store   Checker
	timeout time.Duration
}

// DefaultTimeout bounds the store-side filter. A database stall must not
// hold the browser session open indefinitely.
const DefaultTimeout = 15 * time.Second

// NewGateway builds a Gateway. store may be nil.
func NewGateway(store Checker) *Gateway {
	return &Gateway{store: store, timeout: DefaultTimeout}
}

// FilterNew returns the subset of records whose titles are not yet recorded
// for the named site, preserving input order. Records with empty trimmed
// titles are dropped on every path. Store trouble of any kind fails open.
//
// Unknown sites are NOT auto-created here; the save path does get-or-create
// its site, and that asymmetry is preserved as observed in the field.
func (g *Gateway) FilterNew(ctx context.Context, records []models.TenderRecord, siteName string) []models.TenderRecord {
	titled := withTitles(records)

	if g.store == nil {
		log.Warn().Str("site", siteName).Msg("Tender store not configured, skipping deduplication")
		return titled
	}

	type outcome struct {
		kept []models.TenderRecord
		err  error
	}
	ch := make(chan outcome, 1)

	// The store call runs on its own goroutine so that nothing it does can
	// take down the browser-session side: panics are converted to errors and
	// a deadline covers stalls.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("tender store panicked: %v", r)}
			}
		}()
		fctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		kept, err := g.filter(fctx, titled, siteName)
		ch <- outcome{kept: kept, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			log.Warn().Err(o.err).Str("site", siteName).
				Msg("Deduplication failed, returning all records as new")
			return titled
		}
		log.Info().
			Str("site", siteName).
			Int("extracted", len(titled)).
			Int("new", len(o.kept)).
			Int("existing", len(titled)-len(o.kept)).
			Msg("Deduplication complete")
		return o.kept
	case <-time.After(g.timeout + time.Second):
		log.Warn().Str("site", siteName).Msg("Deduplication timed out, returning all records as new")
		return titled
	}
}

func (g *Gateway) filter(ctx context.Context, records []models.TenderRecord, siteName string) ([]models.TenderRecord, error) {
	siteID, ok, err := g.store.SiteID(ctx, siteName)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn().Str("site", siteName).
			Msg("Site not found in store, treating all records as new")
		return records, nil
	}

	kept := make([]models.TenderRecord, 0, len(records))
	for _, rec := range records {
		exists, err := g.store.TenderExists(ctx, siteID, rec.Title)
		if err != nil {
			return nil, err
		}
		if !exists {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

func withTitles(records []models.TenderRecord) []models.TenderRecord {
	kept := make([]models.TenderRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasTitle() {
			kept = append(kept, rec)
		}
	}
	return kept
}
