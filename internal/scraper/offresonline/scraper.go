// Package offresonline scrapes offresonline.com, a tender aggregation
// service. Authentication happens from the public home page; the alert
// listing is then reachable by direct URL.
package offresonline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/browser"
	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/scraper"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

const (
	scraperID = "offresonline"

	entryURL   = "https://offresonline.com/"
	listingURL = "https://offresonline.com/Admin/alert.aspx?i=a&url=5"

	loginNavSel = "#main-nav > ul > li:nth-child(2) > a"
	loginSel    = "#Login"
	passwordSel = "#pwd"
	submitSel   = "#buuuttt"
	tableSel    = "#tableao"

	selectorTimeout = 60 * time.Second
	loginSettle     = 10 * time.Second

	// The alert table shows at most twelve rows per page.
	firstRowIndex = 1
	lastRowIndex  = 12
)

// Scraper drives one offresonline.com run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the Offres Online scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape logs in from the home page, opens the alert listing and reads the
// first page of the table. Login failures are returned; an absent table is
// an empty run.
func (s *Scraper) Scrape(ctx context.Context) (*models.Result, error) {
	cred, err := s.deps.Credentials.Lookup(scraperID)
	if err != nil {
		return nil, err
	}

	shotDir, err := s.deps.Sink.Dir(scraperID)
	if err != nil {
		return nil, err
	}

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:      s.deps.Headless,
		ChromePath:    s.deps.ChromePath,
		UserAgent:     s.deps.UserAgent,
		ScreenshotDir: shotDir,
		Timeout:       s.deps.Timeout,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	log.Info().Str("scraper", scraperID).Str("url", entryURL).Msg("Navigating to home page")
	if err := session.Navigate(entryURL, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}

	// The login form lives behind a nav entry on the home page.
	if err := session.Click(loginNavSel, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, fmt.Errorf("%w: %v", scraper.ErrLoginFailed, err)
	}

	log.Info().Str("scraper", scraperID).Msg("Submitting credentials")
	if err := session.Fill(loginSel, cred.Username, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, fmt.Errorf("%w: %v", scraper.ErrLoginFailed, err)
	}
	if err := session.Fill(passwordSel, cred.Password, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, fmt.Errorf("%w: %v", scraper.ErrLoginFailed, err)
	}
	session.Screenshot("before_login")
	if err := session.Click(submitSel, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, fmt.Errorf("%w: %v", scraper.ErrLoginFailed, err)
	}
	session.Settle(loginSettle)
	session.Screenshot("post_login")

	log.Info().Str("scraper", scraperID).Msg("Navigating to alert listing")
	if err := session.Navigate(listingURL, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}

	if err := session.WaitVisible(tableSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Alert table never appeared, treating as empty listing")
		session.Screenshot("error")
		return &models.Result{Site: s.Site()}, nil
	}
	session.Screenshot("page_before_extraction")

	html, err := session.OuterHTML(tableSel, selectorTimeout)
	if err != nil {
		session.Screenshot("error")
		return nil, err
	}

	extracted := parseTable(html)
	log.Info().Str("scraper", scraperID).Int("extracted", len(extracted)).Msg("Extraction complete")

	newRecords := s.deps.Gateway.FilterNew(ctx, extracted, s.Site())
	if err := s.deps.Sink.Export(scraperID, newRecords); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Export failed")
	}

	return &models.Result{Site: s.Site(), Found: len(extracted), Records: newRecords}, nil
}
