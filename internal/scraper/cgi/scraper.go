// Package cgi scrapes the CGI e-sourcing portal (a Jaggaer instance). Unlike
// the ASP.NET portals this one is best-effort end to end: any failure is
// logged and yields an empty result, because the portal frequently has no
// open opportunities and distinguishing that from breakage is not worth a
// failed run.
package cgi

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/browser"
	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/scraper"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

const (
	scraperID = "cgi"

	entryURL = "https://cgi-esourcing.app.jaggaer.com/web/index.html"

	usernameSel = "#username"
	passwordSel = "#password"
	submitSel   = "#navbarResponsive1 > ul > li > form > fieldset > div:nth-child(3) > input.btn.float-right"
	// The portal shows a warning banner instead of the table when no
	// opportunities are open.
	noResultsSel = "#OpportunityListManager > div > div.Alert.Alert-warning > div > span"
	tableSel     = "table.tender-list"

	selectorTimeout = 60 * time.Second
	settleDelay     = 5 * time.Second
)

// Scraper drives one CGI e-sourcing run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the CGI scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape logs in and reads the opportunity table. Every failure path returns
// an empty result with a nil error.
func (s *Scraper) Scrape(ctx context.Context) (*models.Result, error) {
	empty := &models.Result{Site: s.Site()}

	cred, err := s.deps.Credentials.Lookup(scraperID)
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("No credentials, skipping run")
		return empty, nil
	}

	shotDir, err := s.deps.Sink.Dir(scraperID)
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Export dir unavailable")
		return empty, nil
	}

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:      s.deps.Headless,
		ChromePath:    s.deps.ChromePath,
		UserAgent:     s.deps.UserAgent,
		ScreenshotDir: shotDir,
		Timeout:       s.deps.Timeout,
	})
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Browser unavailable")
		return empty, nil
	}
	defer session.Close()

	log.Info().Str("scraper", scraperID).Str("url", entryURL).Msg("Navigating to login page")
	if err := session.Navigate(entryURL, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Navigation failed")
		session.Screenshot("error")
		return empty, nil
	}

	if err := session.Fill(usernameSel, cred.Username, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Login form not found")
		session.Screenshot("error")
		return empty, nil
	}
	if err := session.Fill(passwordSel, cred.Password, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Password field not found")
		session.Screenshot("error")
		return empty, nil
	}
	session.Screenshot("before_login")
	if err := session.Click(submitSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Login submit failed")
		session.Screenshot("error")
		return empty, nil
	}
	session.Settle(settleDelay)
	session.Screenshot("post_login")

	// Navigation happens by clicking the "Appels d'offres" menu entry; the
	// target URL is session-scoped and cannot be visited directly.
	if err := session.ClickBySearch(`//a[contains(text(), "Appels d'offres")]`, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Opportunities menu entry not found")
		session.Screenshot("error")
		return empty, nil
	}
	session.Settle(settleDelay)
	session.Screenshot("post_navigation")

	if session.Present(noResultsSel, 10*time.Second) {
		log.Info().Str("scraper", scraperID).Msg("Portal reports no open opportunities")
		return empty, nil
	}

	if err := session.WaitVisible(tableSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Opportunity table never appeared")
		session.Screenshot("error")
		return empty, nil
	}
	session.Screenshot("page_before_extraction")

	html, err := session.OuterHTML(tableSel, selectorTimeout)
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to read opportunity table")
		session.Screenshot("error")
		return empty, nil
	}

	extracted := parseTable(html)
	log.Info().Str("scraper", scraperID).Int("extracted", len(extracted)).Msg("Extraction complete")

	newRecords := s.deps.Gateway.FilterNew(ctx, extracted, s.Site())
	if err := s.deps.Sink.Export(scraperID, newRecords); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Export failed")
	}

	return &models.Result{Site: s.Site(), Found: len(extracted), Records: newRecords}, nil
}
