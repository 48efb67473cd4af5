// Package royalairmaroc scrapes the Royal Air Maroc e-sourcing portal. The
// portal is a heavy Dojo application that intermittently serves blank frames
// under load, so the whole scrape is wrapped in a retry loop with generous
// timeouts.
package royalairmaroc

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tender-radar/tenderscrape/internal/browser"
	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/retry"
	"github.com/tender-radar/tenderscrape/internal/scraper"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

const (
	scraperID = "royalairmaroc"

	entryURL = "https://ram-esourcing.royalairmaroc.com/web/login.html"
	// The extracted row links are relative to this host.
	baseURL = "https://ram-esourcing.royalairmaroc.com"

	usernameSel = "#username"
	passwordSel = "#password"
	submitSel   = "#Entrer"
	// Deep link into the RFQ list, buried in a Dojo widget on the landing
	// dashboard.
	rfqLinkSel = "#dijit__WidgetsInTemplateMixin_3 > div > div.frameWidgetContent > div:nth-child(1) > div > table > tbody > tr:nth-child(3) > td:nth-child(2) > a"
	tableSel   = "#chooseRfqFEBean > div > section > div.table-root > table"

	// The Dojo app can take minutes to paint; short timeouts only produce
	// false negatives here.
	selectorTimeout = 180 * time.Second
	settleDelay     = 20 * time.Second

	maxAttempts = 3
	retryDelay  = 10 * time.Second
)

// Scraper drives one Royal Air Maroc e-sourcing run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the Royal Air Maroc scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape runs the full login-and-extract sequence, retrying the whole thing
// on transient failure. Each attempt gets a fresh browser; a half-loaded
// Dojo frame is not recoverable in place.
func (s *Scraper) Scrape(ctx context.Context) (*models.Result, error) {
	var result *models.Result
	err := retry.Do(ctx, retry.Config{MaxAttempts: maxAttempts, Delay: retryDelay}, func() error {
		r, err := s.attempt(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scraper) attempt(ctx context.Context) (*models.Result, error) {
	cred, err := s.deps.Credentials.Lookup(scraperID)
	if err != nil {
		// Missing credentials will not fix themselves between attempts.
		return nil, retry.Permanent{Err: err}
	}

	shotDir, err := s.deps.Sink.Dir(scraperID)
	if err != nil {
		return nil, retry.Permanent{Err: err}
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

	log.Info().Str("scraper", scraperID).Str("url", entryURL).Msg("Navigating to login page")
	if err := session.Navigate(entryURL, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}

	log.Info().Str("scraper", scraperID).Msg("Submitting credentials")
	if err := session.Fill(usernameSel, cred.Username, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}
	if err := session.Fill(passwordSel, cred.Password, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}
	session.Screenshot("before_login")
	if err := session.Click(submitSel, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}
	session.Settle(settleDelay)
	session.Screenshot("post_login")

	log.Info().Str("scraper", scraperID).Msg("Opening RFQ list")
	if err := session.Click(rfqLinkSel, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}
	session.Settle(settleDelay)
	session.Screenshot("post_navigation")

	if err := session.WaitVisible(tableSel, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
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
