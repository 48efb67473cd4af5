// Package marchespublics scrapes the Moroccan public procurement portal
// (marchespublics.gov.ma). The portal runs the same ASP.NET stack as ADM but
// its search results come back as a table with generated control ids rather
// than cards. Failures yield an empty result; the portal is public enough
// that a broken run is better retried on the next schedule than surfaced as
// an error.
package marchespublics

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
	scraperID = "marchespublics"

	entryURL = "https://www.marchespublics.gov.ma/index.php?page=entreprise.EntrepriseHome"

	loginSel      = "#ctl0_CONTENU_PAGE_login"
	passwordSel   = "#ctl0_CONTENU_PAGE_password"
	submitSel     = "#ctl0_CONTENU_PAGE_authentificationButton"
	loginErrorSel = ".error-message"
	menuSel       = "#menuAnnonces > li:nth-child(3) > a"
	searchSel     = "#ctl0_CONTENU_PAGE_AdvancedSearch_lancerRecherche"
	tableSel      = "#tabNav > div.ongletLayer > div.content > table"

	selectorTimeout = 60 * time.Second
	settleDelay     = 8 * time.Second
)

// Scraper drives one marchespublics.gov.ma run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the Marchés Publics scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape authenticates, launches an advanced search with default criteria
// and reads the first page of the results table. All failures are logged and
// produce an empty result.
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

	if err := session.Fill(loginSel, cred.Username, selectorTimeout); err != nil {
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

	// The portal re-renders the login page with an error banner on bad
	// credentials instead of redirecting.
	if session.Present(loginErrorSel, 5*time.Second) {
		log.Warn().Str("scraper", scraperID).Msg("Portal rejected credentials")
		session.Screenshot("login_error")
		return empty, nil
	}
	session.Screenshot("post_login")

	log.Info().Str("scraper", scraperID).Msg("Opening advanced search")
	if err := session.Click(menuSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Search menu entry not found")
		session.Screenshot("error")
		return empty, nil
	}
	session.Settle(settleDelay)

	if err := session.Click(searchSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Search launch button not found")
		session.Screenshot("error")
		return empty, nil
	}
	session.Settle(settleDelay)
	session.Screenshot("post_navigation")

	if err := session.WaitVisible(tableSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Results table never appeared")
		session.Screenshot("error")
		return empty, nil
	}
	session.Screenshot("page_before_extraction")

	html, err := session.OuterHTML(tableSel, selectorTimeout)
	if err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Failed to read results table")
		session.Screenshot("error")
		return empty, nil
	}

	extracted := parseResults(html)
	log.Info().Str("scraper", scraperID).Int("extracted", len(extracted)).Msg("Extraction complete")

	newRecords := s.deps.Gateway.FilterNew(ctx, extracted, s.Site())
	if err := s.deps.Sink.Export(scraperID, newRecords); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Export failed")
	}

	return &models.Result{Site: s.Site(), Found: len(extracted), Records: newRecords}, nil
}
