// Package marsamaroc scrapes the Marsa Maroc procurement portal. Same
// ASP.NET stack as ADM, but login success is verifiable: the authenticated
// home page carries an accordion block that never renders for anonymous
// visitors, so a missing block is reported as a login failure rather than an
// empty listing.
package marsamaroc

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
	scraperID = "marsamaroc"

	entryURL = "https://achats.marsamaroc.co.ma/?page=entreprise.EntrepriseHome&goto=%2F%3Fpage%3Dentreprise.EntrepriseAccueilAuthentifie"

	modalCloseSel = "#modalMarsa > div > div > div.modal-footer > button"
	loginSel      = "#ctl0_CONTENU_PAGE_login"
	passwordSel   = "#ctl0_CONTENU_PAGE_password"
	submitSel     = "#ctl0_CONTENU_PAGE_authentificationButton"
	// Accordion block present only after successful authentication.
	authLandmarkSel = "#collapseOne2"
	containerSel    = "#tabNav > div.p-2 > div.content"

	selectorTimeout = 60 * time.Second
	loginSettle     = 10 * time.Second

	firstCardIndex = 2
	lastCardIndex  = 10
)

// Scraper drives one Marsa Maroc run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the Marsa Maroc scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape authenticates and reads the tender cards from the authenticated
// home page. Login failure is an error; an empty card list is a valid run.
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

	log.Info().Str("scraper", scraperID).Str("url", entryURL).Msg("Navigating to login page")
	if err := session.Navigate(entryURL, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}

	session.DismissModal(modalCloseSel, 15*time.Second)

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

	if err := session.WaitVisible(authLandmarkSel, selectorTimeout); err != nil {
		session.Screenshot("login_error")
		return nil, fmt.Errorf("%w: authenticated landmark %q never appeared", scraper.ErrLoginFailed, authLandmarkSel)
	}
	session.Screenshot("post_login")

	if err := session.WaitVisible(containerSel, selectorTimeout); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Tender container never appeared, treating as empty listing")
		session.Screenshot("error")
		return &models.Result{Site: s.Site()}, nil
	}
	session.Screenshot("page_before_extraction")

	html, err := session.OuterHTML(containerSel, selectorTimeout)
	if err != nil {
		session.Screenshot("error")
		return nil, err
	}

	extracted := parseListing(html)
	log.Info().Str("scraper", scraperID).Int("extracted", len(extracted)).Msg("Extraction complete")

	newRecords := s.deps.Gateway.FilterNew(ctx, extracted, s.Site())
	if err := s.deps.Sink.Export(scraperID, newRecords); err != nil {
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Export failed")
	}

	return &models.Result{Site: s.Site(), Found: len(extracted), Records: newRecords}, nil
}
