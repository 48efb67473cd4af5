// Package adm scrapes the ADM (Autoroutes du Maroc) procurement portal. The
// portal is an ASP.NET site that finishes login and search asynchronously
// with no reliable completion signal, hence the fixed settle delays.
package adm

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
	scraperID = "adm"

	entryURL   = "https://achats.adm.co.ma/?page=entreprise.EntrepriseHome&goto="
	listingURL = "https://achats.adm.co.ma/?page=entreprise.EntrepriseAdvancedSearch&AllCons&searchAnnCons"

	modalCloseSel   = "#modalADM > div > div > div.modal-footer > button"
	loginSel        = "#ctl0_CONTENU_PAGE_login"
	passwordSel     = "#ctl0_CONTENU_PAGE_password"
	submitSel       = "#ctl0_CONTENU_PAGE_authentificationButton"
	containerSel    = "#tabNav > div.p-2 > div.content"
	loginSettle     = 10 * time.Second
	listingSettle   = 10 * time.Second
	selectorTimeout = 60 * time.Second

	// Card positions holding tender entries on the first results page,
	// established empirically; the surrounding children are chrome.
	firstCardIndex = 2
	lastCardIndex  = 7
)

// Scraper drives one ADM run.
type Scraper struct {
	deps scraper.Deps
}

// New builds the ADM scraper.
func New(deps scraper.Deps) *Scraper {
	return &Scraper{deps: deps}
}

func (s *Scraper) ID() string   { return scraperID }
func (s *Scraper) Site() string { return dedup.SiteNameFor(scraperID) }

// Scrape authenticates, pulls the first results page and exports whatever is
// new. Authentication failures are returned to the caller; an empty results
// page is a valid run.
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

	// The portal finishes authentication asynchronously.
	session.Settle(loginSettle)
	session.Screenshot("post_login")

	log.Info().Str("scraper", scraperID).Msg("Navigating to tender listing")
	if err := session.Navigate(listingURL, selectorTimeout); err != nil {
		session.Screenshot("error")
		return nil, err
	}
	session.Settle(listingSettle)
	session.Screenshot("post_navigation")

	if err := session.WaitVisible(containerSel, selectorTimeout); err != nil {
		// Zero results renders no container at all; not a failure.
		log.Warn().Err(err).Str("scraper", scraperID).Msg("Results container never appeared, treating as empty listing")
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
