// Package browser owns the chromedp scaffolding shared by the portal
// scrapers: an ephemeral headless session with a fresh profile per run,
// bounded waits, and best-effort checkpoint screenshots.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures one browser session.
type Options struct {
	// Headless controls whether the browser window is shown.
	Headless bool
	// ChromePath overrides Chrome discovery; empty means FindChrome.
	ChromePath string
	// UserAgent sent with every request.
	UserAgent string
	// ScreenshotDir receives checkpoint screenshots; empty disables them.
	ScreenshotDir string
	// Timeout bounds the whole session.
	Timeout time.Duration
}

// DefaultUserAgent identifies the scraper politely; the portals do not
// fingerprint it.
const DefaultUserAgent = "TenderScrape/1.0"

// Session is one isolated browser run. Cookie and storage state start empty
// every time; sessions are never reused across runs.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	shotDir string
}

// NewSession starts a fresh browser. Close must be called to tear it down.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	ctx, cancel := context.WithTimeout(parent, opts.Timeout)
	cancels := []context.CancelFunc{cancel}

	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(opts.UserAgent),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	cancels = append(cancels, allocCancel)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancels = append(cancels, browserCancel)

	// Starting the browser eagerly surfaces launch failures here instead of
	// in the middle of the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{ctx: browserCtx, cancels: cancels, shotDir: opts.ScreenshotDir}, nil
}

// Ctx exposes the browser context for direct chromedp use.
func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Close tears the browser down.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Run executes actions with a bounded sub-timeout.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads a URL.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	if err := s.Run(timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector is visible or the timeout elapses.
func (s *Session) WaitVisible(sel string, timeout time.Duration) error {
	if err := s.Run(timeout, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("selector %q did not appear: %w", sel, err)
	}
	return nil
}

// Fill types a value into an input field.
func (s *Session) Fill(sel, value string, timeout time.Duration) error {
	if err := s.Run(timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to fill %q: %w", sel, err)
	}
	return nil
}

// Click clicks the first element matching sel.
func (s *Session) Click(sel string, timeout time.Duration) error {
	if err := s.Run(timeout, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %q: %w", sel, err)
	}
	return nil
}

// ClickBySearch clicks the first element matching an XPath or text query.
func (s *Session) ClickBySearch(query string, timeout time.Duration) error {
	if err := s.Run(timeout, chromedp.Click(query, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to click %q: %w", query, err)
	}
	return nil
}

// Present reports whether at least one element matches sel right now,
// without waiting for one to appear.
func (s *Session) Present(sel string, timeout time.Duration) bool {
	var nodes []*cdp.Node
	err := s.Run(timeout, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	return err == nil && len(nodes) > 0
}

// DismissModal clicks a blocking popup's close button if the popup is there.
// Absence is not an error; several portals show the modal intermittently.
func (s *Session) DismissModal(closeSel string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(closeSel, chromedp.ByQuery),
		chromedp.Click(closeSel, chromedp.ByQuery),
	); err != nil {
		log.Debug().Str("selector", closeSel).Msg("No blocking modal to dismiss")
		return
	}
	log.Debug().Str("selector", closeSel).Msg("Blocking modal dismissed")
}

// OuterHTML returns the rendered HTML of the first element matching sel.
func (s *Session) OuterHTML(sel string, timeout time.Duration) (string, error) {
	var html string
	if err := s.Run(timeout, chromedp.OuterHTML(sel, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", sel, err)
	}
	return html, nil
}

// Settle sleeps for a fixed duration inside the browser context. Several
// portals finish async work with no reliable completion signal, leaving a
// hard wait as the only dependable strategy.
func (s *Session) Settle(d time.Duration) {
	_ = chromedp.Run(s.ctx, chromedp.Sleep(d))
}

// Screenshot captures a checkpoint screenshot. Best-effort: failures are
// logged and swallowed, and it is a no-op without a screenshot dir.
func (s *Session) Screenshot(name string) {
	if s.shotDir == "" {
		return
	}
	var buf []byte
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		log.Debug().Err(err).Str("checkpoint", name).Msg("Screenshot capture failed")
		return
	}
	path := filepath.Join(s.shotDir, name+".png")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Screenshot write failed")
	}
}
