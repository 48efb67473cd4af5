// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tender-radar/tenderscrape/internal/config"
	"github.com/tender-radar/tenderscrape/internal/creds"
	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/export"
	"github.com/tender-radar/tenderscrape/internal/scraper"
	"github.com/tender-radar/tenderscrape/internal/scraper/adm"
	"github.com/tender-radar/tenderscrape/internal/scraper/cgi"
	"github.com/tender-radar/tenderscrape/internal/scraper/marchespublics"
	"github.com/tender-radar/tenderscrape/internal/scraper/marsamaroc"
	"github.com/tender-radar/tenderscrape/internal/scraper/offresonline"
	"github.com/tender-radar/tenderscrape/internal/scraper/royalairmaroc"
	"github.com/tender-radar/tenderscrape/internal/store"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Store    *store.DB
	Gateway  *dedup.Gateway
	Sink     *export.Sink
	Creds    creds.Source
	scrapers map[string]scraper.SiteScraper

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// The tender store is opened fail-open: if the database cannot be opened the
// application still works, with deduplication and run bookkeeping disabled.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	var db *store.DB
	if cfg.DBPath != "" {
		var err error
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.DBPath).
				Msg("Tender store unavailable, continuing without deduplication")
			db = nil
		} else {
			logger.Debug().Str("path", cfg.DBPath).Msg("Tender store opened")
		}
	}

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Store:     db,
		Sink:      export.NewSink(cfg.DataDir),
		Creds:     &creds.LayeredSource{FromConfig: cfg.Credentials},
		startTime: time.Now(),
	}
	if db != nil {
		app.Gateway = dedup.NewGateway(db)
	} else {
		app.Gateway = dedup.NewGateway(nil)
	}

	deps := scraper.Deps{
		Gateway:     app.Gateway,
		Sink:        app.Sink,
		Credentials: app.Creds,
		Headless:    cfg.Headless,
		ChromePath:  cfg.ChromePath,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.ScrapeTimeout,
	}
	app.scrapers = map[string]scraper.SiteScraper{}
	for _, sc := range []scraper.SiteScraper{
		adm.New(deps),
		cgi.New(deps),
		marchespublics.New(deps),
		marsamaroc.New(deps),
		offresonline.New(deps),
		royalairmaroc.New(deps),
	} {
		app.scrapers[sc.ID()] = sc
	}

	logger.Info().Int("scrapers", len(app.scrapers)).Msg("Application initialized successfully")
	return app, nil
}

// Scraper returns the scraper registered under id.
func (a *Application) Scraper(id string) (scraper.SiteScraper, bool) {
	sc, ok := a.scrapers[id]
	return sc, ok
}

// ScraperIDs returns all registered scraper ids, sorted.
func (a *Application) ScraperIDs() []string {
	ids := make([]string, 0, len(a.scrapers))
	for id := range a.scrapers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close gracefully shuts down the application and all its resources.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing tender store")
		}
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// initLogger configures the global zerolog output from config: console or
// JSON to stderr, optionally teed into a size-rotated log file.
func initLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}

	if cfg.LogFile != "" {
		fileSink := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		logWriter = io.MultiWriter(logWriter, fileSink)
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("file", cfg.LogFile).
		Msg("Logger initialized")
	return logger
}
