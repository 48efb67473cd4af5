package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sites (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	url        TEXT NOT NULL DEFAULT '',
	active     INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tenders (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id      INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	title_norm   TEXT NOT NULL,
	deadline     TEXT NOT NULL DEFAULT '',
	deadline_iso TEXT NOT NULL DEFAULT '',
	link         TEXT NOT NULL DEFAULT '',
	scraped_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_tenders_site_title ON tenders(site_id, title_norm);

CREATE TABLE IF NOT EXISTS scrape_logs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id      INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
	status       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	items_found  INTEGER NOT NULL DEFAULT 0,
	items_new    INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_scrape_logs_site_status ON scrape_logs(site_id, status);
`

// DB is a sqlite-backed store.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and applies
// the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Tender store opened")
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (s *DB) Close() error {
	return s.db.Close()
}

// normTitle is the deduplication key for a title. Lower-casing happens in Go
// rather than SQL because sqlite's LOWER() only folds ASCII and titles here
// are full of accented French.
func normTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// SiteID resolves a site by name without creating it. The second return
// reports whether the site exists.
func (s *DB) SiteID(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM sites WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up site %q: %w", name, err)
	}
	return id, true, nil
}

// EnsureSite returns the id of the named site, creating it when absent. The
// boolean reports whether a row was created.
func (s *DB) EnsureSite(ctx context.Context, name, url string) (int64, bool, error) {
	if id, ok, err := s.SiteID(ctx, name); err != nil || ok {
		return id, false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (name, url) VALUES (?, ?)`, name, url)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create site %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	log.Info().Str("site", name).Msg("Site created in store")
	return id, true, nil
}

// Sites returns all persisted sites ordered by name.
func (s *DB) Sites(ctx context.Context) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, active FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		var active int
		if err := rows.Scan(&site.ID, &site.Name, &site.URL, &active); err != nil {
			return nil, err
		}
		site.Active = active != 0
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// LastRun returns the most recent scrape log for a site, if any.
func (s *DB) LastRun(ctx context.Context, siteID int64) (*RunLog, bool, error) {
	var (
		rl          RunLog
		status      string
		startedAt   string
		completedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, site_id, status, started_at, completed_at, items_found, items_new, error
		 FROM scrape_logs WHERE site_id = ? ORDER BY id DESC LIMIT 1`, siteID).
		Scan(&rl.ID, &rl.SiteID, &status, &startedAt, &completedAt, &rl.ItemsFound, &rl.ItemsNew, &rl.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load last run: %w", err)
	}
	rl.Status = RunStatus(status)
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		rl.StartedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			rl.CompletedAt = t
		}
	}
	return &rl, true, nil
}

// TenderExists reports whether a tender with the same case-insensitive
// trimmed title is already recorded for the site.
func (s *DB) TenderExists(ctx context.Context, siteID int64, title string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tenders WHERE site_id = ? AND title_norm = ?`,
		siteID, normTitle(title)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check tender existence: %w", err)
	}
	return n > 0, nil
}

// SaveTenders inserts the records that are not already present for the site
// and returns how many were inserted. Records without a title are skipped.
func (s *DB) SaveTenders(ctx context.Context, siteID int64, records []models.TenderRecord) (int, error) {
	saved := 0
	for _, rec := range records {
		if !rec.HasTitle() {
			continue
		}
		exists, err := s.TenderExists(ctx, siteID, rec.Title)
		if err != nil {
			return saved, err
		}
		if exists {
			continue
		}
		title := strings.TrimSpace(rec.Title)
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO tenders (site_id, title, title_norm, deadline, deadline_iso, link)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			siteID, title, normTitle(title), rec.DeadlineText, rec.DeadlineISO, rec.Link)
		if err != nil {
			return saved, fmt.Errorf("failed to save tender %q: %w", title, err)
		}
		saved++
	}
	return saved, nil
}

// HasRunningRun reports whether a run for the site is still marked running.
func (s *DB) HasRunningRun(ctx context.Context, siteID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scrape_logs WHERE site_id = ? AND status = ?`,
		siteID, RunRunning).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check running logs: %w", err)
	}
	return n > 0, nil
}

// StartRun records the start of a scrape and returns the log id.
func (s *DB) StartRun(ctx context.Context, siteID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_logs (site_id, status, started_at) VALUES (?, ?, ?)`,
		siteID, RunRunning, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to create scrape log: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun closes a scrape log with its final status and counts.
func (s *DB) FinishRun(ctx context.Context, runID int64, status RunStatus, found, newCount int, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scrape_logs
		 SET status = ?, completed_at = ?, items_found = ?, items_new = ?, error = ?
		 WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), found, newCount, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish scrape log: %w", err)
	}
	return nil
}
