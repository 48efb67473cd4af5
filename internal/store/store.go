// Package store persists sites, tenders and scrape-run logs in a local
// sqlite database. The database is an accelerator for cross-run
// deduplication and operational history, not the system of record: the
// per-site JSON exports own the data, and every consumer of this package is
// expected to keep working when it is absent.
package store

import (
	"errors"
	"time"
)

// ErrRunInProgress signals that a site already has a run marked running.
var ErrRunInProgress = errors.New("a scrape run for this site is already in progress")

// RunStatus is the lifecycle state of one scrape run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Site is a persisted tender portal.
type Site struct {
	ID     int64
	Name   string
	URL    string
	Active bool
}

// RunLog records one scraper invocation for a site.
type RunLog struct {
	ID          int64
	SiteID      int64
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
	ItemsFound  int
	ItemsNew    int
	Error       string
}
