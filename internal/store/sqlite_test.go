package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tenders.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnsureSite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, created, err := db.EnsureSite(ctx, "Marsa Maroc", "https://achats.marsamaroc.co.ma")
	if err != nil {
		t.Fatalf("EnsureSite failed: %v", err)
	}
	if !created {
		t.Error("expected site to be created on first call")
	}

	id2, created2, err := db.EnsureSite(ctx, "Marsa Maroc", "")
	if err != nil {
		t.Fatalf("second EnsureSite failed: %v", err)
	}
	if created2 {
		t.Error("expected existing site on second call")
	}
	if id != id2 {
		t.Errorf("site id changed across calls: %d != %d", id, id2)
	}
}

func TestSiteIDDoesNotCreate(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.SiteID(context.Background(), "Offres Online")
	if err != nil {
		t.Fatalf("SiteID failed: %v", err)
	}
	if ok {
		t.Error("SiteID must not report a site that was never created")
	}
}

func TestTenderExistsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID, _, err := db.EnsureSite(ctx, "ADM - Autoroutes du Maroc", "")
	if err != nil {
		t.Fatalf("EnsureSite failed: %v", err)
	}

	saved, err := db.SaveTenders(ctx, siteID, []models.TenderRecord{
		{Title: "fourniture de matériel"},
	})
	if err != nil {
		t.Fatalf("SaveTenders failed: %v", err)
	}
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}

	for _, title := range []string{
		"fourniture de matériel",
		"Fourniture de matériel",
		"FOURNITURE DE MATÉRIEL ",
	} {
		exists, err := db.TenderExists(ctx, siteID, title)
		if err != nil {
			t.Fatalf("TenderExists(%q) failed: %v", title, err)
		}
		if !exists {
			t.Errorf("TenderExists(%q) = false, want true", title)
		}
	}

	exists, err := db.TenderExists(ctx, siteID, "Travaux de terrassement")
	if err != nil {
		t.Fatalf("TenderExists failed: %v", err)
	}
	if exists {
		t.Error("unexpected match for unknown title")
	}
}

func TestSaveTendersSkipsDuplicatesAndEmptyTitles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID, _, _ := db.EnsureSite(ctx, "CGI E-Sourcing", "")

	records := []models.TenderRecord{
		{Title: "Achat de serveurs", DeadlineISO: "2025-09-05"},
		{Title: "ACHAT DE SERVEURS"},
		{Title: "   "},
		{Title: "Maintenance réseau"},
	}
	saved, err := db.SaveTenders(ctx, siteID, records)
	if err != nil {
		t.Fatalf("SaveTenders failed: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}
}

func TestRunLogLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	siteID, _, _ := db.EnsureSite(ctx, "Royal Air Maroc", "")

	runID, err := db.StartRun(ctx, siteID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	running, err := db.HasRunningRun(ctx, siteID)
	if err != nil {
		t.Fatalf("HasRunningRun failed: %v", err)
	}
	if !running {
		t.Error("expected a running log after StartRun")
	}

	if err := db.FinishRun(ctx, runID, RunCompleted, 12, 3, ""); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	running, err = db.HasRunningRun(ctx, siteID)
	if err != nil {
		t.Fatalf("HasRunningRun failed: %v", err)
	}
	if running {
		t.Error("run still reported running after FinishRun")
	}
}
