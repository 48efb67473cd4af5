package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

func readStore(t *testing.T, path string) []models.TenderRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var records []models.TenderRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return records
}

func TestExportMergePreservesOrder(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)

	first := []models.TenderRecord{
		{Title: "Ancien marché 1", DeadlineISO: "2025-01-10"},
		{Title: "Ancien marché 2"},
	}
	if err := sink.Export("adm", first); err != nil {
		t.Fatalf("first Export failed: %v", err)
	}

	second := []models.TenderRecord{
		{Title: "Nouveau marché 1", Link: "https://achats.adm.co.ma/?x=1"},
	}
	if err := sink.Export("adm", second); err != nil {
		t.Fatalf("second Export failed: %v", err)
	}

	got := readStore(t, filepath.Join(dir, "adm", "adm_tenders.json"))
	if len(got) != 3 {
		t.Fatalf("store size = %d, want 3", len(got))
	}
	wantTitles := []string{"Ancien marché 1", "Ancien marché 2", "Nouveau marché 1"}
	for i, w := range wantTitles {
		if got[i].Title != w {
			t.Errorf("record %d title = %q, want %q", i, got[i].Title, w)
		}
	}

	// Derived views exist.
	if _, err := os.Stat(filepath.Join(dir, "adm", "adm_tenders.xlsx")); err != nil {
		t.Errorf("missing spreadsheet: %v", err)
	}
	txt, err := os.ReadFile(filepath.Join(dir, "adm", "data.txt"))
	if err != nil {
		t.Fatalf("missing data.txt: %v", err)
	}
	if strings.Contains(string(txt), "Ancien marché 1") {
		t.Error("data.txt must only contain the latest run's new records")
	}
	if !strings.Contains(string(txt), "Nouveau marché 1") {
		t.Error("data.txt missing latest record")
	}
}

func TestExportCorruptPriorStore(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)

	siteDir := filepath.Join(dir, "cgi")
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(siteDir, "cgi_tenders.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	records := []models.TenderRecord{{Title: "Appel d'offres serveurs"}}
	if err := sink.Export("cgi", records); err != nil {
		t.Fatalf("Export over corrupt store failed: %v", err)
	}

	got := readStore(t, filepath.Join(siteDir, "cgi_tenders.json"))
	if !reflect.DeepEqual(got, records) {
		t.Errorf("corrupt prior store must be treated as empty, got %+v", got)
	}
}

func TestExportNoNewRecords(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)

	if err := sink.Export("marsamaroc", nil); err != nil {
		t.Fatalf("Export with no records failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marsamaroc", "marsamaroc_tenders.json")); !os.IsNotExist(err) {
		t.Error("empty run must not touch the store")
	}
}

func TestExportPreservesNonASCII(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)

	if err := sink.Export("marchespublics", []models.TenderRecord{
		{Title: "Aménagement des abords — tranche n°2, août"},
	}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "marchespublics", "marchespublics_tenders.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "août") {
		t.Error("accented characters must be stored unescaped")
	}
}

func TestLoadAccumulatedMissingFile(t *testing.T) {
	if got := LoadAccumulated(filepath.Join(t.TempDir(), "nope.json")); got != nil {
		t.Errorf("missing file must load as empty, got %+v", got)
	}
}
