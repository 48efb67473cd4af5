package dedup

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tender-radar/tenderscrape/pkg/models"
)

type fakeChecker struct {
	siteID    int64
	siteKnown bool
	existing  map[string]bool
	err       error
	panics    bool
}

func (f *fakeChecker) SiteID(ctx context.Context, name string) (int64, bool, error) {
	if f.panics {
		panic("store gone")
	}
	if f.err != nil {
		return 0, false, f.err
	}
	return f.siteID, f.siteKnown, nil
}

func (f *fakeChecker) TenderExists(ctx context.Context, siteID int64, title string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.existing[strings.ToLower(strings.TrimSpace(title))], nil
}

func records(titles ...string) []models.TenderRecord {
	out := make([]models.TenderRecord, len(titles))
	for i, t := range titles {
		out[i] = models.TenderRecord{Title: t}
	}
	return out
}

func titles(recs []models.TenderRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestFilterNewNilStore(t *testing.T) {
	g := NewGateway(nil)
	in := records("A", "B")
	got := g.FilterNew(context.Background(), in, "Marsa Maroc")
	if !reflect.DeepEqual(titles(got), []string{"A", "B"}) {
		t.Errorf("nil store must pass everything through, got %v", titles(got))
	}
}

func TestFilterNewFailsOpenOnError(t *testing.T) {
	g := NewGateway(&fakeChecker{err: errors.New("connection refused")})
	in := records("A", "B", "C")
	got := g.FilterNew(context.Background(), in, "Marsa Maroc")
	if !reflect.DeepEqual(titles(got), []string{"A", "B", "C"}) {
		t.Errorf("store error must fail open, got %v", titles(got))
	}
}

func TestFilterNewFailsOpenOnPanic(t *testing.T) {
	g := NewGateway(&fakeChecker{panics: true})
	in := records("A")
	got := g.FilterNew(context.Background(), in, "Marsa Maroc")
	if !reflect.DeepEqual(titles(got), []string{"A"}) {
		t.Errorf("store panic must fail open, got %v", titles(got))
	}
}

func TestFilterNewUnknownSite(t *testing.T) {
	g := NewGateway(&fakeChecker{siteKnown: false})
	in := records("A", "B")
	got := g.FilterNew(context.Background(), in, "Nouveau Portail")
	if !reflect.DeepEqual(titles(got), []string{"A", "B"}) {
		t.Errorf("unknown site must treat all records as new, got %v", titles(got))
	}
}

func TestFilterNewTitleMatching(t *testing.T) {
	g := NewGateway(&fakeChecker{
		siteID:    7,
		siteKnown: true,
		existing:  map[string]bool{"fourniture de matériel": true},
	})

	in := []models.TenderRecord{
		{Title: "Fourniture de matériel"},
		{Title: "FOURNITURE DE MATÉRIEL "},
		{Title: "Travaux de voirie"},
	}
	got := g.FilterNew(context.Background(), in, "ADM - Autoroutes du Maroc")
	if !reflect.DeepEqual(titles(got), []string{"Travaux de voirie"}) {
		t.Errorf("case/whitespace title variants must be filtered, got %v", titles(got))
	}
}

func TestFilterNewDropsEmptyTitles(t *testing.T) {
	in := records("A", "", "   ", "B")

	for name, g := range map[string]*Gateway{
		"nil store":   NewGateway(nil),
		"known site":  NewGateway(&fakeChecker{siteID: 1, siteKnown: true}),
		"store error": NewGateway(&fakeChecker{err: errors.New("down")}),
	} {
		got := g.FilterNew(context.Background(), in, "Offres Online")
		if !reflect.DeepEqual(titles(got), []string{"A", "B"}) {
			t.Errorf("%s: empty titles must never survive, got %v", name, titles(got))
		}
	}
}

func TestSiteNameFor(t *testing.T) {
	if got := SiteNameFor("adm"); got != "ADM - Autoroutes du Maroc" {
		t.Errorf("SiteNameFor(adm) = %q", got)
	}
	if got := SiteNameFor("unknown-portal"); got != "unknown-portal" {
		t.Errorf("unknown ids must pass through, got %q", got)
	}
}
