package marsamaroc

import "testing"

// Nine positions are probed (2 through 10); this page fills five of them and
// two of those are unusable (no title, duplicate).
const sampleListing = `<div class="content">
  <div class="toolbar">filtres</div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=31'">
    <div class="p-objet">Dragage du bassin du port de Casablanca</div>
    <span style="display:;">Ven 05 Sep 2025</span>
  </div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=32'">
    <div class="p-objet">Maintenance des grues portuaires</div>
    <span style="display:;">18/09/2025</span>
  </div>
  <div class="card">
    <span style="display:;">22/09/2025</span>
  </div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=31'">
    <div class="p-objet">Dragage du bassin du port de Casablanca</div>
    <span style="display:;">Ven 05 Sep 2025</span>
  </div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=35'">
    <div class="p-objet">Fourniture d'équipements de levage</div>
  </div>
</div>`

func TestParseListing(t *testing.T) {
	records := parseListing(sampleListing)

	if len(records) != 3 {
		t.Fatalf("parseListing() returned %d records, want 3", len(records))
	}

	first := records[0]
	if first.Title != "Dragage du bassin du port de Casablanca" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.DeadlineText != "Ven 05 Sep 2025" {
		t.Errorf("DeadlineText = %q", first.DeadlineText)
	}
	if first.DeadlineISO != "2025-09-05" {
		t.Errorf("DeadlineISO = %q, want %q", first.DeadlineISO, "2025-09-05")
	}
	if first.Link != "?page=entreprise.EntrepriseDetailsConsultation&id=31" {
		t.Errorf("Link = %q", first.Link)
	}

	// Card without the deadline span keeps the record with empty dates.
	third := records[2]
	if third.Title != "Fourniture d'équipements de levage" {
		t.Errorf("Title = %q", third.Title)
	}
	if third.DeadlineText != "" || third.DeadlineISO != "" {
		t.Errorf("deadline = (%q, %q), want empty", third.DeadlineText, third.DeadlineISO)
	}
}

func TestParseListingEmpty(t *testing.T) {
	if got := parseListing(`<div class="content"></div>`); len(got) != 0 {
		t.Errorf("parseListing() on empty container returned %d records", len(got))
	}
}
