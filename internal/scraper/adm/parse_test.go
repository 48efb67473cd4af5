package adm

import "testing"

const sampleListing = `<div class="content">
  <div class="header">filtres</div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=101'">
    <div class="info p-card">
      <div class="p-objet">Objet : Travaux de signalisation horizontale</div>
    </div>
    <div class="leftColumn">
      <div class="limita">Date limite de remise des plis <span>27/08/2025 10:00</span></div>
    </div>
  </div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=102'">
    <div class="info p-card">
      <div class="p-objet">Fourniture de glissières de sécurité</div>
    </div>
    <div class="leftColumn">
      <div class="limita">Date limite de remise des plis 02/09/2025</div>
    </div>
  </div>
  <div class="card">
    <div class="info p-card"></div>
    <div class="leftColumn"><div class="limita"><span>15/09/2025</span></div></div>
  </div>
  <div class="card" onclick="location.href='?page=entreprise.EntrepriseDetailsConsultation&amp;id=101'">
    <div class="info p-card">
      <div class="p-objet">Objet : Travaux de signalisation horizontale</div>
    </div>
    <div class="leftColumn">
      <div class="limita"><span>27/08/2025 10:00</span></div>
    </div>
  </div>
</div>`

func TestParseListing(t *testing.T) {
	records := parseListing(sampleListing)

	// Four cards in range: one untitled, one a duplicate of the first.
	if len(records) != 2 {
		t.Fatalf("parseListing() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Travaux de signalisation horizontale" {
		t.Errorf("Title = %q, want label stripped", first.Title)
	}
	if first.DeadlineText != "27/08/2025 10:00" {
		t.Errorf("DeadlineText = %q, want %q", first.DeadlineText, "27/08/2025 10:00")
	}
	if first.DeadlineISO != "2025-08-27" {
		t.Errorf("DeadlineISO = %q, want %q", first.DeadlineISO, "2025-08-27")
	}
	if first.Link != "?page=entreprise.EntrepriseDetailsConsultation&id=101" {
		t.Errorf("Link = %q", first.Link)
	}

	second := records[1]
	if second.Title != "Fourniture de glissières de sécurité" {
		t.Errorf("Title = %q", second.Title)
	}
	// No span: date comes from the block text behind the label.
	if second.DeadlineText != "02/09/2025" {
		t.Errorf("DeadlineText = %q, want %q", second.DeadlineText, "02/09/2025")
	}
	if second.DeadlineISO != "2025-09-02" {
		t.Errorf("DeadlineISO = %q, want %q", second.DeadlineISO, "2025-09-02")
	}
}

func TestParseListingEmptyContainer(t *testing.T) {
	if got := parseListing(`<div class="content"></div>`); len(got) != 0 {
		t.Errorf("parseListing() on empty container returned %d records", len(got))
	}
}

func TestParseListingMalformedHTML(t *testing.T) {
	// html.Parse repairs almost anything; the point is no panic and no
	// phantom records.
	if got := parseListing(`<div class="content"><div><div class="p-objet">`); len(got) != 0 {
		t.Errorf("parseListing() on truncated HTML returned %d records", len(got))
	}
}
