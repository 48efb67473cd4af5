package offresonline

import "testing"

const sampleTable = `<table id="tableao">
  <tr onclick="window.location = 'detail.aspx?ao=551'">
    <td>AO n° 551</td>
    <td>Construction d'un centre de santé communal</td>
    <td>Avant le <b>12/09/2025</b></td>
  </tr>
  <tr onclick="window.open('detail.aspx?ao=552', '_blank')">
    <td>AO n° 552</td>
    <td>Gardiennage et nettoyage des locaux</td>
    <td><b>Non spécifiée</b></td>
  </tr>
  <tr>
    <td>AO n° 553</td>
    <td></td>
    <td><b>20/09/2025</b></td>
  </tr>
</table>`

func TestParseTable(t *testing.T) {
	records := parseTable(sampleTable)

	if len(records) != 2 {
		t.Fatalf("parseTable() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Construction d'un centre de santé communal" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.DeadlineText != "12/09/2025" {
		t.Errorf("DeadlineText = %q", first.DeadlineText)
	}
	if first.DeadlineISO != "2025-09-12" {
		t.Errorf("DeadlineISO = %q", first.DeadlineISO)
	}
	if first.Link != "detail.aspx?ao=551" {
		t.Errorf("Link = %q", first.Link)
	}

	second := records[1]
	if second.Link != "detail.aspx?ao=552" {
		t.Errorf("Link = %q, want window.open target", second.Link)
	}
	// "Non spécifiée" is the portal's unknown-date sentinel.
	if second.DeadlineISO != "" {
		t.Errorf("DeadlineISO = %q, want empty", second.DeadlineISO)
	}
}

func TestParseTableRowLimit(t *testing.T) {
	// Rows beyond the page size are never probed.
	html := `<table id="tableao">`
	for i := 0; i < 15; i++ {
		html += `<tr><td>ref</td><td>Titre ` + string(rune('A'+i)) + `</td><td><b>01/10/2025</b></td></tr>`
	}
	html += `</table>`

	records := parseTable(html)
	if len(records) != lastRowIndex {
		t.Errorf("parseTable() returned %d records, want %d", len(records), lastRowIndex)
	}
}
