package cgi

import "testing"

const sampleTable = `<table class="tender-list">
  <tr><th>Ref</th><th>Objet</th><th>Statut</th><th>Date limite</th></tr>
  <tr>
    <td>AO-2025-14</td>
    <td><a href="/esop/guest/go/opportunity/detail?opportunityId=14">Réhabilitation du réseau d'assainissement</a></td>
    <td>Ouvert</td>
    <td>05/09/2025 12:00</td>
  </tr>
  <tr>
    <td>AO-2025-15</td>
    <td></td>
    <td>Ouvert</td>
    <td>10/09/2025</td>
  </tr>
  <tr>
    <td>AO-2025-16</td>
    <td>Fourniture de mobilier de bureau</td>
    <td>Ouvert</td>
    <td>N/A</td>
  </tr>
</table>`

func TestParseTable(t *testing.T) {
	records := parseTable(sampleTable)

	// Header plus three rows, one untitled.
	if len(records) != 2 {
		t.Fatalf("parseTable() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Réhabilitation du réseau d'assainissement" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.DeadlineText != "05/09/2025 12:00" {
		t.Errorf("DeadlineText = %q", first.DeadlineText)
	}
	if first.DeadlineISO != "2025-09-05" {
		t.Errorf("DeadlineISO = %q, want %q", first.DeadlineISO, "2025-09-05")
	}
	if first.Link != "/esop/guest/go/opportunity/detail?opportunityId=14" {
		t.Errorf("Link = %q", first.Link)
	}

	second := records[1]
	if second.Title != "Fourniture de mobilier de bureau" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.DeadlineISO != "" {
		t.Errorf("DeadlineISO = %q, want empty for N/A", second.DeadlineISO)
	}
}

func TestParseTableHeaderOnly(t *testing.T) {
	got := parseTable(`<table class="tender-list"><tr><th>Objet</th></tr></table>`)
	if len(got) != 0 {
		t.Errorf("parseTable() on header-only table returned %d records", len(got))
	}
}
