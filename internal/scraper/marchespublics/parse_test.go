package marchespublics

import "testing"

const sampleResults = `<table>
  <tr>
    <td>
      <div id="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_ctl1_panelBlocObjet">
        Travaux d'aménagement d'une route rurale
      </div>
    </td>
    <td><a href="index.php?page=entreprise.EntrepriseDetailsConsultation&amp;refConsultation=8841">Détail</a></td>
    <td><span id="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_ctl1_dateHeureLimiteRemisePlis">02/09/2025 10:30</span></td>
  </tr>
  <tr>
    <td>
      <div id="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_ctl2_panelBlocObjet">
        Acquisition de matériel informatique
      </div>
    </td>
    <td></td>
  </tr>
  <tr>
    <td>
      <div id="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_ctl3_panelBlocObjet"></div>
    </td>
    <td><span id="ctl0_CONTENU_PAGE_resultSearch_tableauResultSearch_ctl3_dateHeureLimiteRemisePlis">09/09/2025</span></td>
  </tr>
</table>`

func TestParseResults(t *testing.T) {
	records := parseResults(sampleResults)

	// Three title cells, one empty.
	if len(records) != 2 {
		t.Fatalf("parseResults() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Travaux d'aménagement d'une route rurale" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.DeadlineText != "02/09/2025 10:30" {
		t.Errorf("DeadlineText = %q", first.DeadlineText)
	}
	if first.DeadlineISO != "2025-09-02" {
		t.Errorf("DeadlineISO = %q", first.DeadlineISO)
	}
	if first.Link != "index.php?page=entreprise.EntrepriseDetailsConsultation&refConsultation=8841" {
		t.Errorf("Link = %q", first.Link)
	}

	second := records[1]
	if second.Title != "Acquisition de matériel informatique" {
		t.Errorf("Title = %q", second.Title)
	}
	// Missing deadline cell renders as N/A with no ISO date.
	if second.DeadlineText != "N/A" {
		t.Errorf("DeadlineText = %q, want %q", second.DeadlineText, "N/A")
	}
	if second.DeadlineISO != "" {
		t.Errorf("DeadlineISO = %q, want empty", second.DeadlineISO)
	}
}

func TestParseResultsEmpty(t *testing.T) {
	if got := parseResults("<table></table>"); len(got) != 0 {
		t.Errorf("parseResults() on empty table returned %d records", len(got))
	}
}
