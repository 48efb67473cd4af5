package royalairmaroc

import "testing"

const sampleTable = `<table>
  <tbody>
    <tr>
      <td class="col_CODE tdSmall">RFQ-887</td>
      <td class="col_TITLE tdMedium"><a href="/esop/toolkit/opportunity/init/opportunityDetail.do;jsessionid=AB12CD?oppId=887">Acquisition de pièces de rechange moteurs</a></td>
      <td class="col_INTEREST_TIME_LIMIT tdMedium">August 27, 2025</td>
    </tr>
    <tr>
      <td class="col_CODE tdSmall">RFQ-888</td>
      <td class="col_TITLE tdMedium">Prestations de restauration à bord</td>
      <td class="col_INTEREST_TIME_LIMIT tdMedium">15/09/2025</td>
    </tr>
    <tr>
      <td class="col_CODE tdSmall">RFQ-889</td>
      <td class="col_TITLE tdMedium"></td>
      <td class="col_INTEREST_TIME_LIMIT tdMedium">20/09/2025</td>
    </tr>
  </tbody>
</table>`

func TestParseTable(t *testing.T) {
	records := parseTable(sampleTable)

	if len(records) != 2 {
		t.Fatalf("parseTable() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Acquisition de pièces de rechange moteurs" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.DeadlineISO != "2025-08-27" {
		t.Errorf("DeadlineISO = %q, want %q", first.DeadlineISO, "2025-08-27")
	}
	want := "https://ram-esourcing.royalairmaroc.com/esop/toolkit/opportunity//opportunityDetail.do"
	if first.Link != want {
		t.Errorf("Link = %q, want %q", first.Link, want)
	}

	second := records[1]
	if second.Title != "Prestations de restauration à bord" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.Link != "" {
		t.Errorf("Link = %q, want empty for row without anchor", second.Link)
	}
}

func TestCleanLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{
			"session tail truncated after .do",
			"/esop/opportunityDetail.do;jsessionid=XYZ?oppId=1",
			baseURL + "/esop/opportunityDetail.do",
		},
		{
			"init segment collapsed",
			"/esop/init/detail.do",
			baseURL + "/esop//detail.do",
		},
		{
			"absolute url kept",
			"https://ram-esourcing.royalairmaroc.com/esop/detail.do?x=1",
			"https://ram-esourcing.royalairmaroc.com/esop/detail.do",
		},
		{
			"relative path rooted",
			"detail.do",
			baseURL + "/detail.do",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanLink(tt.in); got != tt.want {
				t.Errorf("cleanLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
