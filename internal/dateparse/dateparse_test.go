package dateparse

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"27/08/2025", "2025-08-27"},
		{"27-08-2025", "2025-08-27"},
		{"27.08.2025", "2025-08-27"},
		{"2025-08-27", "2025-08-27"},
		{"05/09/25", "2025-09-05"},
		{"27 août 2025", "2025-08-27"},
		{"5 janvier 2026", "2026-01-05"},
		{"Ven 05 Sep 2025", "2025-09-05"},
		{"Mer 27 Aoû 2025", "2025-08-27"},
		{"August 27, 2025", "2025-08-27"},
		{"december 1 2024", "2024-12-01"},
		{"N/A", ""},
		{"", ""},
		{"   ", ""},
		{"Non spécifiée", ""},
		{"garbage text", ""},
		{"Date limite: 27/08/2025 à 10h00", "2025-08-27"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The digit-run fallback only range-checks day and month; it does not verify
// the day against the month's real length. "31/02/2025" is rejected by the
// calendar-validated patterns but then accepted by the fallback. Known
// limitation, pinned here so a change is deliberate.
func TestNormalizeLaxFallback(t *testing.T) {
	if got := Normalize("31/02/2025"); got != "2025-02-31" {
		t.Errorf("Normalize(31/02/2025) = %q, want lax 2025-02-31", got)
	}
	if got := Normalize("99/99/2025"); got != "" {
		t.Errorf("Normalize(99/99/2025) = %q, want empty", got)
	}
	if got := Normalize("le 3, salle 12, bâtiment 7"); got != "" {
		// day/month in range requires plausible year too
		t.Errorf("Normalize(address-like text) = %q, want empty", got)
	}
}

func TestNormalizeTwoDigitYearPivot(t *testing.T) {
	if got := Normalize("01/01/49"); got != "2049-01-01" {
		t.Errorf("pivot below 50: got %q", got)
	}
	if got := Normalize("01/01/75"); got != "1975-01-01" {
		t.Errorf("pivot above 50: got %q", got)
	}
}
