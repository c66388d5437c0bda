package domain

import "testing"

func TestDeriveDocumentName(t *testing.T) {
	cases := []struct {
		name          string
		procedureDate string
		hospital      string
		doctor        string
		procedure     string
		billingNo     string
		want          string
	}{
		{
			name:          "typical metadata",
			procedureDate: "2025-01-15",
			hospital:      "KTPH",
			doctor:        "Tim Tan",
			procedure:     "Endo Scope",
			billingNo:     "12345",
			want:          "20250115_KTPH_Tim_Tan_Endo_Scope_12345",
		},
		{
			name:          "special characters become underscores",
			procedureDate: "2025-03-02",
			hospital:      "St. Luke's",
			doctor:        "O'Brien",
			procedure:     "X-Ray (chest)",
			billingNo:     "B/99",
			want:          "20250302_St_Luke_s_O_Brien_X-Ray_chest_B_99",
		},
		{
			name:          "whitespace runs collapse",
			procedureDate: "2025-06-30",
			hospital:      "  General   Hospital ",
			doctor:        "Lee",
			procedure:     "MRI",
			billingNo:     "77",
			want:          "20250630_General_Hospital_Lee_MRI_77",
		},
		{
			name:          "unparseable date passes through sanitized",
			procedureDate: "someday",
			hospital:      "KTPH",
			doctor:        "Tan",
			procedure:     "Scan",
			billingNo:     "1",
			want:          "someday_KTPH_Tan_Scan_1",
		},
		{
			name:          "datetime string uses compact date",
			procedureDate: "2025-01-15T10:30:00Z",
			hospital:      "KTPH",
			doctor:        "Tan",
			procedure:     "Scan",
			billingNo:     "1",
			want:          "20250115_KTPH_Tan_Scan_1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveDocumentName(tc.procedureDate, tc.hospital, tc.doctor, tc.procedure, tc.billingNo)
			if got != tc.want {
				t.Fatalf("DeriveDocumentName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeNameTrimsUnderscores(t *testing.T) {
	got := sanitizeName("__a__b__")
	if got != "a_b" {
		t.Fatalf("sanitizeName = %q, want %q", got, "a_b")
	}
}
