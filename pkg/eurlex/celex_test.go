package eurlex

import (
	"testing"
)

func TestParseIdentifier(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected Identifier
	}{
		{
			name:     "modern_regulation",
			text:     "Regulation (EU) 2016/679 of the European Parliament and of the Council",
			expected: Identifier{Kind: KindRegulation, Year: "2016", Number: "679"},
		},
		{
			name:     "upper_case_title",
			text:     "REGULATION (EU) 2024/1689 OF THE EUROPEAN PARLIAMENT",
			expected: Identifier{Kind: KindRegulation, Year: "2024", Number: "1689"},
		},
		{
			name:     "modern_directive",
			text:     "Directive (EU) 2022/2555 (NIS 2 Directive)",
			expected: Identifier{Kind: KindDirective, Year: "2022", Number: "2555"},
		},
		{
			name:     "numbered_regulation",
			text:     "Regulation (EC) No 45/2001",
			expected: Identifier{Kind: KindRegulation, Year: "2001", Number: "45"},
		},
		{
			name:     "legacy_directive",
			text:     "Directive 2002/58/EC concerning the processing of personal data",
			expected: Identifier{Kind: KindDirective, Year: "2002", Number: "58"},
		},
		{
			name:     "legacy_two_digit_year",
			text:     "Directive 95/46/EC",
			expected: Identifier{Kind: KindDirective, Year: "1995", Number: "46"},
		},
		{
			name:     "earliest_citation_wins",
			text:     "Regulation (EU) 2024/1689 amending Regulation (EC) No 300/2008",
			expected: Identifier{Kind: KindRegulation, Year: "2024", Number: "1689"},
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			identifier, ok := ParseIdentifier(testCase.text)
			if !ok {
				t.Fatalf("ParseIdentifier(%q) found nothing", testCase.text)
			}
			if identifier != testCase.expected {
				t.Errorf("ParseIdentifier(%q) = %+v, want %+v", testCase.text, identifier, testCase.expected)
			}
		})
	}
}

func TestParseIdentifier_NoMatch(t *testing.T) {
	for _, text := range []string{"", "General Data Protection", "Article 5(1)"} {
		if identifier, ok := ParseIdentifier(text); ok {
			t.Errorf("ParseIdentifier(%q): expected no match, got %+v", text, identifier)
		}
	}
}

func TestGenerateCELEX(t *testing.T) {
	cases := []struct {
		name       string
		identifier Identifier
		expected   string
	}{
		{"gdpr_regulation", Identifier{Kind: KindRegulation, Year: "2016", Number: "679"}, "32016R0679"},
		{"directive_95_46", Identifier{Kind: KindDirective, Year: "95", Number: "46"}, "31995L0046"},
		{"decision_2010_87", Identifier{Kind: KindDecision, Year: "2010", Number: "87"}, "32010D0087"},
		{"regulation_ec_no_45_2001", Identifier{Kind: KindRegulation, Year: "2001", Number: "45"}, "32001R0045"},
		{"large_number_no_padding", Identifier{Kind: KindRegulation, Year: "2024", Number: "1689"}, "32024R1689"},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			celexNumber, err := GenerateCELEX(testCase.identifier)
			if err != nil {
				t.Fatalf("GenerateCELEX failed: %v", err)
			}
			if celexNumber.String() != testCase.expected {
				t.Errorf("CELEX: got %q, want %q", celexNumber.String(), testCase.expected)
			}
		})
	}
}

func TestGenerateCELEX_Errors(t *testing.T) {
	cases := []struct {
		name       string
		identifier Identifier
	}{
		{"missing_year", Identifier{Kind: KindRegulation, Number: "679"}},
		{"missing_number", Identifier{Kind: KindRegulation, Year: "2016"}},
		{"unsupported_kind", Identifier{Kind: "treaty", Year: "2016", Number: "1"}},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := GenerateCELEX(testCase.identifier); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestParseCELEX(t *testing.T) {
	celexNumber, err := ParseCELEX(" 32016r0679 ")
	if err != nil {
		t.Fatalf("ParseCELEX failed: %v", err)
	}
	expected := CELEXNumber{Sector: SectorLegislation, Year: "2016", TypeCode: TypeRegulation, Number: "0679"}
	if celexNumber != expected {
		t.Errorf("ParseCELEX = %+v, want %+v", celexNumber, expected)
	}

	for _, invalid := range []string{"", "2016R0679", "32016R679", "celex"} {
		if _, err := ParseCELEX(invalid); err == nil {
			t.Errorf("ParseCELEX(%q): expected error", invalid)
		}
	}
}

func TestNormalizeYear(t *testing.T) {
	cases := map[string]string{
		"95":   "1995",
		"58":   "1958",
		"57":   "2057",
		"16":   "2016",
		"2016": "2016",
	}
	for input, expected := range cases {
		if got := normalizeYear(input); got != expected {
			t.Errorf("normalizeYear(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestDocumentURL(t *testing.T) {
	expected := "https://eur-lex.europa.eu/legal-content/EN/TXT/HTML/?uri=CELEX:32016R0679"
	if got := DocumentURL("32016R0679"); got != expected {
		t.Errorf("DocumentURL: got %q, want %q", got, expected)
	}
}
