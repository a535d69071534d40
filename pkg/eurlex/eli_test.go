package eurlex

import (
	"testing"
)

func TestGenerateELI(t *testing.T) {
	cases := []struct {
		name       string
		identifier Identifier
		expected   string
	}{
		{"gdpr_regulation", Identifier{Kind: KindRegulation, Year: "2016", Number: "679"}, "http://data.europa.eu/eli/reg/2016/679/oj"},
		{"directive_two_digit_year", Identifier{Kind: KindDirective, Year: "95", Number: "46"}, "http://data.europa.eu/eli/dir/1995/46/oj"},
		{"decision", Identifier{Kind: KindDecision, Year: "2010", Number: "87"}, "http://data.europa.eu/eli/dec/2010/87/oj"},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			eliURI, err := GenerateELI(testCase.identifier)
			if err != nil {
				t.Fatalf("GenerateELI failed: %v", err)
			}
			if eliURI.String() != testCase.expected {
				t.Errorf("ELI: got %q, want %q", eliURI.String(), testCase.expected)
			}
		})
	}
}

func TestGenerateELI_UnpaddedNumber(t *testing.T) {
	eliURI, err := GenerateELI(Identifier{Kind: KindRegulation, Year: "2019", Number: "1"})
	if err != nil {
		t.Fatalf("GenerateELI failed: %v", err)
	}
	if eliURI.Number != "1" {
		t.Errorf("Number: got %q, want %q", eliURI.Number, "1")
	}
}

func TestGenerateELI_Errors(t *testing.T) {
	for name, identifier := range map[string]Identifier{
		"missing_year":     {Kind: KindRegulation, Number: "679"},
		"missing_number":   {Kind: KindRegulation, Year: "2016"},
		"unsupported_kind": {Kind: "opinion", Year: "2016", Number: "1"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := GenerateELI(identifier); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
