package eurlex

import (
	"fmt"
)

// Path segments naming the act kind in an ELI.
const (
	eliSlugRegulation = "reg"
	eliSlugDirective  = "dir"
	eliSlugDecision   = "dec"
)

// GenerateELI builds the European Legislation Identifier of a regulation, directive
// or decision, such as http://data.europa.eu/eli/reg/2016/679/oj for the GDPR.
// Two-digit years are widened and the act number is kept unpadded. Identifiers
// without a year or number, or of another kind, have no ELI.
func GenerateELI(identifier Identifier) (ELIURI, error) {
	if identifier.Year == "" {
		return ELIURI{}, fmt.Errorf("identifier missing required year component")
	}
	if identifier.Number == "" {
		return ELIURI{}, fmt.Errorf("identifier missing required number component")
	}

	typeSlug, err := actKindToELISlug(identifier.Kind)
	if err != nil {
		return ELIURI{}, err
	}

	return ELIURI{
		TypeSlug: typeSlug,
		Year:     normalizeYear(identifier.Year),
		Number:   identifier.Number,
	}, nil
}

func actKindToELISlug(kind ActKind) (string, error) {
	switch kind {
	case KindRegulation:
		return eliSlugRegulation, nil
	case KindDirective:
		return eliSlugDirective, nil
	case KindDecision:
		return eliSlugDecision, nil
	default:
		return "", fmt.Errorf("unsupported act kind for ELI generation: %q", kind)
	}
}
