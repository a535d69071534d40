package eurlex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "Regulation (EU) 2016/679", "Directive (EU) 2022/2555", "Decision (EU) 2019/1"
	modernCitationPattern = regexp.MustCompile(`(?i)\b(regulation|directive|decision)\s*\((?:eu|ec|eec|euratom)\)\s*(?:no\.?\s*)?(\d{4})/(\d+)\b`)
	// "Regulation (EC) No 45/2001": number before year.
	numberedRegulationPattern = regexp.MustCompile(`(?i)\b(regulation|decision)\s*\((?:ec|eec|euratom)\)\s*no\.?\s*(\d+)/(\d{2,4})\b`)
	// "Directive 2002/58/EC", "Directive 95/46/EC": year before number.
	legacyDirectivePattern = regexp.MustCompile(`(?i)\b(directive|decision)\s+(\d{2,4})/(\d+)/(?:eu|ec|eec|euratom)\b`)

	celexPattern = regexp.MustCompile(`^([1-9])(\d{4})([A-Z])(\d{4})$`)
)

// ParseIdentifier extracts the first act identifier from a citation or title.
//
//	"Regulation (EU) 2024/1689 of the European Parliament" -> {regulation, 2024, 1689}
//	"Regulation (EC) No 45/2001"                           -> {regulation, 2001, 45}
//	"Directive 2002/58/EC"                                 -> {directive, 2002, 58}
func ParseIdentifier(text string) (Identifier, bool) {
	best, bestStart := Identifier{}, -1

	consider := func(pattern *regexp.Regexp, yearGroup, numberGroup int) {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			return
		}
		// Prefer the earliest citation; on equal starts the first pattern wins.
		if bestStart != -1 && loc[0] >= bestStart {
			return
		}
		group := func(i int) string { return text[loc[2*i]:loc[2*i+1]] }
		best = Identifier{
			Kind:   ActKind(strings.ToLower(group(1))),
			Year:   normalizeYear(group(yearGroup)),
			Number: group(numberGroup),
		}
		bestStart = loc[0]
	}

	consider(numberedRegulationPattern, 3, 2)
	consider(modernCitationPattern, 2, 3)
	consider(legacyDirectivePattern, 2, 3)

	return best, bestStart != -1
}

// GenerateCELEX creates a CELEX number from an act identifier.
// Returns an error if the identifier lacks required components (year, number)
// or has an unsupported kind.
//
// CELEX format: {Sector}{Year}{TypeCode}{PaddedNumber}
// Example: Regulation (EU) 2016/679 -> "32016R0679"
func GenerateCELEX(identifier Identifier) (CELEXNumber, error) {
	if identifier.Year == "" {
		return CELEXNumber{}, fmt.Errorf("identifier missing required year component")
	}
	if identifier.Number == "" {
		return CELEXNumber{}, fmt.Errorf("identifier missing required number component")
	}

	typeCode, err := actKindToDocumentTypeCode(identifier.Kind)
	if err != nil {
		return CELEXNumber{}, err
	}

	return CELEXNumber{
		Sector:   SectorLegislation,
		Year:     normalizeYear(identifier.Year),
		TypeCode: typeCode,
		Number:   padCELEXNumber(identifier.Number),
	}, nil
}

// ParseCELEX parses a canonical CELEX string such as "32016R0679".
func ParseCELEX(celexString string) (CELEXNumber, error) {
	match := celexPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(celexString)))
	if match == nil {
		return CELEXNumber{}, fmt.Errorf("invalid CELEX number %q", celexString)
	}
	return CELEXNumber{
		Sector:   DocumentSector(match[1]),
		Year:     match[2],
		TypeCode: DocumentTypeCode(match[3]),
		Number:   match[4],
	}, nil
}

// actKindToDocumentTypeCode maps an ActKind to the CELEX DocumentTypeCode.
func actKindToDocumentTypeCode(kind ActKind) (DocumentTypeCode, error) {
	switch kind {
	case KindRegulation:
		return TypeRegulation, nil
	case KindDirective:
		return TypeDirective, nil
	case KindDecision:
		return TypeDecision, nil
	default:
		return "", fmt.Errorf("unsupported act kind for CELEX generation: %q", kind)
	}
}

// normalizeYear converts a 2-digit year to 4-digit.
// Uses 1958 as the cutoff (year the EU/EEC was founded):
// - Years >= 58 are interpreted as 19xx (e.g., "95" -> "1995")
// - Years < 58 are interpreted as 20xx (e.g., "16" -> "2016")
// 4-digit years pass through unchanged.
func normalizeYear(yearString string) string {
	if len(yearString) == 2 {
		yearValue, err := strconv.Atoi(yearString)
		if err != nil {
			return yearString
		}
		if yearValue >= 58 {
			return "19" + yearString
		}
		return "20" + yearString
	}
	return yearString
}

// padCELEXNumber pads a document number to 4 digits with leading zeros.
// Example: "679" -> "0679", "46" -> "0046", "1" -> "0001"
func padCELEXNumber(numberString string) string {
	for len(numberString) < 4 {
		numberString = "0" + numberString
	}
	return numberString
}
