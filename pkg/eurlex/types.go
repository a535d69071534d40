// Package eurlex provides a connector to EUR-Lex: parsing act identifiers, generating
// CELEX numbers and ELI URIs, and fetching document markup with rate limiting,
// a circuit breaker and response caching.
package eurlex

import (
	"time"
)

// DocumentSector represents the CELEX sector code.
// See: https://eur-lex.europa.eu/content/tools/TableOfSectors/types_of_documents_in_eurlex.html
type DocumentSector string

const (
	SectorTreaties                 DocumentSector = "1"
	SectorInternationalAgreements  DocumentSector = "2"
	SectorLegislation              DocumentSector = "3"
	SectorComplementaryLegislation DocumentSector = "4"
	SectorPreparatoryActs          DocumentSector = "5"
	SectorCaseLaw                  DocumentSector = "6"
)

// DocumentTypeCode represents the CELEX document type indicator within a sector.
type DocumentTypeCode string

const (
	TypeRegulation DocumentTypeCode = "R"
	TypeDirective  DocumentTypeCode = "L"
	TypeDecision   DocumentTypeCode = "D"
)

// ActKind is the legal form of an EU act.
type ActKind string

const (
	KindRegulation ActKind = "regulation"
	KindDirective  ActKind = "directive"
	KindDecision   ActKind = "decision"
)

// Identifier is the kind, year and number of an EU act, as cited in its title.
// Example: "Regulation (EU) 2016/679" = {regulation, 2016, 679}
type Identifier struct {
	Kind   ActKind `json:"kind"`
	Year   string  `json:"year"`
	Number string  `json:"number"`
}

// CELEXNumber is a structured representation of a CELEX identifier.
// Format: {Sector}{Year}{TypeCode}{PaddedNumber}
// Example: "32016R0679" = Sector 3, Year 2016, Regulation, Number 0679
type CELEXNumber struct {
	Sector   DocumentSector   `json:"sector"`
	Year     string           `json:"year"`
	TypeCode DocumentTypeCode `json:"type_code"`
	Number   string           `json:"number"`
}

// String returns the canonical CELEX string representation.
func (celexNumber CELEXNumber) String() string {
	return string(celexNumber.Sector) + celexNumber.Year + string(celexNumber.TypeCode) + celexNumber.Number
}

// ELIURI represents a European Legislation Identifier URI.
// Format: http://data.europa.eu/eli/{type}/{year}/{number}/oj
type ELIURI struct {
	TypeSlug string `json:"type_slug"`
	Year     string `json:"year"`
	Number   string `json:"number"`
}

// ELIBaseURL is the base URL for ELI URIs.
const ELIBaseURL = "http://data.europa.eu/eli/"

// String returns the full ELI URI.
func (eliURI ELIURI) String() string {
	return ELIBaseURL + eliURI.TypeSlug + "/" + eliURI.Year + "/" + eliURI.Number + "/oj"
}

// DocumentBaseURL is the EUR-Lex endpoint serving the HTML rendering of an act.
const DocumentBaseURL = "https://eur-lex.europa.eu/legal-content/EN/TXT/HTML/?uri=CELEX:"

// DocumentURL returns the URL of the English HTML rendering for a CELEX number.
func DocumentURL(celexNumber string) string {
	return DocumentBaseURL + celexNumber
}

// ValidationResult captures the outcome of a URI validation via HEAD request.
type ValidationResult struct {
	URI        string    `json:"uri"`
	Valid      bool      `json:"valid"`
	StatusCode int       `json:"status_code"`
	CheckedAt  time.Time `json:"checked_at"`
	Error      string    `json:"error,omitempty"`
}

// FetchedDocument is the markup of one act downloaded from EUR-Lex.
type FetchedDocument struct {
	CELEX       string    `json:"celex"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"-"`
	FetchedAt   time.Time `json:"fetched_at"`
}
