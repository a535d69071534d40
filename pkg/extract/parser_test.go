package extract

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

const ojFixture = `<!DOCTYPE html>
<html><head>
<link rel="canonical" href="https://eur-lex.europa.eu/eli/reg/2024/1689/oj"/>
</head><body><div id="docHtml">
<p class="oj-doc-ti">REGULATION (EU) 2024/1689 OF THE EUROPEAN PARLIAMENT AND OF THE COUNCIL</p>
<p class="oj-doc-ti">of 13 June 2024</p>
<p class="oj-doc-ti">laying down harmonised rules on artificial intelligence and amending Regulations (EC) No 300/2008 (Artificial Intelligence Act)</p>
<p class="oj-doc-ti">(Text with EEA relevance)</p>
<div class="eli-subdivision" id="rct_2"><table><tbody><tr>
<td><p class="oj-normal">(2)</p></td>
<td><p class="oj-normal">This Regulation should be applied in accordance with Union values.</p></td>
</tr></tbody></table></div>
<div class="eli-subdivision" id="rct_1"><table><tbody><tr>
<td><p class="oj-normal">(1)</p></td>
<td><p class="oj-normal">The purpose of this Regulation is to improve the functioning of the internal market.</p></td>
</tr></tbody></table></div>
<div id="enc_1">
<div id="cpt_I">
<p class="oj-ti-section-1">CHAPTER I</p>
<div class="eli-title" id="cpt_I.tit_1"><p class="oj-ti-section-2"><span class="oj-bold">GENERAL PROVISIONS</span></p></div>
<div class="eli-subdivision" id="art_1">
<p class="oj-ti-art">Article 1</p>
<div class="eli-title" id="art_1.tit_1"><p class="oj-sti-art">Subject matter</p></div>
<div id="001.001"><p class="oj-normal">1. The purpose of this Regulation is to improve the functioning of the internal market.</p></div>
</div>
</div>
<div id="cpt_III">
<p class="oj-ti-section-1">CHAPTER III</p>
<div class="eli-title"><p class="oj-ti-section-2">HIGH-RISK AI SYSTEMS</p></div>
<div id="cpt_III.sct_1">
<p class="oj-ti-section-1">SECTION 1</p>
<div class="eli-title"><p class="oj-ti-section-2">Classification</p></div>
<div class="eli-subdivision" id="art_6">
<p class="oj-ti-art">Article 6</p>
<div class="eli-title"><p class="oj-sti-art">Classification rules for high-risk AI systems</p></div>
<p class="oj-normal" onclick="steal()">High-risk systems are listed in <a href="javascript:void(0)">Annex III</a>.</p>
<script>alert(1)</script>
</div>
</div>
</div>
</div>
<div class="eli-container" id="anx_I">
<p class="oj-doc-ti">ANNEX I</p>
<p class="oj-ti-grseq-1">List of Union harmonisation legislation</p>
<p class="oj-normal">Section A</p>
</div>
<div class="eli-container" id="anx_III">
<p class="oj-doc-ti">ANNEX III</p>
<p class="oj-ti-grseq-1">High-risk AI systems referred to in Article 6(2)</p>
<p class="oj-normal">Biometrics.</p>
</div>
</div></body></html>`

const consolidatedFixture = `<html><body><div class="eli-container">
<p class="title-doc-first">Regulation (EU) 2016/679 of the European Parliament and of the Council of 27 April 2016 on the protection of natural persons with regard to the processing of personal data (General Data Protection Regulation)</p>
<div class="eli-subdivision" id="rct_1"><div class="norm"><span class="no-parag">(1)</span><div class="inline-element"><p class="norm">The protection of natural persons is a fundamental right.</p></div></div></div>
<div class="eli-subdivision" id="rct_x"><p class="norm">Unnumbered consideration about data flows.</p></div>
<p class="title-division-1">CHAPTER I</p>
<p class="title-division-2">General provisions</p>
<div class="eli-subdivision" id="art_1">
<p class="title-article-norm">Article 1</p>
<div class="eli-title"><p class="stitle-article-norm">Subject-matter and objectives</p></div>
<div class="norm">This Regulation lays down rules relating to the protection of natural persons.</div>
</div>
<p class="title-division-1">TITLE II</p>
<div class="eli-subdivision" id="art_2">
<p class="title-article-norm">Article 2</p>
<div class="norm">This Regulation applies to the processing of personal data.</div>
</div>
<div class="eli-container" id="anx_1">
<p class="title-annex-1">ANNEX</p>
<p class="title-annex-2">Correlation table</p>
<p class="norm">Directive 95/46/EC</p>
</div>
</div></body></html>`

func TestParseAny_OJLayout(t *testing.T) {
	doc := ParseAny(ojFixture)

	if doc.Title != "Artificial Intelligence Act — Regulation (EU) 2024/1689" {
		t.Errorf("Title: got %q", doc.Title)
	}
	if doc.SourceURL != "https://eur-lex.europa.eu/eli/reg/2024/1689/oj" {
		t.Errorf("SourceURL: got %q", doc.SourceURL)
	}

	stats := doc.Statistics()
	t.Logf("Parsed %d articles, %d recitals, %d annexes", stats.Articles, stats.Recitals, stats.Annexes)

	if stats.Articles != 2 {
		t.Fatalf("Article count mismatch: got %d, want 2", stats.Articles)
	}
	if stats.Recitals != 2 {
		t.Fatalf("Recital count mismatch: got %d, want 2", stats.Recitals)
	}
	if stats.Annexes != 2 {
		t.Fatalf("Annex count mismatch: got %d, want 2", stats.Annexes)
	}
	if stats.Chapters != 2 || stats.Sections != 1 {
		t.Errorf("Division counts: got %d chapters, %d sections, want 2 and 1", stats.Chapters, stats.Sections)
	}
}

func TestParseAny_OJArticles(t *testing.T) {
	doc := ParseAny(ojFixture)

	first := doc.Articles[0]
	if first.Number != "1" {
		t.Errorf("Article number: got %q, want %q", first.Number, "1")
	}
	if first.Title != "Subject matter" {
		t.Errorf("Article title: got %q, want %q", first.Title, "Subject matter")
	}
	wantChapter := Heading{Number: "I", Title: "GENERAL PROVISIONS"}
	if first.Division.Chapter != wantChapter {
		t.Errorf("Chapter: got %+v, want %+v", first.Division.Chapter, wantChapter)
	}
	if !first.Division.Section.IsZero() {
		t.Errorf("Section: expected empty, got %+v", first.Division.Section)
	}
	if !strings.Contains(first.BodyHTML, "improve the functioning of the internal market") {
		t.Errorf("BodyHTML missing body text: %q", first.BodyHTML)
	}

	sixth := doc.Articles[1]
	if sixth.Number != "6" {
		t.Errorf("Article number: got %q, want %q", sixth.Number, "6")
	}
	wantDivision := Division{
		Chapter: Heading{Number: "III", Title: "HIGH-RISK AI SYSTEMS"},
		Section: Heading{Number: "1", Title: "Classification"},
	}
	if sixth.Division != wantDivision {
		t.Errorf("Division: got %+v, want %+v", sixth.Division, wantDivision)
	}
}

func TestParseAny_SanitizesBody(t *testing.T) {
	doc := ParseAny(ojFixture)
	body := doc.Article("6").BodyHTML

	for _, forbidden := range []string{"<script", "alert(1)", "onclick", "javascript:"} {
		if strings.Contains(body, forbidden) {
			t.Errorf("BodyHTML should not contain %q: %s", forbidden, body)
		}
	}
	if !strings.Contains(body, `class="oj-normal"`) {
		t.Errorf("BodyHTML should keep classes: %s", body)
	}
	if !strings.Contains(body, "Annex III") || strings.Contains(body, "href") {
		t.Errorf("BodyHTML should keep the link text without its href: %s", body)
	}
}

func TestParseAny_SanitizesScriptURLs(t *testing.T) {
	cases := map[string]string{
		"tab in scheme":     `<a href="java&#x09;script:alert(1)">x</a>`,
		"newline in scheme": `<a href="java&#x0A;script:alert(1)">x</a>`,
		"mixed case":        `<a href=" JaVaScRiPt:alert(1)">x</a>`,
		"data url":          `<a href="data:text/html;base64,PHNjcmlwdD5hbGVydCgxKTwvc2NyaXB0Pg==">x</a>`,
		"svg animate":       `<svg><animate attributeName="href" values="javascript:alert(1)"/></svg>`,
		"math link":         `<math><mtext><a href="javascript:alert(1)">x</a></mtext></math>`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			markup := `<div id="art_1"><p class="oj-ti-art">Article 1</p><p class="oj-normal">See ` + payload + ` here.</p></div>`
			article := ParseAny(markup).Article("1")
			if article == nil {
				t.Fatal("Expected article 1")
			}
			lowered := strings.ToLower(article.BodyHTML)
			for _, forbidden := range []string{"script:", "data:", "<svg", "<animate", "<math", "alert("} {
				if strings.Contains(lowered, forbidden) {
					t.Errorf("BodyHTML should not contain %q: %s", forbidden, article.BodyHTML)
				}
			}
			if !strings.Contains(article.BodyHTML, `class="oj-normal"`) {
				t.Errorf("BodyHTML should keep classes: %s", article.BodyHTML)
			}
		})
	}
}

func TestParseAny_KeepsSafeLinks(t *testing.T) {
	markup := `<div id="art_1"><p class="oj-ti-art">Article 1</p><p>See <a href="https://eur-lex.europa.eu/eli/reg/2016/679/oj">GDPR</a> and <a href="#art_2">Article 2</a>.</p></div>`
	body := ParseAny(markup).Article("1").BodyHTML

	for _, expected := range []string{`href="https://eur-lex.europa.eu/eli/reg/2016/679/oj"`, `href="#art_2"`} {
		if !strings.Contains(body, expected) {
			t.Errorf("BodyHTML should keep %s: %s", expected, body)
		}
	}
}

func TestParseAny_OJRecitalsSorted(t *testing.T) {
	doc := ParseAny(ojFixture)

	want := []Recital{
		{
			Number: "1",
			Text:   "The purpose of this Regulation is to improve the functioning of the internal market.",
			HTML:   `<p class="oj-normal">The purpose of this Regulation is to improve the functioning of the internal market.</p>`,
		},
		{
			Number: "2",
			Text:   "This Regulation should be applied in accordance with Union values.",
			HTML:   `<p class="oj-normal">This Regulation should be applied in accordance with Union values.</p>`,
		},
	}
	for i, expected := range want {
		if *doc.Recitals[i] != expected {
			t.Errorf("Recital %d: got %+v, want %+v", i, *doc.Recitals[i], expected)
		}
	}
}

func TestParseAny_OJAnnexes(t *testing.T) {
	doc := ParseAny(ojFixture)

	annex := doc.Annexes[0]
	if annex.ID != "I" {
		t.Errorf("Annex ID: got %q, want %q", annex.ID, "I")
	}
	if annex.Title != "ANNEX I - List of Union harmonisation legislation" {
		t.Errorf("Annex title: got %q", annex.Title)
	}
	if strings.Contains(annex.HTML, "ANNEX I") {
		t.Errorf("Annex HTML should not repeat the heading: %s", annex.HTML)
	}
	if !strings.Contains(annex.HTML, `class="oj-ti-grseq-1 annex-subtitle"`) {
		t.Errorf("Annex HTML should re-tag the subtitle: %s", annex.HTML)
	}
	if !strings.Contains(annex.HTML, "Section A") {
		t.Errorf("Annex HTML missing body: %s", annex.HTML)
	}

	if doc.Annex("iii") == nil {
		t.Error("Expected Annex lookup to ignore case")
	}
}

func TestParseAny_Deterministic(t *testing.T) {
	first := ParseAny(ojFixture)
	second := ParseAny(ojFixture)
	if !reflect.DeepEqual(first, second) {
		t.Error("Parsing the same input twice should produce equal documents")
	}
}

func TestParseAny_ConsolidatedLayout(t *testing.T) {
	doc := ParseAny(consolidatedFixture)

	if doc.Title != "General Data Protection Regulation — Regulation (EU) 2016/679" {
		t.Errorf("Title: got %q", doc.Title)
	}

	if len(doc.Recitals) != 2 {
		t.Fatalf("Recital count mismatch: got %d, want 2", len(doc.Recitals))
	}
	numbered := doc.Recitals[0]
	if numbered.Number != "1" {
		t.Errorf("Recital number: got %q, want %q", numbered.Number, "1")
	}
	if numbered.Text != "The protection of natural persons is a fundamental right." {
		t.Errorf("Recital text: got %q", numbered.Text)
	}
	if strings.Contains(numbered.HTML, "(1)") {
		t.Errorf("Recital HTML should not include the number marker: %s", numbered.HTML)
	}

	positional := doc.Recitals[1]
	if positional.Number != "2" {
		t.Errorf("Positional recital number: got %q, want %q", positional.Number, "2")
	}

	if len(doc.Articles) != 2 {
		t.Fatalf("Article count mismatch: got %d, want 2", len(doc.Articles))
	}
	first := doc.Articles[0]
	if first.Title != "Subject-matter and objectives" {
		t.Errorf("Article title: got %q", first.Title)
	}
	if first.Division.Chapter != (Heading{Number: "I", Title: "General provisions"}) {
		t.Errorf("Chapter: got %+v", first.Division.Chapter)
	}

	second := doc.Articles[1]
	if second.Title != "" {
		t.Errorf("Article 2 title: expected empty, got %q", second.Title)
	}
	if second.Division.Chapter != (Heading{Number: "TITLE II"}) {
		t.Errorf("Unrecognized heading should open a chapter-level division: got %+v", second.Division.Chapter)
	}

	if len(doc.Annexes) != 1 {
		t.Fatalf("Annex count mismatch: got %d, want 1", len(doc.Annexes))
	}
	if doc.Annexes[0].ID != "ANNEX - Correlation table" {
		t.Errorf("Annex without numeral should fall back to its title: got %q", doc.Annexes[0].ID)
	}
}

func TestParseAny_RecitalTableFragment(t *testing.T) {
	doc := ParseAny(`<div id="rct_1"><table><tr><td>(1)</td><td>Recognition of AI as...</td></tr></table></div>`)

	if len(doc.Recitals) != 1 {
		t.Fatalf("Recital count mismatch: got %d, want 1", len(doc.Recitals))
	}
	want := Recital{Number: "1", Text: "Recognition of AI as...", HTML: "Recognition of AI as..."}
	if *doc.Recitals[0] != want {
		t.Errorf("got %+v, want %+v", *doc.Recitals[0], want)
	}
}

func TestParseAny_ArticleNumberFallback(t *testing.T) {
	doc := ParseAny(`<div class="eli-subdivision"><p class="ti-art">Article</p><p>Text.</p></div>
<div class="eli-subdivision"><p class="ti-art">Article 7a</p><p class="sti-art">Amendments</p></div>`)

	if len(doc.Articles) != 2 {
		t.Fatalf("Article count mismatch: got %d, want 2", len(doc.Articles))
	}
	if doc.Articles[0].Number != "1" {
		t.Errorf("Positional article number: got %q, want %q", doc.Articles[0].Number, "1")
	}
	if doc.Articles[1].Number != "7a" || doc.Articles[1].Title != "Amendments" {
		t.Errorf("Article: got %q %q", doc.Articles[1].Number, doc.Articles[1].Title)
	}
}

func TestParseAny_EmptyAndUnrecognized(t *testing.T) {
	inputs := []string{"", "   ", "plain text without markup", "<html><body><p>Hello</p></body></html>", `{"foo": 1}`, `{"articles": [`}

	for _, input := range inputs {
		doc := ParseAny(input)
		if doc == nil {
			t.Fatalf("ParseAny(%q) returned nil", input)
		}
		if !doc.IsEmpty() || doc.Title != "" {
			t.Errorf("ParseAny(%q): expected empty document, got %+v", input, doc)
		}
		if doc.Articles == nil || doc.Recitals == nil || doc.Annexes == nil {
			t.Errorf("ParseAny(%q): collections should be non-nil", input)
		}
	}
}

func TestParseAny_StructuredJSON(t *testing.T) {
	input := `{"title": "Data Act", "articles": [{"number": 1, "title": "Scope", "bodyHtml": "<p>Scope.</p>"}, null],
		"recitals": [{"number": "5", "text": "five"}, {"number": "a", "text": "lettered"}, {"number": 1, "text": "one"}]}`

	doc := ParseAny(input)

	if doc.Title != "Data Act" {
		t.Errorf("Title: got %q, want %q", doc.Title, "Data Act")
	}
	if len(doc.Articles) != 1 || doc.Articles[0].Number != "1" {
		t.Fatalf("Articles: got %+v", doc.Articles)
	}
	if doc.Annexes == nil {
		t.Error("Annexes should be non-nil when absent from the snapshot")
	}

	var order []string
	for _, recital := range doc.Recitals {
		order = append(order, recital.Number)
	}
	if strings.Join(order, ",") != "a,1,5" {
		t.Errorf("Recital order: got %v, want [a 1 5]", order)
	}
}

func TestParseAny_RoundTrip(t *testing.T) {
	for name, fixture := range map[string]string{"oj": ojFixture, "consolidated": consolidatedFixture} {
		t.Run(name, func(t *testing.T) {
			parsed := ParseAny(fixture)

			data, err := json.Marshal(parsed)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			reparsed := ParseAny(string(data))
			if !reflect.DeepEqual(parsed, reparsed) {
				t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", reparsed, parsed)
			}
		})
	}
}

func TestParseAny_RecitalOrderInvariant(t *testing.T) {
	var builder strings.Builder
	for _, number := range []int{9, 3, 12, 1, 7, 3} {
		builder.WriteString(`<div id="rct_` + strconv.Itoa(number) + `"><table><tr><td>(` + strconv.Itoa(number) + `)</td><td>Recital text.</td></tr></table></div>`)
	}

	doc := ParseAny(builder.String())
	for i := 1; i < len(doc.Recitals); i++ {
		if doc.Recitals[i-1].NumericValue() > doc.Recitals[i].NumericValue() {
			t.Errorf("Recitals out of order at %d: %s before %s", i, doc.Recitals[i-1].Number, doc.Recitals[i].Number)
		}
	}
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()
	doc, err := parser.Parse(strings.NewReader(consolidatedFixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Articles) != 2 {
		t.Errorf("Article count mismatch: got %d, want 2", len(doc.Articles))
	}
}

func TestArticle_PlainText(t *testing.T) {
	article := &Article{BodyHTML: `<p class="oj-ti-art">Article 3</p><p>Definitions&nbsp;apply.</p><table><tr><td>a</td><td>b</td></tr></table>`}

	if got := article.PlainText(); got != "Article 3 Definitions apply. a b" {
		t.Errorf("PlainText: got %q", got)
	}
	if got := PlainText("no &amp; markup"); got != "no & markup" {
		t.Errorf("PlainText: got %q", got)
	}
}

func TestParseAny_AnnexLetterSuffix(t *testing.T) {
	input := `<html><body>
<div class="eli-container" id="anx_IA"><p class="oj-doc-ti">ANNEX IA</p><p class="oj-normal">Inserted annex.</p></div>
<div class="eli-container" id="anx_2a"><p class="oj-doc-ti">ANNEX 2a</p><p class="oj-normal">Numbered annex.</p></div>
<div class="eli-container" id="anx_IV"><p class="oj-doc-ti">ANNEX IV</p><p class="oj-normal">Plain annex.</p></div>
</body></html>`

	doc := ParseAny(input)

	var ids []string
	for _, annex := range doc.Annexes {
		ids = append(ids, annex.ID)
	}
	if strings.Join(ids, ",") != "IA,2A,IV" {
		t.Errorf("Annex IDs: got %v, want [IA 2A IV]", ids)
	}
}

func TestShortTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"on ecodesign requirements for sustainable products (Ecodesign)", "Ecodesign", true},
		{"on harmonised rules (Artificial Intelligence Act) (Text with EEA relevance)", "Artificial Intelligence Act", true},
		{"amending Regulation (EU) No 300/2008", "", false},
		{"Regulation (EC)", "", false},
		{"as referred to in point (a)", "", false},
	}

	for _, tt := range tests {
		got, ok := ShortTitle(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ShortTitle(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
