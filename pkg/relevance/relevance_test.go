package relevance

import (
	"reflect"
	"testing"

	"github.com/coolbeans/lexnav/pkg/extract"
)

func testArticles() []*extract.Article {
	return []*extract.Article{
		{
			Number:   "35",
			Title:    "Data protection impact assessment",
			BodyHTML: "<p>The controller shall carry out an assessment of the impact of the envisaged processing operations on the protection of personal data.</p>",
		},
		{
			Number:   "74",
			Title:    "Market surveillance",
			BodyHTML: "<p>Market surveillance authorities shall control products placed on the market.</p>",
		},
		{
			Number:   "99",
			Title:    "Penalties",
			BodyHTML: "<p>Member States shall lay down rules on penalties applicable to infringements.</p>",
		},
	}
}

func TestBuildRelevanceMap_ImpactAssessment(t *testing.T) {
	recital := &extract.Recital{Number: "84", Text: "Impact assessments for high-risk processing should be carried out by the controller."}

	result := BuildRelevanceMap(testArticles(), []*extract.Recital{recital})

	assigned := result.RecitalsFor("35")
	if len(assigned) != 1 {
		t.Fatalf("Expected recital to be assigned to Article 35, got map %+v", result)
	}
	if assigned[0].Recital != recital {
		t.Error("Assignment should reference the input recital")
	}
	if assigned[0].RelevanceScore <= DefaultThreshold {
		t.Errorf("Score %f should exceed the threshold", assigned[0].RelevanceScore)
	}
	wantKeywords := []string{"controller", "impact", "processing"}
	if !reflect.DeepEqual(assigned[0].Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", assigned[0].Keywords, wantKeywords)
	}
	if len(result) != 1 {
		t.Errorf("Only Article 35 should have assignments, got %d articles", len(result))
	}
}

func TestBuild_Exclusivity(t *testing.T) {
	recitals := []*extract.Recital{
		{Number: "1", Text: "The controller and processing, market surveillance."},
		{Number: "2", Text: "Penalties for infringements."},
		{Number: "3", Text: "Impact assessments for processing by the controller."},
	}

	result := BuildRelevanceMap(testArticles(), recitals)

	for _, recital := range recitals {
		if articles := result.ArticlesFor(recital.Number); len(articles) > 1 {
			t.Errorf("Recital %s assigned to %d articles: %v", recital.Number, len(articles), articles)
		}
	}
	if got := result.ArticlesFor("1"); !reflect.DeepEqual(got, []string{"74"}) {
		t.Errorf("Recital 1 should go to its best match Article 74, got %v", got)
	}
	if got := result.ArticlesFor("2"); !reflect.DeepEqual(got, []string{"99"}) {
		t.Errorf("Recital 2 should go to Article 99, got %v", got)
	}
}

func TestBuild_NonExclusive(t *testing.T) {
	recital := &extract.Recital{Number: "1", Text: "The controller and processing, market surveillance."}
	opts := DefaultOptions()
	opts.Exclusive = false

	result := Build(testArticles(), []*extract.Recital{recital}, opts)

	if got := result.ArticlesFor("1"); !reflect.DeepEqual(got, []string{"35", "74"}) {
		t.Errorf("Non-exclusive mode should assign to every article clearing the threshold, got %v", got)
	}
}

func TestBuild_Threshold(t *testing.T) {
	recitals := []*extract.Recital{
		{Number: "1", Text: "The controller and processing, market surveillance."},
		{Number: "2", Text: "Penalties for infringements."},
		{Number: "3", Text: "Nothing in common with anything above."},
	}

	for _, exclusive := range []bool{true, false} {
		opts := DefaultOptions()
		opts.Exclusive = exclusive
		for article, assigned := range Build(testArticles(), recitals, opts) {
			for _, relevant := range assigned {
				if relevant.RelevanceScore <= DefaultThreshold {
					t.Errorf("Article %s: recital %s has score %f at or below threshold", article, relevant.Recital.Number, relevant.RelevanceScore)
				}
			}
		}
	}

	strict := DefaultOptions()
	strict.Threshold = 0.99
	if result := Build(testArticles(), recitals, strict); result.Assignments() != 0 {
		t.Errorf("Expected no assignments with a 0.99 threshold, got %d", result.Assignments())
	}
}

func TestBuild_TieKeepsFirstArticle(t *testing.T) {
	articles := []*extract.Article{
		{Number: "50", Title: "Transparency", BodyHTML: "Providers shall inform users."},
		{Number: "51", Title: "Transparency", BodyHTML: "Providers shall inform users."},
		{Number: "99", Title: "Penalties", BodyHTML: "Rules on penalties."},
	}
	recital := &extract.Recital{Number: "1", Text: "Transparency towards users."}

	result := BuildRelevanceMap(articles, []*extract.Recital{recital})

	if got := result.ArticlesFor("1"); !reflect.DeepEqual(got, []string{"50"}) {
		t.Errorf("Equal scores should keep the first article, got %v", got)
	}
}

func TestBuild_BucketsSortedDescending(t *testing.T) {
	recitals := []*extract.Recital{
		{Number: "1", Text: "Processing by the controller."},
		{Number: "2", Text: "Data protection impact assessment of personal data."},
	}

	assigned := BuildRelevanceMap(testArticles(), recitals).RecitalsFor("35")
	if len(assigned) != 2 {
		t.Fatalf("Expected both recitals on Article 35, got %d", len(assigned))
	}
	if assigned[0].RelevanceScore < assigned[1].RelevanceScore {
		t.Errorf("Bucket not sorted descending: %f before %f", assigned[0].RelevanceScore, assigned[1].RelevanceScore)
	}
	if assigned[0].Recital.Number != "2" {
		t.Errorf("Recital 2 should rank first, got %s", assigned[0].Recital.Number)
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	recitals := []*extract.Recital{{Number: "1", Text: "Processing by the controller."}}

	if result := BuildRelevanceMap(nil, recitals); result == nil || len(result) != 0 {
		t.Errorf("Expected empty map without articles, got %+v", result)
	}
	if result := BuildRelevanceMap(testArticles(), nil); result == nil || len(result) != 0 {
		t.Errorf("Expected empty map without recitals, got %+v", result)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	recitals := []*extract.Recital{
		{Number: "1", Text: "The controller and processing, market surveillance."},
		{Number: "2", Text: "Penalties for infringements."},
	}
	articles := testArticles()

	if !reflect.DeepEqual(BuildRelevanceMap(articles, recitals), BuildRelevanceMap(articles, recitals)) {
		t.Error("Repeated builds over the same input should be equal")
	}
}
