package extract

import (
	"strings"
	"testing"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

const keywordCorpus = "Machine learning is the hot topic in data science. " +
	"The training data must be clean. " +
	"Machine learning models need the clean training data."

func TestRakeKeywordsScoresMultiWordPhrases(t *testing.T) {
	keywords := extractKeywords(keywordCorpus, &kreuzberg.KeywordConfig{
		Algorithm: kreuzberg.KeywordAlgorithmRake,
	})
	if len(keywords) == 0 {
		t.Fatal("no keywords")
	}
	if keywords[0].Score != 1 {
		t.Errorf("top score = %g, want 1 after normalization", keywords[0].Score)
	}
	found := false
	for _, kw := range keywords {
		if kw.Text == "machine learning" || kw.Text == "machine learning models need" {
			found = true
		}
		if kw.Score <= 0 || kw.Score > 1 {
			t.Errorf("score for %q = %g out of (0, 1]", kw.Text, kw.Score)
		}
	}
	if !found {
		t.Errorf("no machine-learning phrase in %v", keywords)
	}
}

func TestYakeKeywordsSingleWords(t *testing.T) {
	keywords := extractKeywords(keywordCorpus, &kreuzberg.KeywordConfig{
		Algorithm: kreuzberg.KeywordAlgorithmYake,
	})
	if len(keywords) == 0 {
		t.Fatal("no keywords")
	}
	if keywords[0].Score != 1 {
		t.Errorf("top score = %g, want 1", keywords[0].Score)
	}
	seen := map[string]bool{}
	for _, kw := range keywords {
		seen[kw.Text] = true
	}
	if !seen["training"] {
		t.Errorf(`"training" missing from %v`, keywords)
	}
	// Stopwords never surface as keywords.
	for _, stop := range []string{"the", "and", "that"} {
		if seen[stop] {
			t.Errorf("stopword %q surfaced", stop)
		}
	}
}

func TestExtractKeywordsHonorsLimits(t *testing.T) {
	two := 2
	half := 0.5
	keywords := extractKeywords(keywordCorpus, &kreuzberg.KeywordConfig{MaxKeywords: &two})
	if len(keywords) > 2 {
		t.Errorf("got %d keywords, limit 2", len(keywords))
	}
	keywords = extractKeywords(keywordCorpus, &kreuzberg.KeywordConfig{MinScore: &half})
	for _, kw := range keywords {
		if kw.Score < 0.5 {
			t.Errorf("%q scored %g below min_score", kw.Text, kw.Score)
		}
	}
}

func TestExtractKeywordsEmptyContent(t *testing.T) {
	if got := extractKeywords("   ", nil); got != nil {
		t.Errorf("got %v for blank content", got)
	}
}

func TestRakeMaxWordsPerPhrase(t *testing.T) {
	one := 1
	keywords := extractKeywords(keywordCorpus, &kreuzberg.KeywordConfig{
		Algorithm: kreuzberg.KeywordAlgorithmRake,
		Rake:      &kreuzberg.RakeParams{MaxWordsPerPhrase: &one},
	})
	for _, kw := range keywords {
		if len(strings.Fields(kw.Text)) > 1 {
			t.Errorf("phrase %q exceeds one word", kw.Text)
		}
	}
}
