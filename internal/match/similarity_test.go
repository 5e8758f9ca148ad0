package match

import (
	"testing"
)

var catalogueTitles = []string{
	"Software Engineer",
	"Senior Software Engineer",
	"Software Developer",
	"Data Scientist",
	"Marketing Manager",
	"Product Manager",
}

func TestRankTitlesExactMatchFirst(t *testing.T) {
	t.Parallel()
	got := RankTitles("Software Engineer", catalogueTitles, DefaultThreshold, DefaultMaxCandidates)
	if len(got) == 0 {
		t.Fatalf("expected matches for exact catalogue title")
	}
	if got[0] != "Software Engineer" {
		t.Fatalf("exact match should rank first, got %q", got[0])
	}
}

func TestRankTitlesExactMatchSurvivesHighThreshold(t *testing.T) {
	t.Parallel()
	got := RankTitles("Software Engineer", catalogueTitles, 1.0, DefaultMaxCandidates)
	if len(got) != 1 || got[0] != "Software Engineer" {
		t.Fatalf("threshold 1.0 should keep only the identical title, got %v", got)
	}

	// Small vocabularies where the self-cosine rounds to just under 1 must
	// still keep the identical title at threshold 1.0.
	corpora := [][]string{
		{"Software Engineer", "Senior Software Engineer", "Data Analyst Intern"},
		{"Software Engineer", "Senior Software Engineer"},
		{"Data Scientist", "Senior Data Scientist", "Data Engineer"},
		{"Marketing Manager", "Senior Marketing Manager", "Marketing Analyst", "Product Manager"},
	}
	for _, titles := range corpora {
		got := RankTitles(titles[0], titles, 1.0, DefaultMaxCandidates)
		found := false
		for _, title := range got {
			if title == titles[0] {
				found = true
			}
		}
		if !found {
			t.Fatalf("identical title %q dropped at threshold 1.0 from %v, got %v", titles[0], titles, got)
		}
	}
}

func TestRankTitlesThresholdMonotonicity(t *testing.T) {
	t.Parallel()
	thresholds := []float64{0.0, 0.1, 0.2, 0.4, 0.6, 0.8, 1.0}
	prev := len(catalogueTitles) + 1
	for _, th := range thresholds {
		got := RankTitles("Senior Software Engineer", catalogueTitles, th, 0)
		if len(got) > prev {
			t.Fatalf("raising threshold to %v grew the result set: %d > %d", th, len(got), prev)
		}
		prev = len(got)
	}
}

func TestRankTitlesNoSharedVocabulary(t *testing.T) {
	t.Parallel()
	got := RankTitles("Zymurgist", catalogueTitles, DefaultThreshold, DefaultMaxCandidates)
	if len(got) != 0 {
		t.Fatalf("expected no matches for disjoint vocabulary, got %v", got)
	}
}

func TestRankTitlesEmptyCatalogue(t *testing.T) {
	t.Parallel()
	if got := RankTitles("Software Engineer", nil, DefaultThreshold, DefaultMaxCandidates); got != nil {
		t.Fatalf("empty catalogue should yield nil, got %v", got)
	}
}

func TestRankTitlesMaxCandidates(t *testing.T) {
	t.Parallel()
	titles := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		titles = append(titles, "Software Engineer")
	}
	got := RankTitles("Software Engineer", titles, 0.2, 10)
	if len(got) != 10 {
		t.Fatalf("expected cap at 10 candidates, got %d", len(got))
	}
}

func TestRankTitlesKeepsCatalogueOrderOnTies(t *testing.T) {
	t.Parallel()
	titles := []string{"Backend Engineer", "Frontend Engineer"}
	got := RankTitles("Platform Engineer", titles, 0.01, 10)
	if len(got) != 2 {
		t.Fatalf("expected both engineer titles, got %v", got)
	}
	if got[0] != "Backend Engineer" || got[1] != "Frontend Engineer" {
		t.Fatalf("equal scores should keep catalogue order, got %v", got)
	}
}
