package match

import (
	"context"
	"strings"
	"testing"
)

type failingCatalogue struct{}

func (failingCatalogue) AllTitles(ctx context.Context) ([]string, error) {
	return nil, ErrStoreUnavailable
}

func (failingCatalogue) PostingsForTitles(ctx context.Context, titles []string) ([]JobPosting, error) {
	return nil, ErrStoreUnavailable
}

func TestAggregateScenario(t *testing.T) {
	t.Parallel()
	cat := NewMemCatalogue([]JobPosting{
		{Title: "Software Engineer", Company: "Google", SalaryRange: "$120k - $180k", Description: "Design and develop scalable software systems."},
		{Title: "Senior Software Engineer", Company: "Amazon", SalaryRange: "$150k - $220k", Description: "Lead technical design and architecture decisions."},
	})
	agg := NewAggregator(cat, Options{})

	result := agg.Aggregate(context.Background(), "Software Engineer")
	if result.MatchCount != 2 {
		t.Fatalf("MatchCount = %d, want 2", result.MatchCount)
	}
	if result.Salary.Min != 120000 || result.Salary.Max != 220000 {
		t.Fatalf("salary = %v-%v, want 120000-220000", result.Salary.Min, result.Salary.Max)
	}
	if result.Salary.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", result.Salary.Currency)
	}
	if len(result.JobExamples) != 2 {
		t.Fatalf("job examples = %d, want 2", len(result.JobExamples))
	}
}

func TestAggregateZeroState(t *testing.T) {
	t.Parallel()
	cat := NewMemCatalogue([]JobPosting{
		{Title: "Marketing Manager", Company: "HubSpot", SalaryRange: "$60k - $140k"},
	})
	agg := NewAggregator(cat, Options{})

	result := agg.Aggregate(context.Background(), "Nonexistent Job Title Xyz123")
	if result.MatchCount != 0 {
		t.Fatalf("MatchCount = %d, want 0", result.MatchCount)
	}
	if result.Salary.Min != 0 || result.Salary.Max != 0 || result.Salary.Currency != "USD" {
		t.Fatalf("unexpected salary zero-state: %+v", result.Salary)
	}
	if len(result.JobExamples) != 0 {
		t.Fatalf("expected no job examples, got %d", len(result.JobExamples))
	}
	if !result.StoreAvailable {
		t.Fatal("a miss against a healthy store should report the store available")
	}
}

func TestAggregateStoreUnavailable(t *testing.T) {
	t.Parallel()
	agg := NewAggregator(failingCatalogue{}, Options{})
	result := agg.Aggregate(context.Background(), "Software Engineer")
	if result.MatchCount != 0 || len(result.JobExamples) != 0 {
		t.Fatalf("store failure should degrade to zero result, got %+v", result)
	}
	if result.StoreAvailable {
		t.Fatal("store failure should be reported")
	}
}

// fetchFailingCatalogue lists titles but fails on the posting fetch, the
// shape of a store dropping mid-lookup.
type fetchFailingCatalogue struct {
	titles []string
}

func (c fetchFailingCatalogue) AllTitles(ctx context.Context) ([]string, error) {
	return c.titles, nil
}

func (c fetchFailingCatalogue) PostingsForTitles(ctx context.Context, titles []string) ([]JobPosting, error) {
	return nil, ErrStoreUnavailable
}

func TestAggregateFetchFailureDegradesToZero(t *testing.T) {
	t.Parallel()
	agg := NewAggregator(fetchFailingCatalogue{titles: []string{"Software Engineer"}}, Options{})
	result := agg.Aggregate(context.Background(), "Software Engineer")
	if len(result.MatchedTitles) != 0 {
		t.Fatalf("fetch failure should leave MatchedTitles empty, got %v", result.MatchedTitles)
	}
	if result.MatchCount != 0 || len(result.JobExamples) != 0 {
		t.Fatalf("fetch failure should degrade to zero result, got %+v", result)
	}
}

func TestAggregateExampleCap(t *testing.T) {
	t.Parallel()
	postings := make([]JobPosting, 0, 8)
	for i := 0; i < 8; i++ {
		postings = append(postings, JobPosting{
			Title:       "Data Scientist",
			Company:     "Acme",
			SalaryRange: "$130k - $190k",
		})
	}
	agg := NewAggregator(NewMemCatalogue(postings), Options{})

	result := agg.Aggregate(context.Background(), "Data Scientist")
	if result.MatchCount != 8 {
		t.Fatalf("MatchCount = %d, want 8", result.MatchCount)
	}
	if len(result.JobExamples) != 5 {
		t.Fatalf("job examples = %d, want capped at 5", len(result.JobExamples))
	}
	if result.MatchCount < len(result.JobExamples) {
		t.Fatalf("match count %d below example count %d", result.MatchCount, len(result.JobExamples))
	}
}

func TestAggregateTruncatesDescriptions(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 450)
	agg := NewAggregator(NewMemCatalogue([]JobPosting{
		{Title: "DevOps Engineer", Company: "Google", SalaryRange: "$120k - $180k", Description: long},
	}), Options{})

	result := agg.Aggregate(context.Background(), "DevOps Engineer")
	if len(result.JobExamples) != 1 {
		t.Fatalf("expected one example, got %d", len(result.JobExamples))
	}
	desc := result.JobExamples[0].Description
	if desc != strings.Repeat("a", 300)+"..." {
		t.Fatalf("unexpected truncation: %d chars, suffix %q", len(desc), desc[len(desc)-5:])
	}
}

func TestTruncateDescriptionBoundary(t *testing.T) {
	t.Parallel()
	exact := strings.Repeat("b", 300)
	if got := TruncateDescription(exact, 300); got != exact {
		t.Fatalf("a 300-char description must pass through unmodified")
	}
	if got := TruncateDescription("short", 300); got != "short" {
		t.Fatalf("short description changed: %q", got)
	}
}

func TestAggregateSalaryPoolSkipsMalformedText(t *testing.T) {
	t.Parallel()
	agg := NewAggregator(NewMemCatalogue([]JobPosting{
		{Title: "Research Scientist", Company: "DeepMind", SalaryRange: "competitive"},
		{Title: "Research Scientist", Company: "OpenAI", SalaryRange: "$140k - $220k"},
	}), Options{})

	result := agg.Aggregate(context.Background(), "Research Scientist")
	if result.MatchCount != 2 {
		t.Fatalf("MatchCount = %d, want 2 (malformed salary still counts)", result.MatchCount)
	}
	if result.Salary.Min != 140000 || result.Salary.Max != 220000 {
		t.Fatalf("salary = %v-%v, want 140000-220000", result.Salary.Min, result.Salary.Max)
	}
}
