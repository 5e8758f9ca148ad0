package search

import (
	"testing"

	"github.com/pathfinder-app/pathfinder/internal/match"
)

func samplePostings() []match.JobPosting {
	return []match.JobPosting{
		{Title: "Data Scientist", Company: "Acme", Description: "Build machine learning models for churn prediction."},
		{Title: "Backend Engineer", Company: "Globex", Description: "Design REST services in Go with Postgres."},
		{Title: "Frontend Engineer", Company: "Initech", Description: "React dashboards and design systems."},
	}
}

func TestSearchFindsDescriptionTerms(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if err := ix.Rebuild(samplePostings()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := ix.Size(); got != 3 {
		t.Fatalf("size = %d, want 3", got)
	}

	hits, err := ix.Search("machine learning", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].Title != "Data Scientist" {
		t.Fatalf("top hit = %q, want Data Scientist", hits[0].Title)
	}
	if hits[0].Rank != 1 {
		t.Fatalf("top hit rank = %d, want 1", hits[0].Rank)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	hits, err := ix.Search("anything", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if err := ix.Rebuild(samplePostings()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if err := ix.Rebuild([]match.JobPosting{{Title: "Site Reliability Engineer", Company: "Hooli", Description: "Kubernetes and incident response."}}); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if got := ix.Size(); got != 1 {
		t.Fatalf("size after rebuild = %d, want 1", got)
	}
	hits, err := ix.Search("machine learning", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("stale hits after rebuild: %d", len(hits))
	}
}
