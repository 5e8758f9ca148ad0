package match

import (
	"context"
	"errors"
)

// ErrStoreUnavailable indicates the job catalogue could not be opened or
// queried. Callers treat it as "no data" rather than a hard failure.
var ErrStoreUnavailable = errors.New("job catalogue unavailable")

// JobPosting is a single row in the job catalogue. Postings are loaded in
// bulk by an external loader and are immutable afterwards.
type JobPosting struct {
	Title       string `json:"job_title"`
	Company     string `json:"company"`
	SalaryRange string `json:"salary_range"`
	Description string `json:"description"`
}

// Catalogue is the read-only view of the job posting store. AllTitles
// returns every posting title in storage order with duplicates preserved;
// PostingsForTitles returns all postings whose title is in the given set,
// also in storage order.
type Catalogue interface {
	AllTitles(ctx context.Context) ([]string, error)
	PostingsForTitles(ctx context.Context, titles []string) ([]JobPosting, error)
}

// MemCatalogue is an in-memory Catalogue used by tests and by deployments
// that run without a database.
type MemCatalogue struct {
	Postings []JobPosting
}

// NewMemCatalogue builds a MemCatalogue from a posting slice. The slice
// order becomes the catalogue storage order.
func NewMemCatalogue(postings []JobPosting) *MemCatalogue {
	return &MemCatalogue{Postings: postings}
}

func (m *MemCatalogue) AllTitles(ctx context.Context) ([]string, error) {
	titles := make([]string, 0, len(m.Postings))
	for _, p := range m.Postings {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

func (m *MemCatalogue) PostingsForTitles(ctx context.Context, titles []string) ([]JobPosting, error) {
	wanted := make(map[string]bool, len(titles))
	for _, t := range titles {
		wanted[t] = true
	}
	var out []JobPosting
	for _, p := range m.Postings {
		if wanted[p.Title] {
			out = append(out, p)
		}
	}
	return out, nil
}
