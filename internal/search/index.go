// Package search maintains an in-memory full-text index over the job
// catalogue so the API can answer free-form description queries.
package search

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/pathfinder-app/pathfinder/internal/match"
)

// Hit is one ranked result from a catalogue search.
type Hit struct {
	Title   string  `json:"job_title"`
	Company string  `json:"company"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// Index wraps a memory-only bleve index over job postings. Rebuilds
// replace the whole index, reads are safe concurrently.
type Index struct {
	mu    sync.RWMutex
	bleve bleve.Index
	meta  map[string]match.JobPosting
}

type indexedPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("bleve: %w", err)
	}
	return &Index{bleve: idx, meta: map[string]match.JobPosting{}}, nil
}

// Rebuild replaces the index contents with the given postings.
func (ix *Index) Rebuild(postings []match.JobPosting) error {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("bleve: %w", err)
	}
	meta := make(map[string]match.JobPosting, len(postings))
	batch := idx.NewBatch()
	for i, p := range postings {
		id := strconv.Itoa(i)
		if err := batch.Index(id, indexedPosting{
			Title:       p.Title,
			Company:     p.Company,
			Description: p.Description,
		}); err != nil {
			return fmt.Errorf("index posting %d: %w", i, err)
		}
		meta[id] = p
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}

	ix.mu.Lock()
	old := ix.bleve
	ix.bleve = idx
	ix.meta = meta
	ix.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Size reports how many postings are currently indexed.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.meta)
}

// Search runs a query-string search and returns up to k hits.
func (ix *Index) Search(q string, k int) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	res, err := ix.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	var out []Hit
	for i, hit := range res.Hits {
		doc, ok := ix.meta[hit.ID]
		if !ok {
			continue
		}
		out = append(out, Hit{
			Title:   doc.Title,
			Company: doc.Company,
			Snippet: match.TruncateDescription(doc.Description, 160),
			Score:   hit.Score,
			Rank:    i + 1,
		})
	}
	return out, nil
}
