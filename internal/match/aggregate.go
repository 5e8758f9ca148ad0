package match

import (
	"context"
	"log"
)

// Options tunes the aggregation pipeline. Zero values fall back to the
// defaults the original catalogue data was tuned against.
type Options struct {
	Threshold        float64
	MaxCandidates    int
	ExampleLimit     int
	DescriptionLimit int
}

const (
	defaultExampleLimit     = 5
	defaultDescriptionLimit = 300
)

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.ExampleLimit <= 0 {
		o.ExampleLimit = defaultExampleLimit
	}
	if o.DescriptionLimit <= 0 {
		o.DescriptionLimit = defaultDescriptionLimit
	}
	return o
}

// SalaryRange is the min/max of every salary value parsed across matched
// postings. Both bounds are zero when nothing parsed.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// JobExample is one representative posting attached to a match result. The
// description is truncated for display.
type JobExample struct {
	Title       string `json:"job_title"`
	Company     string `json:"company"`
	SalaryRange string `json:"salary_range"`
	Description string `json:"description"`
}

// MatchResult aggregates everything the catalogue knows about a career
// title: the titles that matched lexically, the salary range pooled across
// their postings, a capped list of example postings, and the uncapped total
// posting count.
type MatchResult struct {
	MatchedTitles []string     `json:"matched_titles,omitempty"`
	Salary        SalaryRange  `json:"salary"`
	JobExamples   []JobExample `json:"job_examples"`
	MatchCount    int          `json:"db_match_count"`

	// StoreAvailable reports whether the catalogue answered the lookup.
	// It distinguishes a miss from a store failure and stays off the wire.
	StoreAvailable bool `json:"-"`
}

// ZeroResult is what aggregation degrades to when the catalogue is
// unavailable or nothing matches.
func ZeroResult() MatchResult {
	return MatchResult{
		Salary:      SalaryRange{Currency: "USD"},
		JobExamples: []JobExample{},
	}
}

// Aggregator reconciles a free-form career title against the job catalogue.
type Aggregator struct {
	catalogue Catalogue
	opts      Options
	logger    *log.Logger
}

// NewAggregator wires an Aggregator to a catalogue. opts fields left zero
// use the package defaults.
func NewAggregator(catalogue Catalogue, opts Options) *Aggregator {
	return &Aggregator{
		catalogue: catalogue,
		opts:      opts.withDefaults(),
		logger:    log.New(log.Writer(), "[MATCH] ", log.LstdFlags),
	}
}

// Aggregate looks up queryTitle in the catalogue and returns the pooled
// salary range, example postings and match count. It never fails: an
// unavailable store, an unmatched title or unparseable salary text each
// degrade their slice of the output to the zero state.
func (a *Aggregator) Aggregate(ctx context.Context, queryTitle string) MatchResult {
	result := ZeroResult()
	if a.catalogue == nil {
		return result
	}

	titles, err := a.catalogue.AllTitles(ctx)
	if err != nil {
		a.logger.Printf("catalogue titles unavailable for %q: %v", queryTitle, err)
		return result
	}
	result.StoreAvailable = true

	matched := RankTitles(queryTitle, titles, a.opts.Threshold, a.opts.MaxCandidates)
	if len(matched) == 0 {
		return result
	}

	postings, err := a.catalogue.PostingsForTitles(ctx, matched)
	if err != nil {
		a.logger.Printf("catalogue fetch failed for %q: %v", queryTitle, err)
		result.StoreAvailable = false
		return result
	}
	result.MatchedTitles = matched

	var pool []float64
	for _, p := range postings {
		pool = append(pool, ParseSalary(p.SalaryRange)...)
		if len(result.JobExamples) < a.opts.ExampleLimit {
			result.JobExamples = append(result.JobExamples, JobExample{
				Title:       p.Title,
				Company:     p.Company,
				SalaryRange: p.SalaryRange,
				Description: TruncateDescription(p.Description, a.opts.DescriptionLimit),
			})
		}
	}
	result.MatchCount = len(postings)

	if len(pool) > 0 {
		min, max := pool[0], pool[0]
		for _, v := range pool[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		result.Salary.Min = min
		result.Salary.Max = max
	}

	return result
}

// TruncateDescription caps s at limit characters, appending an ellipsis
// marker when something was cut. Limits are counted in runes so multi-byte
// text is never split.
func TruncateDescription(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
