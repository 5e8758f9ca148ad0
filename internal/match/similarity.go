package match

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Default tuning for title similarity. Both are overridable through Options.
const (
	DefaultThreshold     = 0.2
	DefaultMaxCandidates = 10
)

// scoreEpsilon absorbs float rounding when a cosine should be exactly 1.
const scoreEpsilon = 1e-9

var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// RankTitles scores every catalogue title against query using TF-IDF cosine
// similarity over a shared vocabulary (the query is document zero of the
// corpus). Titles scoring at or above threshold are returned in descending
// score order, ties keeping catalogue order, truncated to maxCandidates.
//
// An empty catalogue, an empty query vocabulary, or a query sharing no terms
// with any title yields an empty result. A query byte-identical to a
// catalogue title always scores 1.0.
func RankTitles(query string, titles []string, threshold float64, maxCandidates int) []string {
	if len(titles) == 0 {
		return nil
	}

	corpus := make([][]string, 0, len(titles)+1)
	corpus = append(corpus, tokenize(query))
	for _, t := range titles {
		corpus = append(corpus, tokenize(t))
	}

	vocab, df := buildVocabulary(corpus)
	if len(vocab) == 0 {
		return nil
	}
	idf := inverseDocumentFrequency(df, len(corpus))

	queryVec := vectorize(corpus[0], vocab, idf)
	if queryVec == nil {
		return nil
	}

	type scored struct {
		title string
		score float64
		pos   int
	}
	var kept []scored
	for i, t := range titles {
		vec := vectorize(corpus[i+1], vocab, idf)
		score := dot(queryVec, vec)
		// The cosine of two identical normalised vectors can round to just
		// under 1, which would drop a byte-identical title at threshold 1.0.
		if score > 1-scoreEpsilon {
			score = 1
		}
		if score >= threshold {
			kept = append(kept, scored{title: t, score: score, pos: i})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	if maxCandidates > 0 && len(kept) > maxCandidates {
		kept = kept[:maxCandidates]
	}

	out := make([]string, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.title)
	}
	return out
}

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// buildVocabulary assigns an index to every distinct term and counts the
// number of corpus documents containing each term.
func buildVocabulary(corpus [][]string) (map[string]int, []int) {
	vocab := make(map[string]int)
	var df []int
	for _, doc := range corpus {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if seen[term] {
				continue
			}
			seen[term] = true
			idx, ok := vocab[term]
			if !ok {
				idx = len(vocab)
				vocab[term] = idx
				df = append(df, 0)
			}
			df[idx]++
		}
	}
	return vocab, df
}

// inverseDocumentFrequency uses the smoothed formulation ln((1+n)/(1+df))+1
// so that terms present in every document still carry weight and identical
// documents score exactly 1.0 after normalisation.
func inverseDocumentFrequency(df []int, n int) []float64 {
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log(float64(1+n)/float64(1+d)) + 1
	}
	return idf
}

// vectorize builds the L2-normalised TF-IDF vector for one document. A
// document with no in-vocabulary terms yields nil.
func vectorize(doc []string, vocab map[string]int, idf []float64) []float64 {
	if len(doc) == 0 {
		return nil
	}
	vec := make([]float64, len(idf))
	for _, term := range doc {
		if idx, ok := vocab[term]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for i := range vec {
		vec[i] *= idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func dot(a, b []float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
