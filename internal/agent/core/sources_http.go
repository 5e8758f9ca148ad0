package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pathfinder-app/pathfinder/config"
)

// BraveClient implements SourceProvider using Brave Search API
type BraveClient struct {
	cfg  config.WebSearchConfig
	http *HTTPClient
}

func (b *BraveClient) Search(ctx context.Context, query string, options map[string]interface{}) ([]Source, error) {
	var resp struct {
		Web struct {
			Results []struct{ Title, URL, Description string } `json:"results"`
		} `json:"web"`
	}
	headers := map[string]string{"X-Subscription-Token": b.cfg.BraveAPIKey}
	q := query
	if mq, ok := options["query"].(string); ok && mq != "" {
		q = mq
	}
	endpoint := braveSearchURL(q, max1(b.cfg.MaxResults, 10))
	if err := b.http.DoJSON(ctx, "GET", endpoint, headers, nil, &resp); err != nil {
		return nil, err
	}
	var out []Source
	for _, r := range resp.Web.Results {
		out = append(out, Source{
			ID: uuid.NewString(), Title: r.Title, URL: r.URL, Type: "web",
			Credibility: 0.6, RetrievedAt: time.Now(), Summary: r.Description,
		})
	}
	return out, nil
}
func (b *BraveClient) GetSourceTypes() []string        { return []string{"web"} }
func (b *BraveClient) GetCredibility(s Source) float64 { return 0.6 }

// SerperClient implements SourceProvider using serper.dev
type SerperClient struct {
	cfg  config.WebSearchConfig
	http *HTTPClient
}

func (s *SerperClient) Search(ctx context.Context, query string, options map[string]interface{}) ([]Source, error) {
	var resp struct {
		Organic []struct{ Title, Link, Snippet string } `json:"organic"`
	}
	headers := map[string]string{"X-API-KEY": s.cfg.SerperAPIKey}
	body := map[string]any{"q": query, "num": max1(s.cfg.MaxResults, 10)}
	if mq, ok := options["query"].(string); ok && mq != "" {
		body["q"] = mq
	}
	if err := s.http.DoJSON(ctx, "POST", "https://google.serper.dev/search", headers, body, &resp); err != nil {
		return nil, err
	}
	var out []Source
	for _, r := range resp.Organic {
		out = append(out, Source{
			ID: uuid.NewString(), Title: r.Title, URL: r.Link, Type: "web",
			Credibility: 0.65, RetrievedAt: time.Now(), Summary: r.Snippet,
		})
	}
	return out, nil
}
func (s *SerperClient) GetSourceTypes() []string          { return []string{"web"} }
func (s *SerperClient) GetCredibility(src Source) float64 { return 0.65 }

func braveSearchURL(q string, count int) string {
	return fmt.Sprintf("https://api.search.brave.com/res/v1/web/search?q=%s&count=%d", url.QueryEscape(q), count)
}

func max1(a, def int) int {
	if a > 0 {
		return a
	}
	return def
}

// DeduplicateSources merges sources by URL (or title fallback) and keeps the highest credibility
func DeduplicateSources(in []Source) []Source {
	seen := make(map[string]Source)
	order := make([]string, 0, len(in))
	keyOf := func(s Source) string {
		if s.URL != "" {
			return s.URL
		}
		return strings.ToLower(s.Title)
	}
	for _, s := range in {
		k := keyOf(s)
		if prev, ok := seen[k]; ok {
			if s.Credibility > prev.Credibility {
				seen[k] = s
			}
		} else {
			seen[k] = s
			order = append(order, k)
		}
	}
	out := make([]Source, 0, len(seen))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}
