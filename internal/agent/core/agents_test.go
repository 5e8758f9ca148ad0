package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/match"
)

// scriptedLLM returns canned responses keyed by a substring of the prompt.
type scriptedLLM struct {
	responses map[string]string
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	out, _, _, err := s.GenerateWithTokens(ctx, prompt, model, options)
	return out, err
}

func (s *scriptedLLM) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	for key, resp := range s.responses {
		if strings.Contains(prompt, key) {
			return resp, 10, 20, nil
		}
	}
	return "", 0, 0, fmt.Errorf("no scripted response")
}

func (s *scriptedLLM) GetAvailableModels() []string { return []string{"stub"} }

func (s *scriptedLLM) GetModelInfo(model string) (ModelInfo, error) { return ModelInfo{Name: model}, nil }

func (s *scriptedLLM) CalculateCost(inputTokens, outputTokens int64, model string) float64 { return 0 }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Agents = cfg.Agents.Normalize()
	cfg.Catalogue = cfg.Catalogue.Normalize()
	cfg.LLM.Routing = config.LLMRoutingConfig{Fallback: "stub"}
	return cfg
}

func testTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{})
}

func TestExtractJSONStripsFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n[\"Computer Science\"]\n```"
	if got := extractJSON(raw); got != `["Computer Science"]` {
		t.Fatalf("extractJSON = %q", got)
	}
	if got := extractJSON(`{"a":1}`); got != `{"a":1}` {
		t.Fatalf("plain JSON should pass through, got %q", got)
	}
}

func TestSlugRoundTrip(t *testing.T) {
	t.Parallel()

	if got := slug("Software Engineer"); got != "software_engineer" {
		t.Fatalf("slug = %q", got)
	}
	if got := titleFromSlug("software_engineer"); got != "Software Engineer" {
		t.Fatalf("titleFromSlug = %q", got)
	}
}

func TestAnalyzeInterestsParsesModelOutput(t *testing.T) {
	t.Parallel()

	llm := &scriptedLLM{responses: map[string]string{
		"recommend 3-5 relevant university majors": "```json\n[\"Computer Science\", \"Physics\"]\n```",
	}}
	agent := NewMajorResearchAgent(testConfig(), llm, testTelemetry())

	majors := agent.AnalyzeInterests(context.Background(), "I like building things with code")
	if len(majors) != 2 || majors[0] != "Computer Science" || majors[1] != "Physics" {
		t.Fatalf("unexpected majors: %v", majors)
	}
}

func TestAnalyzeInterestsFallsBackOnError(t *testing.T) {
	t.Parallel()

	agent := NewMajorResearchAgent(testConfig(), &unavailableProvider{}, testTelemetry())

	majors := agent.AnalyzeInterests(context.Background(), "anything")
	if len(majors) != len(defaultMajors) {
		t.Fatalf("expected default majors, got %v", majors)
	}
}

func TestIdentifyCareersFallbackMapping(t *testing.T) {
	t.Parallel()

	agent := NewCareerAnalysisAgent(testConfig(), &unavailableProvider{}, testTelemetry(), nil, nil)

	titles := agent.IdentifyCareers(context.Background(), "Computer Science")
	if len(titles) != 4 || titles[0] != "Software Engineer" {
		t.Fatalf("unexpected titles: %v", titles)
	}

	generic := agent.IdentifyCareers(context.Background(), "Philosophy")
	if len(generic) != 3 || generic[0] != "Philosophy Specialist" {
		t.Fatalf("unexpected generic titles: %v", generic)
	}
}

func TestAnalyzeCareerAttachesJobMarket(t *testing.T) {
	t.Parallel()

	catalogue := match.NewMemCatalogue([]match.JobPosting{
		{Title: "Software Engineer", Company: "Acme", SalaryRange: "$100k - $150k", Description: "Build services."},
		{Title: "Software Engineer", Company: "Globex", SalaryRange: "$120,000 - $160,000", Description: "Ship features."},
	})
	matcher := match.NewAggregator(catalogue, match.Options{})
	agent := NewCareerAnalysisAgent(testConfig(), &unavailableProvider{}, testTelemetry(), matcher, nil)

	career := agent.AnalyzeCareer(context.Background(), "Software Engineer")
	if career.ID != "software_engineer" {
		t.Fatalf("career id = %q", career.ID)
	}
	if career.JobMarket.MatchCount != 2 {
		t.Fatalf("match count = %d, want 2", career.JobMarket.MatchCount)
	}
	if career.SalaryRange != "$80,000 - $180,000" {
		t.Fatalf("salary range = %q", career.SalaryRange)
	}
}

func TestAnalyzeProgressionKnownCareer(t *testing.T) {
	t.Parallel()

	agent := NewFuturePathAgent(testConfig(), &unavailableProvider{}, testTelemetry())

	path := agent.AnalyzeProgression(context.Background(), "Software Engineer", 5)
	if path.ID != "software_engineer_future" {
		t.Fatalf("path id = %q", path.ID)
	}
	if path.Statistics["promoted"].Percentage != 45 {
		t.Fatalf("promoted = %d, want 45", path.Statistics["promoted"].Percentage)
	}
	if path.Timeframe != "5 years" {
		t.Fatalf("timeframe = %q", path.Timeframe)
	}
	if len(path.Insights) == 0 {
		t.Fatal("expected insights for a strong career pattern")
	}
}

func TestGenerateInsightsThresholds(t *testing.T) {
	t.Parallel()

	insights := generateInsights(progressionPattern{Promoted: 45, ChangedCompany: 15, LaidOff: 3, JobSatisfaction: "73%"})
	if len(insights) != 4 {
		t.Fatalf("expected 4 insights, got %d: %v", len(insights), insights)
	}

	weak := generateInsights(progressionPattern{Promoted: 20, ChangedCompany: 5, LaidOff: 10, JobSatisfaction: "50%"})
	if len(weak) != 0 {
		t.Fatalf("expected no insights, got %v", weak)
	}
}

func TestOrchestratorAnalyzeWithoutLLM(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	catalogue := match.NewMemCatalogue([]match.JobPosting{
		{Title: "Software Engineer", Company: "Acme", SalaryRange: "$100k - $150k", Description: "Build services."},
	})
	matcher := match.NewAggregator(catalogue, match.Options{})

	o, err := NewOrchestrator(context.Background(), cfg, nil, testTelemetry(), matcher, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	if o.Ready() {
		t.Fatal("orchestrator should report not ready without an LLM provider")
	}

	plan, err := o.Analyze(context.Background(), CareerQuery{Query: "I want to work with computers"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(plan.Majors) != len(defaultMajors) {
		t.Fatalf("expected %d fallback majors, got %d", len(defaultMajors), len(plan.Majors))
	}
	for _, major := range plan.Majors {
		if len(major.Careers) == 0 {
			t.Fatalf("major %s has no careers", major.Name)
		}
		for _, career := range major.Careers {
			if len(career.FuturePaths) != 1 {
				t.Fatalf("career %s has %d future paths", career.Title, len(career.FuturePaths))
			}
		}
	}

	status, err := o.GetStatus(plan.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != "completed" {
		t.Fatalf("status = %q, want completed", status.Status)
	}
}

func TestDetailFutureFallsBackToProjection(t *testing.T) {
	t.Parallel()

	o, err := NewOrchestrator(context.Background(), testConfig(), nil, testTelemetry(), nil, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	path := o.DetailFuture(context.Background(), "software_engineer_future")
	if path.Career != "Software Engineer" {
		t.Fatalf("career = %q", path.Career)
	}
	if path.Statistics["promoted"].Percentage != 45 {
		t.Fatalf("promoted = %d", path.Statistics["promoted"].Percentage)
	}
}

func TestFallbackResourcesAlwaysPopulated(t *testing.T) {
	t.Parallel()

	curated := fallbackResources("Software Engineer")
	if len(curated.Videos) == 0 || curated.Videos[0].Source != "TechWithTim" {
		t.Fatalf("curated set not returned: %+v", curated)
	}

	generic := fallbackResources("Underwater Basket Weaver")
	if len(generic.Videos) != 1 || len(generic.Blogs) != 1 || len(generic.Interviews) != 1 {
		t.Fatalf("generic set incomplete: %+v", generic)
	}
	if generic.Videos[0].Title != "Career Guide: Underwater Basket Weaver" {
		t.Fatalf("video title = %q", generic.Videos[0].Title)
	}
	if !strings.Contains(generic.Blogs[0].Title, "Underwater Basket Weaver") {
		t.Fatalf("blog title = %q", generic.Blogs[0].Title)
	}
	if !strings.Contains(generic.Interviews[0].Title, "Underwater Basket Weaver") {
		t.Fatalf("interview title = %q", generic.Interviews[0].Title)
	}
}

func TestNewLLMProviderSkipsKeylessProviders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, err := NewLLMProvider(ctx, config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": {Type: "openai"},
	}})
	if err == nil {
		t.Fatal("expected error when no provider has an API key")
	}

	p, err := NewLLMProvider(ctx, config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": {Type: "openai", APIKey: "test-key", Models: map[string]config.LLMModel{
			"m": {Name: "m", APIName: "m"},
		}},
	}})
	if err != nil {
		t.Fatalf("NewLLMProvider: %v", err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Fatalf("provider = %T, want *OpenAIProvider", p)
	}
}

func TestBraveSearchURLEscapesQuery(t *testing.T) {
	t.Parallel()

	got := braveSearchURL("C# & .NET developer?", 10)
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q := parsed.Query().Get("q"); q != "C# & .NET developer?" {
		t.Fatalf("round-tripped query = %q", q)
	}
	if c := parsed.Query().Get("count"); c != "10" {
		t.Fatalf("count = %q", c)
	}
	if strings.Contains(got, " ") || strings.Contains(got, "#") {
		t.Fatalf("unescaped metacharacters in %q", got)
	}
}

type downCatalogue struct{}

func (downCatalogue) AllTitles(ctx context.Context) ([]string, error) {
	return nil, match.ErrStoreUnavailable
}

func (downCatalogue) PostingsForTitles(ctx context.Context, titles []string) ([]match.JobPosting, error) {
	return nil, match.ErrStoreUnavailable
}

func TestAnalyzeCareerRecordsStoreOutcome(t *testing.T) {
	t.Parallel()

	tel := telemetry.NewTelemetry(config.TelemetryConfig{Enabled: true})
	defer tel.Shutdown()

	matcher := match.NewAggregator(downCatalogue{}, match.Options{})
	agent := NewCareerAnalysisAgent(testConfig(), &unavailableProvider{}, tel, matcher, nil)

	career := agent.AnalyzeCareer(context.Background(), "Software Engineer")
	if career.JobMarket.StoreAvailable {
		t.Fatal("store should be reported unavailable")
	}
	metrics := tel.GetMetrics()
	if metrics.CatalogueFailures != 1 {
		t.Fatalf("catalogue failures = %d, want 1", metrics.CatalogueFailures)
	}
	if metrics.CatalogueMatches != 0 || metrics.CatalogueMisses != 0 {
		t.Fatalf("unexpected outcome counts: %+v", metrics)
	}

	healthy := match.NewAggregator(match.NewMemCatalogue([]match.JobPosting{
		{Title: "Software Engineer", Company: "Acme", SalaryRange: "$100k - $150k"},
	}), match.Options{})
	agent = NewCareerAnalysisAgent(testConfig(), &unavailableProvider{}, tel, healthy, nil)
	career = agent.AnalyzeCareer(context.Background(), "Software Engineer")
	if !career.JobMarket.StoreAvailable {
		t.Fatal("store should be reported available")
	}
	if metrics := tel.GetMetrics(); metrics.CatalogueMatches != 1 {
		t.Fatalf("catalogue matches = %d, want 1", metrics.CatalogueMatches)
	}
}
