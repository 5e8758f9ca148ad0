package telemetry

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pathfinder-app/pathfinder/config"
)

// Telemetry provides monitoring and cost tracking for analysis runs
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker
	registry    *prometheus.Registry
	prom        promMetrics
	mu          sync.RWMutex
}

// Metrics holds various performance metrics
type Metrics struct {
	mu sync.RWMutex
	// Analysis metrics
	TotalAnalyses       int64
	SuccessfulAnalyses  int64
	FailedAnalyses      int64
	AverageAnalysisTime time.Duration

	// Stage metrics
	StageExecutions   map[string]int64
	StageSuccessRates map[string]float64
	StageAverageTimes map[string]time.Duration

	// LLM metrics
	LLMRequests   map[string]int64
	LLMTokensUsed map[string]int64

	// Catalogue metrics
	CatalogueLookups   int64
	CatalogueMatches   int64
	CatalogueMisses    int64
	CatalogueFailures  int64
	CatalogueAvgLookup time.Duration
}

// CostTracker tracks costs across different LLM providers and models
type CostTracker struct {
	mu sync.RWMutex

	// Model costs
	ModelCosts map[string]float64 // model -> cost

	// Stage costs
	StageCosts map[string]float64 // stage -> cost

	// Total costs
	TotalCost   float64
	TotalTokens int64
}

type promMetrics struct {
	analyses         *prometheus.CounterVec
	stageExecutions  *prometheus.CounterVec
	llmTokens        *prometheus.CounterVec
	catalogueLookups *prometheus.CounterVec
	analysisDuration prometheus.Histogram
}

// AnalysisEvent represents one complete career analysis run
type AnalysisEvent struct {
	ID            string
	CareerGoal    string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	Success       bool
	Error         string
	Cost          float64
	TokensUsed    int64
	StagesUsed    []string
	LLMModelsUsed []string
}

// StageEvent represents a single pipeline stage execution
type StageEvent struct {
	ID         string
	Stage      string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Success    bool
	Error      string
	Cost       float64
	TokensUsed int64
	ModelUsed  string
}

// CatalogueEvent represents one job catalogue lookup
type CatalogueEvent struct {
	Query          string
	Duration       time.Duration
	MatchCount     int
	StoreAvailable bool
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(config config.TelemetryConfig) *Telemetry {
	registry := prometheus.NewRegistry()
	prom := promMetrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfinder_analyses_total",
			Help: "Completed career analysis runs by status.",
		}, []string{"status"}),
		stageExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfinder_stage_executions_total",
			Help: "Pipeline stage executions by stage and status.",
		}, []string{"stage", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfinder_llm_tokens_total",
			Help: "LLM tokens consumed per model.",
		}, []string{"model"}),
		catalogueLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfinder_catalogue_lookups_total",
			Help: "Job catalogue lookups by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathfinder_analysis_duration_seconds",
			Help:    "Duration of complete analysis runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	registry.MustRegister(prom.analyses, prom.stageExecutions, prom.llmTokens, prom.catalogueLookups, prom.analysisDuration)

	t := &Telemetry{
		config: config,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			StageExecutions:   make(map[string]int64),
			StageSuccessRates: make(map[string]float64),
			StageAverageTimes: make(map[string]time.Duration),
			LLMRequests:       make(map[string]int64),
			LLMTokensUsed:     make(map[string]int64),
		},
		costTracker: &CostTracker{
			ModelCosts: make(map[string]float64),
			StageCosts: make(map[string]float64),
		},
		registry: registry,
		prom:     prom,
	}

	// Start background tasks (periodic logs can be disabled via config)
	if config.Enabled && config.PeriodicLogs {
		go t.startMetricsCollection()
		go t.startCostReporting()
	}

	return t
}

// MetricsHandler exposes the prometheus registry for the HTTP server.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// RecordAnalysisEvent records a complete analysis run
func (t *Telemetry) RecordAnalysisEvent(ctx context.Context, event AnalysisEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Update metrics
	t.metrics.TotalAnalyses++
	status := "success"
	if event.Success {
		t.metrics.SuccessfulAnalyses++
	} else {
		t.metrics.FailedAnalyses++
		status = "failure"
	}
	t.prom.analyses.WithLabelValues(status).Inc()
	t.prom.analysisDuration.Observe(event.Duration.Seconds())

	// Update average analysis time
	if t.metrics.TotalAnalyses == 1 {
		t.metrics.AverageAnalysisTime = event.Duration
	} else {
		total := t.metrics.AverageAnalysisTime * time.Duration(t.metrics.TotalAnalyses-1)
		t.metrics.AverageAnalysisTime = (total + event.Duration) / time.Duration(t.metrics.TotalAnalyses)
	}

	// Update LLM metrics
	for _, model := range event.LLMModelsUsed {
		t.metrics.LLMRequests[model]++
	}

	// Update cost tracking
	t.costTracker.TotalCost += event.Cost
	t.costTracker.TotalTokens += event.TokensUsed

	t.logger.Printf("Analysis Event: ID=%s, Success=%t, Duration=%v, Cost=$%.4f, Tokens=%d",
		event.ID, event.Success, event.Duration, event.Cost, event.TokensUsed)
}

// RecordStageEvent records a pipeline stage execution
func (t *Telemetry) RecordStageEvent(ctx context.Context, event StageEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Update stage metrics
	t.metrics.StageExecutions[event.Stage]++
	status := "success"
	if !event.Success {
		status = "failure"
	}
	t.prom.stageExecutions.WithLabelValues(event.Stage, status).Inc()

	// Update success rate
	currentSuccess := t.metrics.StageSuccessRates[event.Stage] * float64(t.metrics.StageExecutions[event.Stage]-1)
	if event.Success {
		currentSuccess += 1.0
	}
	t.metrics.StageSuccessRates[event.Stage] = currentSuccess / float64(t.metrics.StageExecutions[event.Stage])

	// Update average time
	currentExecutions := t.metrics.StageExecutions[event.Stage]
	currentAvg := t.metrics.StageAverageTimes[event.Stage]
	if currentExecutions == 1 {
		t.metrics.StageAverageTimes[event.Stage] = event.Duration
	} else {
		total := currentAvg * time.Duration(currentExecutions-1)
		t.metrics.StageAverageTimes[event.Stage] = (total + event.Duration) / time.Duration(currentExecutions)
	}

	// Update LLM metrics
	if event.ModelUsed != "" {
		t.metrics.LLMRequests[event.ModelUsed]++
		t.metrics.LLMTokensUsed[event.ModelUsed] += event.TokensUsed
		t.prom.llmTokens.WithLabelValues(event.ModelUsed).Add(float64(event.TokensUsed))
	}

	// Update cost tracking
	t.costTracker.TotalCost += event.Cost
	t.costTracker.TotalTokens += event.TokensUsed
	t.costTracker.ModelCosts[event.ModelUsed] += event.Cost
	t.costTracker.StageCosts[event.Stage] += event.Cost

	t.logger.Printf("Stage Event: Stage=%s, Success=%t, Duration=%v, Cost=$%.4f, Model=%s",
		event.Stage, event.Success, event.Duration, event.Cost, event.ModelUsed)
}

// RecordCatalogueEvent records a job catalogue lookup
func (t *Telemetry) RecordCatalogueEvent(ctx context.Context, event CatalogueEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.CatalogueLookups++
	outcome := "match"
	switch {
	case !event.StoreAvailable:
		t.metrics.CatalogueFailures++
		outcome = "store_unavailable"
	case event.MatchCount == 0:
		t.metrics.CatalogueMisses++
		outcome = "miss"
	default:
		t.metrics.CatalogueMatches++
	}
	t.prom.catalogueLookups.WithLabelValues(outcome).Inc()

	if t.metrics.CatalogueLookups == 1 {
		t.metrics.CatalogueAvgLookup = event.Duration
	} else {
		total := t.metrics.CatalogueAvgLookup * time.Duration(t.metrics.CatalogueLookups-1)
		t.metrics.CatalogueAvgLookup = (total + event.Duration) / time.Duration(t.metrics.CatalogueLookups)
	}

	t.logger.Printf("Catalogue Event: Query=%q, Matches=%d, Duration=%v, StoreAvailable=%t",
		event.Query, event.MatchCount, event.Duration, event.StoreAvailable)
}

// GetMetrics returns current metrics snapshot
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Create a deep copy to avoid race conditions
	metrics := Metrics{
		TotalAnalyses:       t.metrics.TotalAnalyses,
		SuccessfulAnalyses:  t.metrics.SuccessfulAnalyses,
		FailedAnalyses:      t.metrics.FailedAnalyses,
		AverageAnalysisTime: t.metrics.AverageAnalysisTime,
		CatalogueLookups:    t.metrics.CatalogueLookups,
		CatalogueMatches:    t.metrics.CatalogueMatches,
		CatalogueMisses:     t.metrics.CatalogueMisses,
		CatalogueFailures:   t.metrics.CatalogueFailures,
		CatalogueAvgLookup:  t.metrics.CatalogueAvgLookup,
		StageExecutions:     make(map[string]int64),
		StageSuccessRates:   make(map[string]float64),
		StageAverageTimes:   make(map[string]time.Duration),
		LLMRequests:         make(map[string]int64),
		LLMTokensUsed:       make(map[string]int64),
	}

	for k, v := range t.metrics.StageExecutions {
		metrics.StageExecutions[k] = v
	}
	for k, v := range t.metrics.StageSuccessRates {
		metrics.StageSuccessRates[k] = v
	}
	for k, v := range t.metrics.StageAverageTimes {
		metrics.StageAverageTimes[k] = v
	}
	for k, v := range t.metrics.LLMRequests {
		metrics.LLMRequests[k] = v
	}
	for k, v := range t.metrics.LLMTokensUsed {
		metrics.LLMTokensUsed[k] = v
	}

	return metrics
}

// CostSummary provides a summary of costs
type CostSummary struct {
	TotalCost   float64
	TotalTokens int64
	ModelCosts  map[string]float64
	StageCosts  map[string]float64
}

// GetCostSummary returns current cost summary
func (t *Telemetry) GetCostSummary() CostSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := CostSummary{
		TotalCost:   t.costTracker.TotalCost,
		TotalTokens: t.costTracker.TotalTokens,
		ModelCosts:  make(map[string]float64),
		StageCosts:  make(map[string]float64),
	}

	for k, v := range t.costTracker.ModelCosts {
		summary.ModelCosts[k] = v
	}
	for k, v := range t.costTracker.StageCosts {
		summary.StageCosts[k] = v
	}

	return summary
}

// CalculateCost calculates the cost for a given number of tokens and model
func (t *Telemetry) CalculateCost(inputTokens, outputTokens int64, costPer1KInput, costPer1KOutput float64) float64 {
	inputCost := float64(inputTokens) / 1000.0 * costPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * costPer1KOutput
	return inputCost + outputCost
}

// startMetricsCollection starts periodic metrics collection
func (t *Telemetry) startMetricsCollection() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		metrics := t.GetMetrics()
		costs := t.GetCostSummary()

		t.logger.Printf("Metrics Snapshot: Analyses=%d/%d, AvgTime=%v, TotalCost=$%.4f, TotalTokens=%d",
			metrics.SuccessfulAnalyses, metrics.TotalAnalyses,
			metrics.AverageAnalysisTime, costs.TotalCost, costs.TotalTokens)
	}
}

// startCostReporting starts periodic cost reporting
func (t *Telemetry) startCostReporting() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		costs := t.GetCostSummary()

		t.logger.Printf("Cost Report: Total=$%.4f, Tokens=%d", costs.TotalCost, costs.TotalTokens)

		for model, cost := range costs.ModelCosts {
			t.logger.Printf("  Model %s: $%.4f", model, cost)
		}
		for stage, cost := range costs.StageCosts {
			t.logger.Printf("  Stage %s: $%.4f", stage, cost)
		}
	}
}

// Shutdown gracefully shuts down the telemetry system
func (t *Telemetry) Shutdown() {
	t.logger.Println("Shutting down telemetry system...")

	metrics := t.GetMetrics()
	costs := t.GetCostSummary()
	if metrics.TotalAnalyses == 0 {
		return
	}

	t.logger.Printf("Final Report:")
	t.logger.Printf("  Total Analyses: %d", metrics.TotalAnalyses)
	t.logger.Printf("  Success Rate: %.2f%%", float64(metrics.SuccessfulAnalyses)/float64(metrics.TotalAnalyses)*100)
	t.logger.Printf("  Average Analysis Time: %v", metrics.AverageAnalysisTime)
	t.logger.Printf("  Total Cost: $%.4f", costs.TotalCost)
	t.logger.Printf("  Total Tokens: %d", costs.TotalTokens)
}

// GetPerformanceReport returns a detailed performance report
func (t *Telemetry) GetPerformanceReport() string {
	metrics := t.GetMetrics()
	costs := t.GetCostSummary()
	if metrics.TotalAnalyses == 0 {
		return "no analyses recorded"
	}

	report := fmt.Sprintf(`
=== PERFORMANCE REPORT ===
Overall Metrics:
  Total Analyses: %d
  Successful: %d (%.2f%%)
  Failed: %d (%.2f%%)
  Average Analysis Time: %v
  Total Cost: $%.4f
  Total Tokens: %d

Stage Performance:
`, metrics.TotalAnalyses, metrics.SuccessfulAnalyses,
		float64(metrics.SuccessfulAnalyses)/float64(metrics.TotalAnalyses)*100,
		metrics.FailedAnalyses, float64(metrics.FailedAnalyses)/float64(metrics.TotalAnalyses)*100,
		metrics.AverageAnalysisTime, costs.TotalCost, costs.TotalTokens)

	for stage, executions := range metrics.StageExecutions {
		successRate := metrics.StageSuccessRates[stage]
		avgTime := metrics.StageAverageTimes[stage]
		report += fmt.Sprintf("  %s: %d executions, %.2f%% success, %v avg time\n",
			stage, executions, successRate*100, avgTime)
	}

	report += "\nLLM Usage:\n"
	for model, requests := range metrics.LLMRequests {
		tokens := metrics.LLMTokensUsed[model]
		cost := costs.ModelCosts[model]
		report += fmt.Sprintf("  %s: %d requests, %d tokens, $%.4f\n",
			model, requests, tokens, cost)
	}

	report += fmt.Sprintf("\nCatalogue Lookups: %d (%d matched, %d missed, %d store failures, %v avg)\n",
		metrics.CatalogueLookups, metrics.CatalogueMatches, metrics.CatalogueMisses,
		metrics.CatalogueFailures, metrics.CatalogueAvgLookup)

	return report
}
