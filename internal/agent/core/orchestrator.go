package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/match"
)

// Orchestrator coordinates the career planning pipeline: major research,
// career analysis, and future path projection.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	// Core components
	majorAgent  *MajorResearchAgent
	careerAgent *CareerAnalysisAgent
	futureAgent *FuturePathAgent
	llmProvider LLMProvider
	llmReady    bool
	storage     Storage

	// Processing state
	processing map[string]*AnalysisStatus
	cancels    map[string]context.CancelFunc
	mu         sync.RWMutex

	// Concurrency control
	semaphore chan struct{}
}

// NewOrchestrator creates a new orchestrator instance. A missing or broken
// LLM configuration is not fatal: agents fall back to built-in data so the
// API stays usable.
func NewOrchestrator(ctx context.Context, cfg *config.Config, logger *log.Logger, tel *telemetry.Telemetry, matcher *match.Aggregator, storage Storage) (*Orchestrator, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCHESTRATOR] ", log.LstdFlags)
	}

	llmReady := true
	llmProvider, err := NewLLMProvider(ctx, cfg.LLM)
	if err != nil {
		logger.Printf("Warning: LLM provider unavailable (%v), responses will use built-in data", err)
		llmProvider = &unavailableProvider{}
		llmReady = false
	}

	sources, _ := NewSourceProviders(cfg.Sources)
	resources := NewResourceFinder(cfg.Sources.WebSearch, sources)

	if storage == nil {
		storage = &NullStorage{}
	}

	o := &Orchestrator{
		config:      cfg,
		logger:      logger,
		telemetry:   tel,
		majorAgent:  NewMajorResearchAgent(cfg, llmProvider, tel),
		careerAgent: NewCareerAnalysisAgent(cfg, llmProvider, tel, matcher, resources),
		futureAgent: NewFuturePathAgent(cfg, llmProvider, tel),
		llmProvider: llmProvider,
		llmReady:    llmReady,
		storage:     storage,
		processing:  make(map[string]*AnalysisStatus),
		cancels:     make(map[string]context.CancelFunc),
		semaphore:   make(chan struct{}, cfg.Agents.MaxConcurrentAgents),
	}
	return o, nil
}

// LLM exposes the orchestrator's underlying LLM provider.
func (o *Orchestrator) LLM() LLMProvider { return o.llmProvider }

// Ready reports whether a real LLM provider is configured.
func (o *Orchestrator) Ready() bool { return o.llmReady }

// Analyze processes one career query through the full pipeline.
func (o *Orchestrator) Analyze(ctx context.Context, query CareerQuery) (CareerPlan, error) {
	if query.ID == "" {
		query.ID = uuid.NewString()
	}
	startTime := time.Now()

	if o.config.General.MaxProcessingTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.General.MaxProcessingTime)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	status := &AnalysisStatus{
		QueryID:   query.ID,
		Status:    "pending",
		CreatedAt: startTime,
	}
	o.mu.Lock()
	o.processing[query.ID] = status
	o.cancels[query.ID] = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.cancels, query.ID)
		o.mu.Unlock()
	}()

	o.logger.Printf("Starting career planning workflow for query %s", query.ID)

	// Stage 1: research majors
	o.updateStatus(status, "researching", 0.1, "major research")
	majors := o.majorAgent.ProcessQuery(ctx, query.Query)
	o.logger.Printf("Found %d majors", len(majors))

	// Stage 2: analyze careers for each major
	o.updateStatus(status, "analyzing", 0.4, "career analysis")
	var wg sync.WaitGroup
	for i := range majors {
		wg.Add(1)
		go func(m *Major) {
			defer wg.Done()
			o.semaphore <- struct{}{}
			defer func() { <-o.semaphore }()
			m.Careers = o.careerAgent.ProcessMajor(ctx, m.Name)
		}(&majors[i])
	}
	wg.Wait()

	// Stage 3: project future paths for every career
	o.updateStatus(status, "projecting", 0.7, "future path projection")
	for i := range majors {
		for j := range majors[i].Careers {
			wg.Add(1)
			go func(c *Career) {
				defer wg.Done()
				o.semaphore <- struct{}{}
				defer func() { <-o.semaphore }()
				c.FuturePaths = []FuturePath{o.futureAgent.AnalyzeProgression(ctx, c.Title, 5)}
			}(&majors[i].Careers[j])
		}
	}
	wg.Wait()

	plan := CareerPlan{
		ID:             query.ID,
		UserQuery:      query.Query,
		Majors:         majors,
		CreatedAt:      time.Now(),
		ProcessingTime: time.Since(startTime),
	}

	if err := ctx.Err(); err != nil {
		o.updateStatus(status, "failed", 1.0, "")
		status.Error = err.Error()
		plan.Error = err.Error()
		o.recordRun(query, plan, false)
		return plan, fmt.Errorf("analysis %s: %w", query.ID, err)
	}

	// Persist the plan; storage problems must not fail the analysis
	if err := o.storage.SaveCareerPlan(ctx, plan); err != nil {
		o.logger.Printf("Warning: could not persist plan %s: %v", plan.ID, err)
	}

	o.updateStatus(status, "completed", 1.0, "")
	o.recordRun(query, plan, true)
	o.logger.Printf("Workflow completed for query %s in %v", query.ID, plan.ProcessingTime)
	return plan, nil
}

func (o *Orchestrator) recordRun(query CareerQuery, plan CareerPlan, success bool) {
	if o.telemetry == nil {
		return
	}
	o.telemetry.RecordAnalysisEvent(context.Background(), telemetry.AnalysisEvent{
		ID:         plan.ID,
		CareerGoal: query.Query,
		StartTime:  plan.CreatedAt.Add(-plan.ProcessingTime),
		EndTime:    plan.CreatedAt,
		Duration:   plan.ProcessingTime,
		Success:    success,
		Error:      plan.Error,
	})
}

// GetStatus returns the current status of a query.
func (o *Orchestrator) GetStatus(queryID string) (AnalysisStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.processing[queryID]
	if !ok {
		return AnalysisStatus{}, fmt.Errorf("unknown query %s", queryID)
	}
	return *status, nil
}

// CancelProcessing cancels an in-flight analysis.
func (o *Orchestrator) CancelProcessing(queryID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	cancel, ok := o.cancels[queryID]
	if !ok {
		return fmt.Errorf("query %s is not processing", queryID)
	}
	cancel()
	return nil
}

func (o *Orchestrator) updateStatus(status *AnalysisStatus, newStatus string, progress float64, currentStage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status.Status = newStatus
	status.Progress = progress
	status.CurrentStage = currentStage
	status.LastUpdated = time.Now()
}

// DetailMajor looks up a major from recent plans by id, falling back to a
// generic record when it is not found.
func (o *Orchestrator) DetailMajor(ctx context.Context, majorID string) Major {
	for _, plan := range o.recentPlans(ctx) {
		for _, major := range plan.Majors {
			if major.ID == majorID {
				return major
			}
		}
	}
	return Major{
		ID:          majorID,
		Name:        titleFromSlug(majorID),
		Description: fallbackMajorDetails(titleFromSlug(majorID)).Description,
	}
}

// DetailCareer looks up a career from recent plans by id.
func (o *Orchestrator) DetailCareer(ctx context.Context, careerID string) Career {
	for _, plan := range o.recentPlans(ctx) {
		for _, major := range plan.Majors {
			for _, career := range major.Careers {
				if career.ID == careerID {
					return career
				}
			}
		}
	}
	title := titleFromSlug(careerID)
	return o.careerAgent.AnalyzeCareer(ctx, title)
}

// DetailFuture looks up a future path from recent plans by id.
func (o *Orchestrator) DetailFuture(ctx context.Context, futureID string) FuturePath {
	for _, plan := range o.recentPlans(ctx) {
		for _, major := range plan.Majors {
			for _, career := range major.Careers {
				for _, path := range career.FuturePaths {
					if path.ID == futureID {
						return path
					}
				}
			}
		}
	}
	title := titleFromSlug(trimFutureSuffix(futureID))
	return o.futureAgent.AnalyzeProgression(ctx, title, 5)
}

func trimFutureSuffix(id string) string {
	const suffix = "_future"
	if len(id) > len(suffix) && id[len(id)-len(suffix):] == suffix {
		return id[:len(id)-len(suffix)]
	}
	return id
}

func (o *Orchestrator) recentPlans(ctx context.Context) []CareerPlan {
	plans, err := o.storage.RecentCareerPlans(ctx, 50)
	if err != nil {
		o.logger.Printf("Warning: could not load recent plans: %v", err)
		return nil
	}
	return plans
}

// GetPerformanceMetrics returns performance metrics for introspection.
func (o *Orchestrator) GetPerformanceMetrics() map[string]interface{} {
	if o.telemetry == nil {
		return map[string]interface{}{}
	}
	metrics := o.telemetry.GetMetrics()
	costs := o.telemetry.GetCostSummary()
	return map[string]interface{}{
		"total_analyses":        metrics.TotalAnalyses,
		"successful_analyses":   metrics.SuccessfulAnalyses,
		"failed_analyses":       metrics.FailedAnalyses,
		"average_analysis_time": metrics.AverageAnalysisTime.String(),
		"catalogue_lookups":     metrics.CatalogueLookups,
		"total_cost":            costs.TotalCost,
		"total_tokens":          costs.TotalTokens,
	}
}

// unavailableProvider stands in when no LLM is configured; every call fails
// so agents fall back to their built-in data.
type unavailableProvider struct{}

func (p *unavailableProvider) Generate(ctx context.Context, prompt, model string, options map[string]interface{}) (string, error) {
	return "", fmt.Errorf("no LLM provider configured")
}
func (p *unavailableProvider) GenerateWithTokens(ctx context.Context, prompt, model string, options map[string]interface{}) (string, int64, int64, error) {
	return "", 0, 0, fmt.Errorf("no LLM provider configured")
}
func (p *unavailableProvider) GetAvailableModels() []string { return nil }
func (p *unavailableProvider) GetModelInfo(model string) (ModelInfo, error) {
	return ModelInfo{}, fmt.Errorf("model not found: %s", model)
}
func (p *unavailableProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	return 0
}
