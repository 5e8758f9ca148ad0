package core

import (
	"context"
	"time"

	"github.com/pathfinder-app/pathfinder/internal/match"
)

// CareerQuery represents a user's career planning request
type CareerQuery struct {
	ID        string                 `json:"id"`
	Query     string                 `json:"query"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// CareerPlan is the complete output of a career planning run
type CareerPlan struct {
	ID             string        `json:"id"`
	UserQuery      string        `json:"user_query"`
	Majors         []Major       `json:"majors"`
	CreatedAt      time.Time     `json:"created_at"`
	ProcessingTime time.Duration `json:"processing_time"`
	CostEstimate   float64       `json:"cost_estimate"`
	TokensUsed     int64         `json:"tokens_used"`
	LLMModelsUsed  []string      `json:"llm_models_used,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// Major describes a university major and its associated careers
type Major struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Requirements []string         `json:"requirements,omitempty"`
	Duration     string           `json:"duration,omitempty"`
	Universities []UniversityLink `json:"universities,omitempty"`
	VideoURL     string           `json:"video_url,omitempty"`
	Careers      []Career         `json:"careers"`
}

// UniversityLink points at a university program page
type UniversityLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Career describes one career path for a major
type Career struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	SalaryRange     string            `json:"salary_range"`
	AverageSalary   string            `json:"average_salary,omitempty"`
	Benefits        []string          `json:"benefits,omitempty"`
	WorkIntensity   string            `json:"work_intensity,omitempty"`
	WorkLifeBalance string            `json:"work_life_balance,omitempty"`
	GrowthPotential string            `json:"growth_potential,omitempty"`
	JobOutlook      string            `json:"job_outlook,omitempty"`
	JobMarket       match.MatchResult `json:"job_market"`
	Resources       ResourceSet       `json:"professional_resources"`
	FuturePaths     []FuturePath      `json:"future_paths"`
}

// ResourceSet groups professional learning resources for a career
type ResourceSet struct {
	Videos     []MediaLink `json:"videos"`
	Blogs      []MediaLink `json:"blogs"`
	Interviews []MediaLink `json:"interviews"`
}

// MediaLink is a single video, blog post, or interview reference
type MediaLink struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url"`
}

// FuturePath projects how a career tends to develop over time
type FuturePath struct {
	ID                 string                     `json:"id"`
	Career             string                     `json:"career"`
	Timeframe          string                     `json:"timeframe"`
	Statistics         map[string]ProgressionStat `json:"statistics"`
	CommonProgressions []string                   `json:"common_progressions"`
	SalaryGrowth       string                     `json:"salary_growth,omitempty"`
	JobSatisfaction    string                     `json:"job_satisfaction,omitempty"`
	SampleSize         int                        `json:"sample_size,omitempty"`
	Insights           []string                   `json:"insights,omitempty"`
}

// ProgressionStat is one career transition outcome with its share of professionals
type ProgressionStat struct {
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// AnalysisStatus represents the status of processing a career query
type AnalysisStatus struct {
	QueryID      string    `json:"query_id"`
	Status       string    `json:"status"`   // pending, researching, analyzing, projecting, completed, failed
	Progress     float64   `json:"progress"` // 0.0 to 1.0
	CurrentStage string    `json:"current_stage,omitempty"`
	Error        string    `json:"error,omitempty"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
}

// Source represents a piece of information gathered from the public web
type Source struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	Type        string    `json:"type"`
	Credibility float64   `json:"credibility"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// LLMProvider interface defines the contract for LLM providers
type LLMProvider interface {
	// Generate generates text using the LLM
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)

	// GenerateWithTokens generates text and returns token usage
	GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error)

	// GetAvailableModels returns available models
	GetAvailableModels() []string

	// GetModelInfo returns information about a specific model
	GetModelInfo(model string) (ModelInfo, error)

	// CalculateCost calculates the cost for a given number of tokens
	CalculateCost(inputTokens, outputTokens int64, model string) float64
}

// ModelInfo contains information about an LLM model
type ModelInfo struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1KInput  float64 `json:"cost_per_1k_input"`
	CostPer1KOutput float64 `json:"cost_per_1k_output"`
	Description     string  `json:"description"`
}

// SourceProvider interface defines the contract for web information sources
type SourceProvider interface {
	// Search searches for information
	Search(ctx context.Context, query string, options map[string]interface{}) ([]Source, error)

	// GetSourceTypes returns supported source types
	GetSourceTypes() []string

	// GetCredibility returns credibility score for a source
	GetCredibility(source Source) float64
}

// Storage persists completed career plans
type Storage interface {
	// SaveCareerPlan saves a completed plan
	SaveCareerPlan(ctx context.Context, plan CareerPlan) error

	// GetCareerPlan retrieves a plan by id
	GetCareerPlan(ctx context.Context, planID string) (CareerPlan, error)

	// RecentCareerPlans lists the most recently saved plans
	RecentCareerPlans(ctx context.Context, limit int) ([]CareerPlan, error)
}
