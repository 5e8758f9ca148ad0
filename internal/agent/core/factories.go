package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/store"
)

// NewLLMProvider creates a new LLM provider based on configuration
func NewLLMProvider(ctx context.Context, cfg config.LLMConfig) (LLMProvider, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}

	// Keyless providers are skipped rather than erroring so a default config
	// file degrades to the builtin research data. Env-driven deployments set
	// keys through the PATHFINDER_* viper overrides, not here.
	for name, provider := range cfg.Providers {
		if provider.APIKey == "" {
			continue
		}
		switch provider.Type {
		case "openai":
			return NewOpenAIProvider(provider), nil
		case "deepseek":
			// Deepseek exposes an OpenAI-compatible chat API
			if provider.BaseURL == "" {
				provider.BaseURL = "https://api.deepseek.com/v1"
			}
			return NewOpenAIProvider(provider), nil
		case "gemini":
			return NewGeminiProvider(ctx, provider)
		default:
			return nil, fmt.Errorf("unsupported LLM provider type %q for provider %s", provider.Type, name)
		}
	}

	return nil, fmt.Errorf("no LLM provider has an API key configured")
}

// NewSourceProviders creates all available source providers
func NewSourceProviders(cfg config.SourcesConfig) ([]SourceProvider, error) {
	httpc := NewHTTPClient(cfg.WebSearch.Timeout, 2, 300*time.Millisecond)
	var providers []SourceProvider
	if cfg.WebSearch.BraveAPIKey != "" {
		providers = append(providers, &BraveClient{cfg: cfg.WebSearch, http: httpc})
	}
	if cfg.WebSearch.SerperAPIKey != "" {
		providers = append(providers, &SerperClient{cfg: cfg.WebSearch, http: httpc})
	}
	return providers, nil
}

// NewStorage creates a new storage instance. Postgres is preferred when
// configured, with Redis as a fallback.
func NewStorage(ctx context.Context, cfg config.StorageConfig, st *store.Store) (Storage, error) {
	if st != nil {
		return &PostgresStorage{store: st}, nil
	}
	if cfg.Postgres.URL != "" || cfg.Postgres.Host != "" {
		ps, err := store.NewWithDSN(ctx, cfg.Postgres.DSN())
		if err == nil {
			return &PostgresStorage{store: ps}, nil
		}
		log.Printf("Warning: Postgres storage init failed: %v, falling back to Redis", err)
	}
	if cfg.Redis.Enabled {
		return NewRedisStorage(cfg.Redis), nil
	}
	return &NullStorage{}, nil
}

// OpenAIProvider implements LLMProvider for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	config    config.LLMProvider
	models    map[string]ModelInfo
	rawModels map[string]config.LLMModel
	client    *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg config.LLMProvider) *OpenAIProvider {
	provider := &OpenAIProvider{
		config:    cfg,
		models:    make(map[string]ModelInfo),
		rawModels: cfg.Models,
		client:    &http.Client{Timeout: cfg.Timeout},
	}

	// Initialize model information
	for key, model := range cfg.Models {
		provider.models[key] = ModelInfo{
			Name:            model.Name,
			Provider:        cfg.Type,
			MaxTokens:       model.MaxTokens,
			CostPer1KInput:  model.CostPer1K,
			CostPer1KOutput: model.CostPer1KOutput,
			Description:     fmt.Sprintf("%s %s model", cfg.Type, model.Name),
		}
	}

	return provider
}

// Generate generates text using the chat completions API
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	resp, _, _, err := p.GenerateWithTokens(ctx, prompt, model, options)
	return resp, err
}

// GenerateWithTokens generates text and returns token usage
func (p *OpenAIProvider) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	apiKey := p.config.APIKey
	if apiKey == "" {
		return "", 0, 0, fmt.Errorf("OpenAI API key not configured")
	}

	m, ok := p.rawModels[model]
	if !ok {
		return "", 0, 0, fmt.Errorf("model %s not configured", model)
	}
	apiModel := m.APIName
	if apiModel == "" {
		apiModel = m.Name
	}

	temperature := m.Temperature
	if t, ok := options["temperature"].(float64); ok {
		temperature = t
	}
	maxTokens := m.MaxTokens
	if mt, ok := options["max_tokens"].(int); ok {
		maxTokens = mt
	}

	// Build request
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatReq struct {
		Model       string    `json:"model"`
		Messages    []chatMsg `json:"messages"`
		Temperature float64   `json:"temperature,omitempty"`
		MaxTokens   int       `json:"max_tokens,omitempty"`
	}

	body, err := json.Marshal(chatReq{
		Model:       apiModel,
		Messages:    []chatMsg{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", 0, 0, fmt.Errorf("marshal: %w", err)
	}

	baseURL := p.config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", 0, 0, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, 0, fmt.Errorf("OpenAI status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, 0, fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("no choices")
	}

	return out.Choices[0].Message.Content, int64(out.Usage.PromptTokens), int64(out.Usage.CompletionTokens), nil
}

// GetAvailableModels returns available models
func (p *OpenAIProvider) GetAvailableModels() []string {
	var models []string
	for name := range p.models {
		models = append(models, name)
	}
	return models
}

// GetModelInfo returns information about a specific model
func (p *OpenAIProvider) GetModelInfo(model string) (ModelInfo, error) {
	info, exists := p.models[model]
	if !exists {
		return ModelInfo{}, fmt.Errorf("model not found: %s", model)
	}
	return info, nil
}

// CalculateCost calculates the cost for a given number of tokens
func (p *OpenAIProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	info, err := p.GetModelInfo(model)
	if err != nil {
		return 0.0
	}

	inputCost := float64(inputTokens) / 1000.0 * info.CostPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * info.CostPer1KOutput
	return inputCost + outputCost
}

// PostgresStorage implements Storage on top of the jobs/reports store
type PostgresStorage struct {
	store *store.Store
}

func (s *PostgresStorage) SaveCareerPlan(ctx context.Context, plan CareerPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	return s.store.SaveReport(ctx, store.ReportRecord{
		ID:        plan.ID,
		Query:     plan.UserQuery,
		Payload:   payload,
		CreatedAt: plan.CreatedAt,
	})
}

func (s *PostgresStorage) GetCareerPlan(ctx context.Context, planID string) (CareerPlan, error) {
	rec, err := s.store.GetReport(ctx, planID)
	if err != nil {
		return CareerPlan{}, err
	}
	var plan CareerPlan
	if err := json.Unmarshal(rec.Payload, &plan); err != nil {
		return CareerPlan{}, fmt.Errorf("unmarshal plan %s: %w", planID, err)
	}
	return plan, nil
}

func (s *PostgresStorage) RecentCareerPlans(ctx context.Context, limit int) ([]CareerPlan, error) {
	recs, err := s.store.RecentReports(ctx, limit)
	if err != nil {
		return nil, err
	}
	plans := make([]CareerPlan, 0, len(recs))
	for _, rec := range recs {
		var plan CareerPlan
		if err := json.Unmarshal(rec.Payload, &plan); err != nil {
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// RedisStorage implements Storage using Redis
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Host + ":" + cfg.Port,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

const redisPlanPrefix = "pathfinder:plan:"
const redisRecentKey = "pathfinder:plans:recent"

func (s *RedisStorage) SaveCareerPlan(ctx context.Context, plan CareerPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisPlanPrefix+plan.ID, payload, s.ttl)
	pipe.LPush(ctx, redisRecentKey, plan.ID)
	pipe.LTrim(ctx, redisRecentKey, 0, 99)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) GetCareerPlan(ctx context.Context, planID string) (CareerPlan, error) {
	payload, err := s.client.Get(ctx, redisPlanPrefix+planID).Bytes()
	if err != nil {
		return CareerPlan{}, fmt.Errorf("plan %s: %w", planID, err)
	}
	var plan CareerPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return CareerPlan{}, fmt.Errorf("unmarshal plan %s: %w", planID, err)
	}
	return plan, nil
}

func (s *RedisStorage) RecentCareerPlans(ctx context.Context, limit int) ([]CareerPlan, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.client.LRange(ctx, redisRecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	var plans []CareerPlan
	for _, id := range ids {
		plan, err := s.GetCareerPlan(ctx, id)
		if err != nil {
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// NullStorage drops plans on the floor when no backend is configured
type NullStorage struct{}

func (s *NullStorage) SaveCareerPlan(ctx context.Context, plan CareerPlan) error { return nil }
func (s *NullStorage) GetCareerPlan(ctx context.Context, planID string) (CareerPlan, error) {
	return CareerPlan{}, fmt.Errorf("plan %s: storage not configured", planID)
}
func (s *NullStorage) RecentCareerPlans(ctx context.Context, limit int) ([]CareerPlan, error) {
	return nil, nil
}
