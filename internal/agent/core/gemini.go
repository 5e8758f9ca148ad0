package core

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pathfinder-app/pathfinder/config"
)

// GeminiProvider implements LLMProvider using the Google GenAI SDK
type GeminiProvider struct {
	config    config.LLMProvider
	client    *genai.Client
	models    map[string]ModelInfo
	rawModels map[string]config.LLMModel
}

// NewGeminiProvider creates a provider backed by the Gemini API
func NewGeminiProvider(ctx context.Context, cfg config.LLMProvider) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	p := &GeminiProvider{
		config:    cfg,
		client:    client,
		models:    make(map[string]ModelInfo),
		rawModels: cfg.Models,
	}
	for key, model := range cfg.Models {
		p.models[key] = ModelInfo{
			Name:            model.Name,
			Provider:        "gemini",
			MaxTokens:       model.MaxTokens,
			CostPer1KInput:  model.CostPer1K,
			CostPer1KOutput: model.CostPer1KOutput,
			Description:     fmt.Sprintf("Gemini %s model", model.Name),
		}
	}
	return p, nil
}

// Generate generates text using Gemini
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	resp, _, _, err := p.GenerateWithTokens(ctx, prompt, model, options)
	return resp, err
}

// GenerateWithTokens generates text and returns token usage
func (p *GeminiProvider) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", 0, 0, fmt.Errorf("prompt must not be empty")
	}

	m, ok := p.rawModels[model]
	if !ok {
		return "", 0, 0, fmt.Errorf("model %s not configured", model)
	}
	apiModel := m.APIName
	if apiModel == "" {
		apiModel = m.Name
	}

	var cfg *genai.GenerateContentConfig
	if t, ok := options["temperature"].(float64); ok {
		temp := float32(t)
		cfg = &genai.GenerateContentConfig{Temperature: &temp}
	}

	resp, err := p.client.Models.GenerateContent(ctx, apiModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", 0, 0, fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", 0, 0, fmt.Errorf("gemini api returned empty response")
	}

	var promptTokens, outputTokens int64
	if resp.UsageMetadata != nil {
		promptTokens = int64(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return output, promptTokens, outputTokens, nil
}

// GetAvailableModels returns available models
func (p *GeminiProvider) GetAvailableModels() []string {
	var models []string
	for name := range p.models {
		models = append(models, name)
	}
	return models
}

// GetModelInfo returns information about a specific model
func (p *GeminiProvider) GetModelInfo(model string) (ModelInfo, error) {
	info, exists := p.models[model]
	if !exists {
		return ModelInfo{}, fmt.Errorf("model not found: %s", model)
	}
	return info, nil
}

// CalculateCost calculates the cost for a given number of tokens
func (p *GeminiProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	info, err := p.GetModelInfo(model)
	if err != nil {
		return 0.0
	}
	return float64(inputTokens)/1000.0*info.CostPer1KInput + float64(outputTokens)/1000.0*info.CostPer1KOutput
}
