package core

import (
	"context"
	"strings"
	"time"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
)

// extractJSON strips markdown code fences that models often wrap around
// structured output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// slug converts a display name into a stable lowercase identifier.
func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func titleFromSlug(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// generate runs a prompt against the configured model for a stage and records
// the stage event. Returns the raw model output.
func generate(ctx context.Context, llm LLMProvider, tel *telemetry.Telemetry, cfg config.LLMRoutingConfig, stage, model, prompt string) (string, error) {
	if model == "" {
		model = cfg.Fallback
	}
	start := time.Now()
	out, inTok, outTok, err := llm.GenerateWithTokens(ctx, prompt, model, nil)
	event := telemetry.StageEvent{
		Stage:      stage,
		StartTime:  start,
		EndTime:    time.Now(),
		Duration:   time.Since(start),
		Success:    err == nil,
		ModelUsed:  model,
		TokensUsed: inTok + outTok,
		Cost:       llm.CalculateCost(inTok, outTok, model),
	}
	if err != nil {
		event.Error = err.Error()
	}
	if tel != nil {
		tel.RecordStageEvent(ctx, event)
	}
	return out, err
}
