// Package ai asks a chat model for a routine plan.
package ai

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyPlan = errors.New("model returned an empty plan")

// Generator produces a plan for the request, choosing from the catalog names
// where it can.
type Generator interface {
	GeneratePlan(ctx context.Context, req domain.GenerationRequest, catalog []domain.Exercise) (*domain.GeneratedPlan, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIGenerator struct {
	client chatCompleter
	model  string
}

// NewOpenAIGenerator returns nil when no API key is configured.
func NewOpenAIGenerator(cfg config.OpenAIConfig) *OpenAIGenerator {
	if cfg.APIKey == "" {
		return nil
	}
	return &OpenAIGenerator{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

const systemPrompt = "You are an experienced strength and conditioning coach. " +
	"Answer only with a JSON object of the form " +
	`{"name": string, "description": string, "days": [{"day": int, "focus": string, ` +
	`"exercises": [{"name": string, "muscleGroup": string, "sets": int, "reps": string, "restSeconds": int, "notes": string}]}]}.`

func (g *OpenAIGenerator) GeneratePlan(ctx context.Context, req domain.GenerationRequest, catalog []domain.Exercise) (*domain.GeneratedPlan, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req, catalog)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   2500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from chat API")
	}
	return parsePlan(resp.Choices[0].Message.Content)
}

func buildPrompt(req domain.GenerationRequest, catalog []domain.Exercise) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day per week training routine.\n", req.DaysPerWeek)
	fmt.Fprintf(&b, "- Goal: %s\n- Level: %s\n- Session length: %d minutes\n", req.Goal, req.Level, req.DurationMinutes)
	if len(req.MuscleGroups) > 0 {
		fmt.Fprintf(&b, "- Focus muscle groups: %s\n", strings.Join(req.MuscleGroups, ", "))
	}
	if len(req.Equipment) > 0 {
		fmt.Fprintf(&b, "- Available equipment: %s\n", strings.Join(req.Equipment, ", "))
	}
	if len(catalog) > 0 {
		b.WriteString("Prefer exercises from this list, using the exact names:\n")
		for _, ex := range catalog {
			fmt.Fprintf(&b, "- %s (%s)\n", ex.Name, ex.MuscleGroup)
		}
	}
	return b.String()
}

func parsePlan(content string) (*domain.GeneratedPlan, error) {
	var plan domain.GeneratedPlan
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if len(plan.Days) == 0 {
		return nil, ErrEmptyPlan
	}
	for _, day := range plan.Days {
		if len(day.Exercises) == 0 {
			return nil, ErrEmptyPlan
		}
	}
	return &plan, nil
}
