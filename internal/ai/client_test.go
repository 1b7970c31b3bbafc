package ai

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	content string
	err     error
	got     openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.got = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.content}}},
	}, nil
}

func TestGeneratePlan(t *testing.T) {
	stub := &stubCompleter{content: `{"name":"Push Pull","days":[{"day":1,"focus":"push","exercises":[{"name":"Bench Press","sets":4,"reps":"8-12","restSeconds":90}]}]}`}
	g := &OpenAIGenerator{client: stub, model: "gpt-4o-mini"}

	req := domain.GenerationRequest{Goal: "strength", Level: domain.LevelIntermediate, DaysPerWeek: 1, DurationMinutes: 45}
	plan, err := g.GeneratePlan(context.Background(), req, []domain.Exercise{{Name: "Bench Press", MuscleGroup: "Chest"}})
	require.NoError(t, err)

	assert.Equal(t, "Push Pull", plan.Name)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, "Bench Press", plan.Days[0].Exercises[0].Name)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, stub.got.ResponseFormat.Type)
	assert.Contains(t, stub.got.Messages[1].Content, "Bench Press (Chest)")
}

func TestGeneratePlan_Errors(t *testing.T) {
	req := domain.GenerationRequest{Level: domain.LevelBeginner, DaysPerWeek: 2}

	apiErr := errors.New("boom")
	_, err := (&OpenAIGenerator{client: &stubCompleter{err: apiErr}}).GeneratePlan(context.Background(), req, nil)
	assert.ErrorIs(t, err, apiErr)

	_, err = (&OpenAIGenerator{client: &stubCompleter{content: "not json"}}).GeneratePlan(context.Background(), req, nil)
	assert.Error(t, err)

	_, err = (&OpenAIGenerator{client: &stubCompleter{content: `{"name":"x","days":[]}`}}).GeneratePlan(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)
}
