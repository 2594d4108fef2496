package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"health-wizard/internal/domain"
)

// FallbackComment replaces the advisory comment whenever generation fails
// or produces empty text.
const FallbackComment = "Overall you're doing well. Keep up the small improvements."

// ParamGetter fetches configuration from the parameter store.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// LLMClient produces a chat completion.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// GenerateStartupComment makes the single advisory-comment completion of
// the process lifetime: prompt and model come from the parameter store
// under paramPrefix. It always returns a usable comment — on any failure
// the fixed fallback is returned together with the cause, which the caller
// may log but must not propagate.
func GenerateStartupComment(ctx context.Context, params ParamGetter, llm LLMClient, paramPrefix string) (string, error) {
	if params == nil {
		return FallbackComment, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return FallbackComment, errors.New("usecase: llm client must not be nil")
	}
	prefix := strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if prefix == "" {
		return FallbackComment, errors.New("usecase: parameter prefix must not be empty")
	}

	prompt, err := params.GetParameter(ctx, prefix+"/advisory_prompt")
	if err != nil {
		return FallbackComment, fmt.Errorf("usecase: load advisory prompt: %w", err)
	}
	model, err := params.GetParameter(ctx, prefix+"/config/openai_model")
	if err != nil {
		return FallbackComment, fmt.Errorf("usecase: load openai model: %w", err)
	}

	out, err := llm.Chat(ctx, model, []domain.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return FallbackComment, fmt.Errorf("usecase: advisory completion: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackComment, errors.New("usecase: advisory completion was empty")
	}
	return out, nil
}
