package usecase

import (
	"context"
	"errors"
	"strings"

	"onboarding-agent/internal/domain"
)

// CompleteService exposes raw single-turn completions. Unlike the chat
// pipeline it never substitutes canned text: every failure surfaces as a
// typed error the transport layer maps to a status code.
type CompleteService struct {
	gateway CompletionGateway
	model   string
}

type CompleteInput struct {
	Prompt       string
	SystemPrompt string
}

type CompleteOutput struct {
	Response string
	Usage    *domain.TokenUsage
	Model    string
}

func NewCompleteService(gateway CompletionGateway, model string) (*CompleteService, error) {
	if gateway == nil {
		return nil, errors.New("usecase: completion gateway must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("usecase: model name must not be empty")
	}
	return &CompleteService{gateway: gateway, model: model}, nil
}

func (s *CompleteService) Complete(ctx context.Context, in CompleteInput) (CompleteOutput, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return CompleteOutput{}, newError(ErrorInvalidInput, "prompt_required", nil)
	}

	// A caller-supplied system prompt replaces the generic instruction
	// wholesale; it is expected to embed whatever task text it needs.
	text := in.SystemPrompt
	if strings.TrimSpace(text) == "" {
		text = "You are a helpful AI assistant. Respond to: " + prompt
	}

	completion, err := s.gateway.Complete(ctx, text, rawOutputTokens)
	if uerr := completionError(completion.Outcome, err); uerr != nil {
		return CompleteOutput{}, uerr
	}

	return CompleteOutput{
		Response: completion.Text,
		Usage:    completion.Usage,
		Model:    s.model,
	}, nil
}

// completionError maps a non-success outcome to the usecase error taxonomy.
// Returns nil for OutcomeSuccess.
func completionError(outcome domain.Outcome, err error) *Error {
	switch outcome {
	case domain.OutcomeSuccess:
		return nil
	case domain.OutcomeUnknown:
		return newError(ErrorNotConfigured, "completion_not_configured", err)
	case domain.OutcomeRateLimited:
		return newError(ErrorRateLimited, "completion_rate_limited", err)
	case domain.OutcomeInvalidRequest:
		return newError(ErrorInvalidInput, "completion_invalid_request", err)
	case domain.OutcomeEmptyContent:
		return newError(ErrorUpstream, "completion_empty_content", err)
	default:
		return newError(ErrorUpstream, "completion_failed", err)
	}
}
