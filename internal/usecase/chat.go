package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"onboarding-agent/internal/domain"
)

// Output token budgets. Smart mode buys a longer answer; the raw completion
// and ritual endpoints get the largest budget.
const (
	defaultOutputTokens = 256
	smartOutputTokens   = 400
	rawOutputTokens     = 1024
)

// CompletionGateway sends one composed prompt to the completion service and
// classifies the result. Implementations make exactly one outbound call per
// invocation; retry policy belongs to the caller.
type CompletionGateway interface {
	Complete(ctx context.Context, prompt string, maxOutputTokens int) (domain.Completion, error)
}

// Responder supplies canned replies when the gateway cannot.
type Responder interface {
	Respond(personaKey, message string) string
}

// ChatService runs the conversation request pipeline: assemble knowledge,
// classify continuity, compose the prompt, call the gateway, and substitute a
// canned reply on any non-success outcome.
type ChatService struct {
	gateway  CompletionGateway
	catalog  *PersonaCatalog
	fallback Responder
}

type ChatInput struct {
	Message   string
	AgentType string
	Company   *domain.CompanyContext
	History   []domain.ConversationTurn
	SmartMode bool
}

type ChatOutput struct {
	Response string
	Agent    string
	Usage    *domain.TokenUsage

	// IsFallback is true when Response is a canned reply.
	IsFallback bool

	// RateLimited is set alongside IsFallback when the completion service
	// reported rate limiting, so a caller can show "try again shortly"
	// instead of the canned line. It is the one failure the pipeline does
	// not silently mask.
	RateLimited bool
}

func NewChatService(gateway CompletionGateway, catalog *PersonaCatalog, fallback Responder) (*ChatService, error) {
	if gateway == nil {
		return nil, errors.New("usecase: completion gateway must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: persona catalog must not be nil")
	}
	if fallback == nil {
		return nil, errors.New("usecase: fallback responder must not be nil")
	}
	return &ChatService{gateway: gateway, catalog: catalog, fallback: fallback}, nil
}

// Chat answers one turn. It returns an error only for malformed requests or
// missing configuration; every completion failure resolves to a canned reply.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_required", nil)
	}

	persona := s.catalog.Lookup(in.AgentType)
	knowledge := assembleKnowledge(in.Company)
	isContinuation, transcript := classifyContinuity(in.History, persona.Name)

	var companyName string
	if in.Company != nil {
		companyName = in.Company.Name
	}
	prompt := composePrompt(persona, knowledge, isContinuation, companyName, transcript, message)

	maxTokens := defaultOutputTokens
	if in.SmartMode {
		maxTokens = smartOutputTokens
	}

	completion, err := s.gateway.Complete(ctx, prompt, maxTokens)
	if completion.Outcome == domain.OutcomeUnknown {
		// The gateway never reached the service, so there is nothing to
		// degrade from.
		return ChatOutput{}, newError(ErrorNotConfigured, "completion_not_configured", err)
	}

	if completion.Outcome == domain.OutcomeSuccess {
		return ChatOutput{
			Response: completion.Text,
			Agent:    persona.Name,
			Usage:    completion.Usage,
		}, nil
	}

	slog.WarnContext(ctx, "completion failed, serving canned reply",
		"outcome", completion.Outcome.String(), "agent", persona.Key, "err", err)

	return ChatOutput{
		Response:    s.fallback.Respond(persona.Key, message),
		Agent:       persona.Name,
		IsFallback:  true,
		RateLimited: completion.Outcome == domain.OutcomeRateLimited,
	}, nil
}
