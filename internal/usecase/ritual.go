package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Ritual is the structured output of the ritual generator.
type Ritual struct {
	Title            string `json:"title"`
	Category         string `json:"category"`
	TimeEstimate     string `json:"time_estimate"`
	ParticipantCount string `json:"participant_count"`
	Description      string `json:"description"`
	Content          string `json:"content"`
}

type RitualInput struct {
	Intent   string
	Trigger  string
	Audience string
	Time     string
	Vibe     string
}

// RitualService generates short team rituals from user-provided constraints.
// The model is instructed to emit strict JSON; anything else is an upstream
// error, never partial output.
type RitualService struct {
	gateway CompletionGateway
}

func NewRitualService(gateway CompletionGateway) (*RitualService, error) {
	if gateway == nil {
		return nil, errors.New("usecase: completion gateway must not be nil")
	}
	return &RitualService{gateway: gateway}, nil
}

func (s *RitualService) Generate(ctx context.Context, in RitualInput) (Ritual, error) {
	for _, field := range []string{in.Intent, in.Trigger, in.Audience, in.Time, in.Vibe} {
		if strings.TrimSpace(field) == "" {
			return Ritual{}, newError(ErrorInvalidInput, "missing_required_fields", nil)
		}
	}

	prompt := ritualSystemPrompt() + "\n\n" + ritualUserPrompt(in)
	completion, err := s.gateway.Complete(ctx, prompt, rawOutputTokens)
	if uerr := completionError(completion.Outcome, err); uerr != nil {
		return Ritual{}, uerr
	}

	ritual, err := parseRitual(completion.Text)
	if err != nil {
		return Ritual{}, newError(ErrorUpstream, "ritual_malformed_response", err)
	}
	return ritual, nil
}

func ritualSystemPrompt() string {
	return strings.Join([]string{
		"You are an expert in designing short, impactful team rituals for the workplace.",
		"Your goal is to generate a ritual based on user-provided constraints.",
		"The output MUST be a valid JSON object. Do not include any text or markdown formatting before or after the JSON object.",
		"The JSON object should have the following structure:",
		`{`,
		`  "title": "A creative and concise title for the ritual.",`,
		`  "category": "The 'vibe' provided by the user.",`,
		`  "time_estimate": "The time constraint provided by the user.",`,
		`  "participant_count": "The audience size provided by the user.",`,
		`  "description": "A short, one-sentence summary of the ritual's purpose and what it entails.",`,
		`  "content": "A detailed, step-by-step guide on how to perform the ritual. Use markdown for formatting, like using bullet points or numbered lists. Be clear and actionable. Explain the 'why' behind the steps."`,
		`}`,
	}, "\n")
}

func ritualUserPrompt(in RitualInput) string {
	return strings.Join([]string{
		"Generate a team ritual with the following properties:",
		"- Intent (The Goal): " + in.Intent,
		"- Trigger (The Moment): " + in.Trigger,
		"- Audience (The Who): " + in.Audience,
		"- Time (The How Long): " + in.Time,
		"- Tone / Vibe (The Feeling): " + in.Vibe,
	}, "\n")
}

// parseRitual decodes the model reply as exactly one JSON object with the
// expected keys. Models occasionally wrap JSON in a markdown fence despite
// instructions; strip that before decoding.
func parseRitual(raw string) (Ritual, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var out Ritual
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return Ritual{}, fmt.Errorf("usecase: decode ritual: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return Ritual{}, errors.New("usecase: decode ritual: multiple JSON values")
		}
		return Ritual{}, fmt.Errorf("usecase: decode ritual trailing data: %w", err)
	}
	if strings.TrimSpace(out.Title) == "" || strings.TrimSpace(out.Content) == "" {
		return Ritual{}, errors.New("usecase: ritual missing title or content")
	}
	return out, nil
}
