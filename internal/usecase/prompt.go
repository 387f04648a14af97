package usecase

import (
	"fmt"
	"strings"

	"onboarding-agent/internal/domain"
)

// Continuity guidelines: exactly one of these appears in every composed
// prompt. Callers' test suites depend on the literal lines.
const (
	greetingGuideline     = "- Start with a warm greeting since this is your first message to this user"
	continuationGuideline = "- Continue the conversation naturally - NO greetings, welcomes, or introductions since we're already talking"
)

// classifyContinuity decides whether the reply continues an existing exchange
// and renders the prior turns as a transcript. The last turn is the one being
// answered and never appears in the transcript.
func classifyContinuity(history []domain.ConversationTurn, agentName string) (bool, string) {
	if len(history) <= 1 {
		return false, ""
	}
	lines := make([]string, 0, len(history)-1)
	for _, turn := range history[:len(history)-1] {
		speaker := agentName
		if turn.Role == domain.RoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+turn.Message)
	}
	return true, strings.Join(lines, "\n")
}

// composePrompt builds the single-turn instruction text sent to the
// completion service. Section order is fixed: persona, knowledge, expertise,
// guidelines, closing directive, transcript, user message. Downstream answer
// quality depends on guidelines preceding the conversational content.
func composePrompt(p domain.Persona, knowledge string, isContinuation bool, companyName, transcript, message string) string {
	if strings.TrimSpace(companyName) == "" {
		companyName = "this company"
	}
	continuity := greetingGuideline
	if isContinuation {
		continuity = continuationGuideline
	}

	prompt := strings.Join([]string{
		p.Context,
		"",
		"COMPANY KNOWLEDGE BASE:",
		knowledge,
		"",
		"YOUR EXPERTISE: " + p.Focus,
		"",
		"CONVERSATION GUIDELINES:",
		"- Answer based on actual company information when available",
		"- Be specific and reference company details",
		"- Keep responses helpful but concise (2-4 sentences)",
		"- If you don't have specific info, acknowledge it and suggest alternatives",
		"- Maintain your warm, professional personality as " + p.Name,
		"- Focus on " + p.Focus + " while being helpful with other topics",
		continuity,
		"",
		fmt.Sprintf("Respond as %s, the %s for %s.", p.Name, p.Role, companyName),
	}, "\n")

	if transcript != "" {
		prompt += "\n\nCONVERSATION HISTORY:\n" + transcript
	}
	return prompt + "\n\nUser message: " + message
}
