package usecase

import "math/rand"

// cannedReplies is the persona-keyed fallback pool used when the completion
// service cannot produce a usable answer. Every list is non-empty, so Respond
// always returns a non-empty string.
var cannedReplies = map[string][]string{
	"maya": {
		"Welcome! I'm so excited to have you join our team. Your first day is going to be amazing!",
		"I'm here to make your onboarding smooth and enjoyable. What would you like to know about your first day?",
		"Let's get you settled in! I'll guide you through everything step by step.",
	},
	"alex": {
		"I'm here to help with all your HR questions. What do you need to know about benefits or policies?",
		"Let me guide you through the paperwork and procedures. What's your main concern?",
		"I can help with benefits, policies, and company procedures. What would you like to know?",
	},
	"jordan": {
		"Welcome to our company culture! I'm here to help you understand how we work together.",
		"Let me share some insights about our company values and traditions. What interests you most?",
		"I'll help you understand our culture and how to thrive here. What would you like to know?",
	},
	"sam": {
		"I'm here to help with all your tech setup needs. What equipment or software do you need help with?",
		"Let me guide you through the technical setup process. What's your main question?",
		"I can help with computer setup, software access, and technical questions. What do you need?",
	},
}

// StaticResponder serves canned replies keyed by persona. The reply tables
// are read-only; the randomness source is injected so selection is
// deterministic under test.
type StaticResponder struct {
	pools map[string][]string
	intn  func(n int) int
}

// NewStaticResponder creates a responder. A nil intn falls back to the
// shared math/rand source.
func NewStaticResponder(intn func(n int) int) *StaticResponder {
	if intn == nil {
		intn = rand.Intn
	}
	return &StaticResponder{pools: cannedReplies, intn: intn}
}

// Respond picks a canned reply for the persona, falling back to the default
// persona's pool for unknown keys.
func (r *StaticResponder) Respond(personaKey, _ string) string {
	pool, ok := r.pools[personaKey]
	if !ok {
		pool = r.pools[DefaultPersonaKey]
	}
	return pool[r.intn(len(pool))]
}
