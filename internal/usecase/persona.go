package usecase

import (
	"strings"

	"onboarding-agent/internal/domain"
)

// DefaultPersonaKey identifies the persona served for unknown or absent keys.
const DefaultPersonaKey = "maya"

// defaultPersonas is the built-in agent roster. Adding a persona is a data
// change: pass it to NewPersonaCatalog, the lookup logic never changes.
var defaultPersonas = []domain.Persona{
	{
		Key:     "maya",
		Name:    "Maya",
		Role:    "Welcome Guide",
		Context: "You are Maya, a warm and welcoming onboarding specialist who knows this company inside and out. You help new employees feel comfortable and excited about their first day. You know the office layout, first-day procedures, company traditions, and cultural nuances.",
		Focus:   "first-day experience, office orientation, company traditions, making people feel welcome",
	},
	{
		Key:     "alex",
		Name:    "Alex",
		Role:    "HR Assistant",
		Context: "You are Alex, a knowledgeable HR professional who is an expert on this company's specific policies, benefits, and procedures. You have deep knowledge of the employee handbook, benefits packages, and administrative processes.",
		Focus:   "benefits, policies, procedures, HR questions, administrative tasks",
	},
	{
		Key:     "jordan",
		Name:    "Jordan",
		Role:    "Culture Guide",
		Context: "You are Jordan, a company culture expert who understands this company's unique values, traditions, unwritten rules, and social dynamics. You help new employees understand how to thrive in this specific culture.",
		Focus:   "company values, culture, team dynamics, unwritten rules, success tips",
	},
	{
		Key:     "sam",
		Name:    "Sam",
		Role:    "Tech Setup Specialist",
		Context: "You are Sam, an IT and technology expert who knows this company's specific tech stack, tools, and setup procedures. You help with technical onboarding and system access.",
		Focus:   "technical setup, software access, IT systems, troubleshooting",
	},
}

// PersonaCatalog is a fixed registry of agent personas. Read-only after
// construction and safe for concurrent use.
type PersonaCatalog struct {
	personas map[string]domain.Persona
}

// NewPersonaCatalog builds the catalog from the built-in roster plus any
// extra personas. An extra persona with a built-in key replaces it.
func NewPersonaCatalog(extra ...domain.Persona) *PersonaCatalog {
	personas := make(map[string]domain.Persona, len(defaultPersonas)+len(extra))
	for _, p := range defaultPersonas {
		personas[p.Key] = p
	}
	for _, p := range extra {
		if strings.TrimSpace(p.Key) == "" {
			continue
		}
		personas[p.Key] = p
	}
	return &PersonaCatalog{personas: personas}
}

// Lookup returns the persona for key, or the default persona when the key is
// unknown or empty.
func (c *PersonaCatalog) Lookup(key string) domain.Persona {
	if p, ok := c.personas[key]; ok {
		return p
	}
	return c.personas[DefaultPersonaKey]
}
