package domain

// Outcome classifies a single completion call. Exactly one outcome is
// produced per invocation.
type Outcome int

const (
	// OutcomeUnknown is the zero value; a completed gateway call never
	// returns it.
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeRateLimited
	OutcomeInvalidRequest
	OutcomeServiceError
	OutcomeEmptyContent
	OutcomeTransportFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeInvalidRequest:
		return "invalid_request"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeEmptyContent:
		return "empty_content"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// TokenUsage is the usage metadata reported by the completion service.
type TokenUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Completion is the classified result of one completion call. Text and Usage
// are populated only for OutcomeSuccess.
type Completion struct {
	Outcome Outcome
	Text    string
	Usage   *TokenUsage
}
