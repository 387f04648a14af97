package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"onboarding-agent/internal/domain"
)

// Fixed generation parameters. These are not exposed to callers; only the
// output token budget varies per request.
const (
	temperature = 0.7
	topK        = 40
	topP        = 0.95
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
)

// generateRequest is the minimal request shape for the generateContent
// endpoint.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse is the minimal response shape returned by generateContent.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *domain.TokenUsage `json:"usageMetadata"`
}

// tokenPayload is the expected JSON shape stored in SSM for the API key.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context. The request URL is reported without the key query parameter.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused Gemini client for single-turn content generation. It
// makes exactly one outbound call per Complete invocation; there is no
// internal retry loop.
type Client struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client backed by the given paramstore.Getter for API
// key retrieval. The key is fetched from SSM on the first Complete call and
// reused for the lifetime of the process.
func NewClient(ps Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("gemini: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("gemini: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = fetchAPIKeyFromParamStore(ctx, c.getter, c.tokenParameterName())
	})
	return c.apiKey, c.keyErr
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/gemini-api-key"
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// generateURL is the endpoint without credentials, safe for error messages.
func generateURL(baseURL, model string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/v1beta/models/" + model + ":generateContent"
}

func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, safetySetting{Category: cat, Threshold: "BLOCK_MEDIUM_AND_ABOVE"})
	}
	return settings
}

// Complete sends one prompt to the generateContent endpoint and classifies
// the result. The returned error carries detail for logging; the Outcome is
// what callers branch on. An OutcomeUnknown result means the service was
// never reached (missing configuration).
func (c *Client) Complete(ctx context.Context, prompt string, maxOutputTokens int) (domain.Completion, error) {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("gemini: resolve api key: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
		SafetySettings: defaultSafetySettings(),
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := generateURL(c.baseURL, c.model)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url+"?key="+apiKey, bytes.NewReader(body))
	if reqErr != nil {
		return domain.Completion{}, fmt.Errorf("gemini: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return domain.Completion{Outcome: domain.OutcomeTransportFailure},
			fmt.Errorf("gemini: request failed: %w", doErr)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		statusErr := &HTTPStatusError{StatusCode: res.StatusCode, URL: url, Body: string(buf)}
		return domain.Completion{Outcome: classifyStatus(res.StatusCode)}, statusErr
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return domain.Completion{Outcome: domain.OutcomeTransportFailure},
			fmt.Errorf("gemini: read response body: %w", err)
	}

	var payload generateResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return domain.Completion{Outcome: domain.OutcomeEmptyContent},
			fmt.Errorf("gemini: decode response: %w", decErr)
	}

	text := firstCandidateText(payload)
	if text == "" {
		return domain.Completion{Outcome: domain.OutcomeEmptyContent},
			errors.New("gemini: no text in response")
	}

	return domain.Completion{
		Outcome: domain.OutcomeSuccess,
		Text:    text,
		Usage:   payload.UsageMetadata,
	}, nil
}

func classifyStatus(status int) domain.Outcome {
	switch status {
	case http.StatusTooManyRequests:
		return domain.OutcomeRateLimited
	case http.StatusBadRequest:
		return domain.OutcomeInvalidRequest
	default:
		return domain.OutcomeServiceError
	}
}

func firstCandidateText(payload generateResponse) string {
	if len(payload.Candidates) == 0 {
		return ""
	}
	parts := payload.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("gemini: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("gemini: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("gemini: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("gemini: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", fmt.Errorf("gemini: API token is empty")
	}
	return tp.Token, nil
}
