package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"onboarding-agent/internal/domain"
	"onboarding-agent/internal/usecase"
)

type stubChat struct {
	out usecase.ChatOutput
	err error
	in  usecase.ChatInput
}

func (s *stubChat) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.in = in
	return s.out, s.err
}

type stubIngest struct {
	result  domain.IngestionResult
	in      usecase.IngestInput
	docs    []domain.DocumentRecord
	docsErr error
}

func (s *stubIngest) Ingest(_ context.Context, in usecase.IngestInput) domain.IngestionResult {
	s.in = in
	return s.result
}

func (s *stubIngest) Documents(_ context.Context, _ string) ([]domain.DocumentRecord, error) {
	return s.docs, s.docsErr
}

type stubComplete struct {
	out usecase.CompleteOutput
	err error
	in  usecase.CompleteInput
}

func (s *stubComplete) Complete(_ context.Context, in usecase.CompleteInput) (usecase.CompleteOutput, error) {
	s.in = in
	return s.out, s.err
}

type stubRitual struct {
	out usecase.Ritual
	err error
	in  usecase.RitualInput
}

func (s *stubRitual) Generate(_ context.Context, in usecase.RitualInput) (usecase.Ritual, error) {
	s.in = in
	return s.out, s.err
}

type stubs struct {
	chat     *stubChat
	ingest   *stubIngest
	complete *stubComplete
	ritual   *stubRitual
}

func newTestHandler(t *testing.T) (*Handler, *stubs) {
	t.Helper()
	s := &stubs{chat: &stubChat{}, ingest: &stubIngest{}, complete: &stubComplete{}, ritual: &stubRitual{}}
	h, err := NewHandler(s.chat, s.ingest, s.complete, s.ritual, 0)
	require.NoError(t, err)
	return h, s
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	s := &stubs{chat: &stubChat{}, ingest: &stubIngest{}, complete: &stubComplete{}, ritual: &stubRitual{}}

	_, err := NewHandler(nil, s.ingest, s.complete, s.ritual, 0)
	require.Error(t, err)
	_, err = NewHandler(s.chat, nil, s.complete, s.ritual, 0)
	require.Error(t, err)
	_, err = NewHandler(s.chat, s.ingest, nil, s.ritual, 0)
	require.Error(t, err)
	_, err = NewHandler(s.chat, s.ingest, s.complete, nil, 0)
	require.Error(t, err)
}

func TestHandle_UnknownRoute(t *testing.T) {
	h, _ := newTestHandler(t)
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/nope", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandle_Health(t *testing.T) {
	h, _ := newTestHandler(t)
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/health", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := parseBody[healthResponse](t, resp.Body)
	require.Equal(t, "OK", out.Status)
	require.NotEmpty(t, out.Timestamp)
}

// ---------------------------------------------------------------------------
// /chat
// ---------------------------------------------------------------------------

func TestHandle_Chat_HappyPath(t *testing.T) {
	h, s := newTestHandler(t)
	s.chat.out = usecase.ChatOutput{
		Response: "Your PTO policy allows 20 days.",
		Agent:    "Alex",
		Usage:    &domain.TokenUsage{TotalTokenCount: 120},
	}

	body := `{
		"message": "What is the PTO policy?",
		"agentType": "alex",
		"companyContext": {"name": "Acme Corp"},
		"conversationHistory": [{"role": "user", "message": "hi"}],
		"isSmartMode": true
	}`
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])

	require.Equal(t, "What is the PTO policy?", s.chat.in.Message)
	require.Equal(t, "alex", s.chat.in.AgentType)
	require.True(t, s.chat.in.SmartMode)
	require.NotNil(t, s.chat.in.Company)
	require.Equal(t, "Acme Corp", s.chat.in.Company.Name)
	require.Len(t, s.chat.in.History, 1)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "Your PTO policy allows 20 days.", out.Response)
	require.Equal(t, "Alex", out.Agent)
	require.False(t, out.IsFallback)
	require.Empty(t, out.Code)
	require.Equal(t, 120, out.Usage.TotalTokenCount)
}

func TestHandle_Chat_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
}

func TestHandle_Chat_RateLimited(t *testing.T) {
	h, s := newTestHandler(t)
	s.chat.out = usecase.ChatOutput{
		Response:    "I'd be happy to help with that!",
		Agent:       "Maya",
		IsFallback:  true,
		RateLimited: true,
	}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `{"message":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "RATE_LIMIT", out.Code)
	require.True(t, out.IsFallback)
	require.Equal(t, "I'd be happy to help with that!", out.Response)
}

func TestHandle_Chat_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "message_required"}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput)},
		{name: "not configured", err: &usecase.Error{Code: usecase.ErrorNotConfigured, Reason: "completion_not_configured"}, status: http.StatusServiceUnavailable, code: string(usecase.ErrorNotConfigured)},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "completion_rate_limited"}, status: http.StatusTooManyRequests, code: string(usecase.ErrorRateLimited)},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "completion_failed"}, status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "document_list_error"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, s := newTestHandler(t)
			s.chat.err = tc.err

			resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `{"message":"hi"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h, _ := newTestHandler(t)
	event := makeEvent(http.MethodGet, "/health", "")
	event.Headers["x-correlation-id"] = "corr-123"

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

// ---------------------------------------------------------------------------
// /upload-pdf
// ---------------------------------------------------------------------------

func uploadEvent(body string) events.APIGatewayProxyRequest {
	event := makeEvent(http.MethodPost, "/upload-pdf", body)
	event.Headers["Content-Type"] = "application/pdf"
	return event
}

func TestHandle_Upload_RejectsNonPDFContentType(t *testing.T) {
	h, _ := newTestHandler(t)
	event := makeEvent(http.MethodPost, "/upload-pdf", "%PDF-1.4 data")

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "Only PDF files are allowed", out.Message)
}

func TestHandle_Upload_EmptyBody(t *testing.T) {
	h, _ := newTestHandler(t)
	resp, err := h.Handle(context.Background(), uploadEvent(""))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "No PDF file uploaded", out.Message)
}

func TestHandle_Upload_OversizeBody(t *testing.T) {
	s := &stubs{chat: &stubChat{}, ingest: &stubIngest{}, complete: &stubComplete{}, ritual: &stubRitual{}}
	h, err := NewHandler(s.chat, s.ingest, s.complete, s.ritual, 8)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), uploadEvent("this body exceeds eight bytes"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_Upload_SpoolsBase64BodyToTempFile(t *testing.T) {
	h, s := newTestHandler(t)
	s.ingest.result = domain.IngestionResult{Status: domain.TextExtracted, Text: "hello", Pages: 1}

	event := uploadEvent(base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 raw bytes")))
	event.IsBase64Encoded = true
	event.Headers["X-Filename"] = "handbook.pdf"
	event.QueryStringParameters = map[string]string{"companyId": "acme"}

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, "handbook.pdf", s.ingest.in.Filename)
	require.Equal(t, "acme", s.ingest.in.CompanyID)
	require.NotEmpty(t, s.ingest.in.Path)
	spooled, readErr := os.ReadFile(s.ingest.in.Path)
	require.NoError(t, readErr)
	require.Equal(t, "%PDF-1.4 raw bytes", string(spooled))
	_ = os.Remove(s.ingest.in.Path)
}

func TestHandle_Upload_DefaultFilename(t *testing.T) {
	h, s := newTestHandler(t)
	s.ingest.result = domain.IngestionResult{Status: domain.TextExtracted, Text: "hello", Pages: 1}

	resp, err := h.Handle(context.Background(), uploadEvent("%PDF-1.4 data"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "upload.pdf", s.ingest.in.Filename)
	_ = os.Remove(s.ingest.in.Path)
}

func TestHandle_Upload_Envelopes(t *testing.T) {
	cases := []struct {
		name        string
		result      domain.IngestionResult
		success     bool
		textContent string
		message     string
	}{
		{
			name:        "extracted",
			result:      domain.IngestionResult{Status: domain.TextExtracted, Text: "handbook text", Pages: 3},
			success:     true,
			textContent: "handbook text",
			message:     "PDF parsed successfully",
		},
		{
			name:        "empty extraction",
			result:      domain.IngestionResult{Status: domain.EmptyExtraction, Pages: 2},
			success:     true,
			textContent: "[PDF processed but no readable text found - may be image-based PDF]",
			message:     "PDF processed but contained no extractable text",
		},
		{
			name:    "unreadable",
			result:  domain.IngestionResult{Status: domain.UnreadableDocument, Reason: "could not open or parse the document"},
			success: false,
			message: "PDF received but text extraction failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, s := newTestHandler(t)
			s.ingest.result = tc.result

			resp, err := h.Handle(context.Background(), uploadEvent("%PDF-1.4 data"))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			_ = os.Remove(s.ingest.in.Path)

			out := parseBody[uploadResponse](t, resp.Body)
			require.Equal(t, tc.success, out.Success)
			require.Equal(t, tc.textContent, out.TextContent)
			require.Equal(t, tc.message, out.Message)
			require.Equal(t, tc.result.Pages, out.Pages)
			require.Equal(t, len(tc.result.Text), out.TextLength)
		})
	}
}

// ---------------------------------------------------------------------------
// /complete
// ---------------------------------------------------------------------------

func TestHandle_Complete_HappyPath(t *testing.T) {
	h, s := newTestHandler(t)
	s.complete.out = usecase.CompleteOutput{Response: "Generated answer.", Model: "gemini-1.5-flash"}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/complete", `{"prompt":"Explain onboarding.","systemPrompt":"Be brief."}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Explain onboarding.", s.complete.in.Prompt)
	require.Equal(t, "Be brief.", s.complete.in.SystemPrompt)

	out := parseBody[completeResponse](t, resp.Body)
	require.Equal(t, "Generated answer.", out.Response)
	require.Equal(t, "gemini-1.5-flash", out.Model)
}

func TestHandle_Complete_UpstreamError(t *testing.T) {
	h, s := newTestHandler(t)
	s.complete.err = &usecase.Error{Code: usecase.ErrorUpstream, Reason: "completion_failed"}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/complete", `{"prompt":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// /ritual
// ---------------------------------------------------------------------------

func TestHandle_Ritual_HappyPath(t *testing.T) {
	h, s := newTestHandler(t)
	s.ritual.out = usecase.Ritual{Title: "Ship It Circle", Category: "energizing"}

	body := `{"intent":"celebrate","trigger":"sprint end","audience":"5-10","time":"15 minutes","vibe":"energizing"}`
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/ritual", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "celebrate", s.ritual.in.Intent)
	require.Equal(t, "energizing", s.ritual.in.Vibe)

	out := parseBody[usecase.Ritual](t, resp.Body)
	require.Equal(t, "Ship It Circle", out.Title)
}

func TestHandle_Ritual_MissingFields(t *testing.T) {
	h, s := newTestHandler(t)
	s.ritual.err = &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "missing_required_fields"}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/ritual", `{"intent":"celebrate"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// /documents
// ---------------------------------------------------------------------------

func TestHandle_Documents_HappyPath(t *testing.T) {
	h, s := newTestHandler(t)
	s.ingest.docs = []domain.DocumentRecord{
		{DocumentID: "doc-1", Filename: "handbook.pdf", Pages: 12, TextLength: 4096, Status: "extracted"},
		{DocumentID: "doc-2", Filename: "scan.pdf", Pages: 2, Status: "empty"},
	}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/documents", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := parseBody[documentsResponse](t, resp.Body)
	require.Len(t, out.Documents, 2)
	require.Equal(t, "handbook.pdf", out.Documents[0].Filename)
	require.Equal(t, "extracted", out.Documents[0].Status)
}

func TestHandle_Documents_ListError(t *testing.T) {
	h, s := newTestHandler(t)
	s.ingest.docsErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "document_list_error"}

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/documents", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
