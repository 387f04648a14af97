package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"onboarding-agent/internal/domain"
	"onboarding-agent/internal/usecase"
)

const defaultMaxUploadBytes = 10 << 20 // 10 MB

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type IngestUseCase interface {
	Ingest(ctx context.Context, in usecase.IngestInput) domain.IngestionResult
	Documents(ctx context.Context, companyID string) ([]domain.DocumentRecord, error)
}

type CompleteUseCase interface {
	Complete(ctx context.Context, in usecase.CompleteInput) (usecase.CompleteOutput, error)
}

type RitualUseCase interface {
	Generate(ctx context.Context, in usecase.RitualInput) (usecase.Ritual, error)
}

// Handler routes API Gateway events to the use cases.
type Handler struct {
	chat           ChatUseCase
	ingest         IngestUseCase
	complete       CompleteUseCase
	ritual         RitualUseCase
	maxUploadBytes int
}

func NewHandler(chat ChatUseCase, ingest IngestUseCase, complete CompleteUseCase, ritual RitualUseCase, maxUploadBytes int) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if ingest == nil {
		return nil, errors.New("handler: ingest use case must not be nil")
	}
	if complete == nil {
		return nil, errors.New("handler: complete use case must not be nil")
	}
	if ritual == nil {
		return nil, errors.New("handler: ritual use case must not be nil")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		chat:           chat,
		ingest:         ingest,
		complete:       complete,
		ritual:         ritual,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

type chatRequest struct {
	Message             string                    `json:"message"`
	AgentType           string                    `json:"agentType"`
	CompanyContext      *domain.CompanyContext    `json:"companyContext"`
	ConversationHistory []domain.ConversationTurn `json:"conversationHistory"`
	IsSmartMode         bool                      `json:"isSmartMode"`
}

type chatResponse struct {
	Response   string             `json:"response"`
	IsFallback bool               `json:"isFallback"`
	Agent      string             `json:"agent"`
	Usage      *domain.TokenUsage `json:"usage,omitempty"`
	Code       string             `json:"code,omitempty"`
}

type completeRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt"`
}

type completeResponse struct {
	Response string             `json:"response"`
	Usage    *domain.TokenUsage `json:"usage,omitempty"`
	Model    string             `json:"model"`
}

type ritualRequest struct {
	Intent   string `json:"intent"`
	Trigger  string `json:"trigger"`
	Audience string `json:"audience"`
	Time     string `json:"time"`
	Vibe     string `json:"vibe"`
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	TextContent string `json:"textContent"`
	Pages       int    `json:"pages"`
	TextLength  int    `json:"textLength"`
	Message     string `json:"message"`
}

type documentEntry struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	TextLength int    `json:"textLength"`
	Status     string `json:"status"`
}

type documentsResponse struct {
	Documents []documentEntry `json:"documents"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handle dispatches one API Gateway event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, "x-correlation-id")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	var resp events.APIGatewayProxyResponse
	switch {
	case event.HTTPMethod == http.MethodGet && event.Path == "/health":
		resp = h.handleHealth()
	case event.HTTPMethod == http.MethodPost && event.Path == "/chat":
		resp = h.handleChat(ctx, event)
	case event.HTTPMethod == http.MethodPost && event.Path == "/upload-pdf":
		resp = h.handleUpload(ctx, event)
	case event.HTTPMethod == http.MethodPost && event.Path == "/complete":
		resp = h.handleComplete(ctx, event)
	case event.HTTPMethod == http.MethodPost && event.Path == "/ritual":
		resp = h.handleRitual(ctx, event)
	case event.HTTPMethod == http.MethodGet && event.Path == "/documents":
		resp = h.handleDocuments(ctx, event)
	default:
		resp = jsonResponse(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	}

	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["X-Correlation-Id"] = correlationID
	return resp, nil
}

func (h *Handler) handleHealth() events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "Onboarding agent API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleChat(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{
		Message:   req.Message,
		AgentType: req.AgentType,
		Company:   req.CompanyContext,
		History:   req.ConversationHistory,
		SmartMode: req.IsSmartMode,
	})
	if err != nil {
		return errorFor(err)
	}

	body := chatResponse{
		Response:   out.Response,
		IsFallback: out.IsFallback,
		Agent:      out.Agent,
		Usage:      out.Usage,
	}
	if out.RateLimited {
		// The canned answer still ships so the caller can choose between
		// showing it and a "try again shortly" notice.
		body.Code = "RATE_LIMIT"
		return jsonResponse(http.StatusTooManyRequests, body)
	}
	return jsonResponse(http.StatusOK, body)
}

func (h *Handler) handleUpload(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	contentType := headerValue(event.Headers, "content-type")
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return jsonResponse(http.StatusBadRequest, errorResponse{
			Error:   string(usecase.ErrorInvalidInput),
			Message: "Only PDF files are allowed",
		})
	}

	data, err := requestBytes(event)
	if err != nil || len(data) == 0 {
		return jsonResponse(http.StatusBadRequest, errorResponse{
			Error:   string(usecase.ErrorInvalidInput),
			Message: "No PDF file uploaded",
		})
	}
	if len(data) > h.maxUploadBytes {
		return jsonResponse(http.StatusBadRequest, errorResponse{
			Error:   string(usecase.ErrorInvalidInput),
			Message: "File exceeds the upload size limit",
		})
	}

	filename := headerValue(event.Headers, "x-filename")
	if filename == "" {
		filename = "upload.pdf"
	}

	path, err := spoolUpload(data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to spool upload", "err", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
	}

	result := h.ingest.Ingest(ctx, usecase.IngestInput{
		Path:      path,
		Filename:  filename,
		CompanyID: event.QueryStringParameters["companyId"],
	})

	return jsonResponse(http.StatusOK, uploadEnvelope(filename, result))
}

// uploadEnvelope renders an ingestion result as the caller-facing 200
// envelope. An image-only PDF is a success with empty text, not a failure.
func uploadEnvelope(filename string, result domain.IngestionResult) uploadResponse {
	switch result.Status {
	case domain.TextExtracted:
		return uploadResponse{
			Success:     true,
			Filename:    filename,
			TextContent: result.Text,
			Pages:       result.Pages,
			TextLength:  len(result.Text),
			Message:     "PDF parsed successfully",
		}
	case domain.EmptyExtraction:
		return uploadResponse{
			Success:     true,
			Filename:    filename,
			TextContent: "[PDF processed but no readable text found - may be image-based PDF]",
			Pages:       result.Pages,
			Message:     "PDF processed but contained no extractable text",
		}
	default:
		return uploadResponse{
			Success:  false,
			Filename: filename,
			Message:  "PDF received but text extraction failed",
		}
	}
}

func (h *Handler) handleComplete(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var req completeRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.complete.Complete(ctx, usecase.CompleteInput{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		return errorFor(err)
	}
	return jsonResponse(http.StatusOK, completeResponse{
		Response: out.Response,
		Usage:    out.Usage,
		Model:    out.Model,
	})
}

func (h *Handler) handleRitual(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var req ritualRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.ritual.Generate(ctx, usecase.RitualInput{
		Intent:   req.Intent,
		Trigger:  req.Trigger,
		Audience: req.Audience,
		Time:     req.Time,
		Vibe:     req.Vibe,
	})
	if err != nil {
		return errorFor(err)
	}
	return jsonResponse(http.StatusOK, out)
}

func (h *Handler) handleDocuments(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	recs, err := h.ingest.Documents(ctx, event.QueryStringParameters["companyId"])
	if err != nil {
		return errorFor(err)
	}
	entries := make([]documentEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, documentEntry{
			DocumentID: rec.DocumentID,
			Filename:   rec.Filename,
			Pages:      rec.Pages,
			TextLength: rec.TextLength,
			Status:     rec.Status,
		})
	}
	return jsonResponse(http.StatusOK, documentsResponse{Documents: entries})
}

// requestBytes decodes the event body, honoring API Gateway base64 encoding.
func requestBytes(event events.APIGatewayProxyRequest) ([]byte, error) {
	if event.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(event.Body)
	}
	return []byte(event.Body), nil
}

// spoolUpload writes the upload to a temporary file. The ingest service owns
// its removal.
func spoolUpload(data []byte) (string, error) {
	f, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// errorFor maps a use case error to its HTTP response.
func errorFor(err error) events.APIGatewayProxyResponse {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
	}
	status := http.StatusInternalServerError
	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorNotConfigured:
		status = http.StatusServiceUnavailable
	case usecase.ErrorRateLimited:
		status = http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		status = http.StatusBadGateway
	}
	return jsonResponse(status, errorResponse{Error: string(uerr.Code)})
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(raw),
	}
}

// headerValue performs a case-insensitive header lookup.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
