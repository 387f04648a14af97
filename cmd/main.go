package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"onboarding-agent/handler"
	"onboarding-agent/internal/integrations/gemini"
	"onboarding-agent/internal/integrations/paramstore"
	"onboarding-agent/internal/pdf"
	"onboarding-agent/internal/repository"
	"onboarding-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	documentTable := mustEnv("DOCUMENT_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	model := os.Getenv("GEMINI_MODEL")
	maxUploadBytes := envInt("MAX_UPLOAD_BYTES", 10<<20)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	registry, err := repository.New(awsdynamodb.NewFromConfig(cfg), documentTable)
	if err != nil {
		slog.Error("failed to create document registry", "err", err)
		os.Exit(1)
	}
	geminiClient, err := gemini.NewClient(ssmClient, paramPrefix, gemini.WithModel(model))
	if err != nil {
		slog.Error("failed to create Gemini client", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	chatService, err := usecase.NewChatService(geminiClient, usecase.NewPersonaCatalog(), usecase.NewStaticResponder(nil))
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	ingestService, err := usecase.NewIngestService(pdf.NewExtractor(), registry)
	if err != nil {
		slog.Error("failed to create ingest service", "err", err)
		os.Exit(1)
	}
	completeService, err := usecase.NewCompleteService(geminiClient, geminiClient.Model())
	if err != nil {
		slog.Error("failed to create complete service", "err", err)
		os.Exit(1)
	}
	ritualService, err := usecase.NewRitualService(geminiClient)
	if err != nil {
		slog.Error("failed to create ritual service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chatService, ingestService, completeService, ritualService, maxUploadBytes)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
