package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"health-wizard/handler"
	"health-wizard/internal/integrations/openai"
	"health-wizard/internal/integrations/paramstore"
	"health-wizard/internal/repository"
	"health-wizard/internal/usecase"
	"health-wizard/internal/view"
)

const advisoryTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	sessionTTLHours := envInt("SESSION_TTL_HOURS", 24)

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
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	sessionStore, err := repository.New(dynamoClient, stateTable, time.Duration(sessionTTLHours)*time.Hour)
	if err != nil {
		slog.Error("failed to create session store", "err", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- One-shot advisory comment ----
	// Generated exactly once before any request is served; failures are
	// absorbed into the fallback and only logged.
	genCtx, cancel := context.WithTimeout(ctx, advisoryTimeout)
	advisoryComment, err := usecase.GenerateStartupComment(genCtx, ssmClient, openaiClient, paramPrefix)
	cancel()
	if err != nil {
		slog.Warn("advisory comment generation failed, using fallback", "err", err)
	}

	// ---- Handler ----
	wizard, err := usecase.NewWizardService(sessionStore, advisoryComment)
	if err != nil {
		slog.Error("failed to create wizard service", "err", err)
		os.Exit(1)
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		slog.Error("failed to create renderer", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(wizard, renderer)
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
