package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"WikiAnswers/internal/config"
	"WikiAnswers/internal/infrastructure/llm"
	"WikiAnswers/internal/infrastructure/media"
	"WikiAnswers/internal/infrastructure/objectstore"
	"WikiAnswers/internal/infrastructure/server"
	"WikiAnswers/internal/infrastructure/wiki"
	"WikiAnswers/internal/logging"
	"WikiAnswers/internal/ports"
	"WikiAnswers/internal/ranking"
	"WikiAnswers/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	server *server.Server
	logger *slog.Logger
}

// New builds a runnable application instance with all adapters constructed
// explicitly; nothing holds package-level client state.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	completion := llm.NewChatGPTClient(cfg.OpenAI)
	content := wiki.NewClient(cfg.Wiki)
	downloader := media.NewDownloader(
		&http.Client{Timeout: 30 * time.Second},
		cfg.Wiki.UserAgent,
		cfg.Fetch.MaxImageBytes,
	)

	var store ports.ObjectStore
	if cfg.Staging.Bucket != "" {
		s3Store, err := objectstore.NewS3Store(ctx, cfg.Staging)
		if err != nil {
			return nil, fmt.Errorf("build staging store: %w", err)
		}
		store = s3Store
	} else {
		baseLogger.Info("staging disabled, images served by source urls")
	}

	registry := ranking.NewRegistry()
	registry.Register(ranking.NewFuzzyStrategy())
	registry.Register(ranking.NewOracleStrategy(
		completion,
		cfg.OpenAI.SummaryModel,
		cfg.OpenAI.Temperature,
		200,
	))

	ranker, err := registry.Resolve(cfg.Ranking.Strategy)
	if err != nil {
		return nil, fmt.Errorf("resolve ranking strategy: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Completion: completion,
		Content:    content,
		Downloader: downloader,
		Store:      store,
		Ranker:     ranker,
		Logger:     baseLogger.With("component", "pipeline"),
		TopicParams: usecase.CompletionParams{
			Model:       cfg.OpenAI.TopicModel,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.TopicMaxTokens,
		},
		SummaryParams: usecase.CompletionParams{
			Model:       cfg.OpenAI.SummaryModel,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.SummaryMaxTokens,
		},
		FetchWorkers: cfg.Fetch.Workers,
	})

	srv := server.New(pipeline, baseLogger.With("component", "server"))

	return &Application{cfg: cfg, server: srv, logger: baseLogger}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Server.Addr)
		errCh <- a.server.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
