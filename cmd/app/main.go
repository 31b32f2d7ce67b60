package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/burenotti/go_health_risk/internal/adapter/api"
	"github.com/burenotti/go_health_risk/internal/adapter/extractor"
	"github.com/burenotti/go_health_risk/internal/adapter/llm"
	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/adapter/telemetry"
	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/burenotti/go_health_risk/internal/app/auth"
	"github.com/burenotti/go_health_risk/internal/app/chat"
	"github.com/burenotti/go_health_risk/internal/app/document"
	"github.com/burenotti/go_health_risk/internal/app/messagebus"
	"github.com/burenotti/go_health_risk/internal/config"
	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	metrics := telemetry.New()

	bus := messagebus.New(logger)
	defer bus.Close()
	bus.Register(record.EventCreated, metrics.RecordCreated)
	bus.Register(record.EventCreated, func(event domain.Event) error {
		e := event.(record.CreatedEvent)
		logger.Info("assessment record created", "record_id", e.RecordID, "risk_level", e.Level)
		return nil
	})

	var (
		narrator assessment.Narrator
		answerer chat.Answerer
	)
	if cfg.LLM.APIKey != "" {
		client := llm.New(llm.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger)
		narrator, answerer = client, client
	} else {
		logger.Warn("llm api key is not set, narratives and chat will return markers")
	}

	var docExtractor document.Extractor
	if cfg.Extractor.URL != "" {
		docExtractor = extractor.NewTikaClient(cfg.Extractor.URL, cfg.Extractor.Timeout, logger)
	}

	assessor := risk.NewAssessor(risk.DefaultScorer(), risk.DefaultFactorEnumerator())

	opts := []api.Option{
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.MessageBus(bus),
		api.MetricsHandler(metrics.Handler()),
		api.AssessmentService(assessment.New(logger, assessor, narrator, metrics)),
		api.ChatService(chat.New(logger, answerer)),
	}
	if docExtractor != nil {
		opts = append(opts, api.DocumentService(document.New(logger, docExtractor)))
	}

	if cfg.HistoryEnabled() {
		sqlf.SetDialect(sqlf.PostgreSQL)

		db, err := sql.Open("pgx", cfg.DB.DSN)
		if err != nil {
			panic("failed to connect database: " + err.Error())
		}
		defer db.Close()

		opts = append(opts,
			api.DBContext(&storage.DB{DB: db}),
			api.Authorizer(&auth.Authorizer{Secret: cfg.JWT.Secret}),
		)
	}

	server := api.NewServer(opts...)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	logger.Info("server shutdown")
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
