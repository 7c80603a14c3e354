package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finpsyche/advisor/backend/internal/app"
	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/handler"
	"github.com/finpsyche/advisor/backend/internal/knowledge"
	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/internal/service/advisor"
	"github.com/finpsyche/advisor/backend/internal/service/ai"
	"github.com/finpsyche/advisor/backend/internal/service/chat"
	"github.com/finpsyche/advisor/backend/internal/service/speech"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("failed to initialise logger: %v", err)
	}
	log := logger.Component("main")
	if envErr != nil {
		log.Warnf("failed to load .env file, using system environment only: %v", envErr)
	}

	analysis, err := app.NewAnalysis(cfg.Advisor)
	if err != nil {
		log.Fatalf("failed to build classifiers: %v", err)
	}

	profiles := profile.NewMemoryStore(profile.Seed())

	history, err := openHistory(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open chat history: %v", err)
	}
	defer history.Close()

	deps := advisor.Dependencies{
		Casual:      analysis.Casual,
		Emotion:     analysis.Emotion,
		Personality: analysis.Personality,
		Composer:    analysis.Composer,
		History:     history,
		Profiles:    profiles,
		RetrievalK:  cfg.Advisor.RetrievalK,
	}

	if base, err := knowledge.Load(cfg.Advisor.KnowledgeBaseCSV); err != nil {
		log.WithError(err).Warn("knowledge base unavailable, answering without context")
	} else {
		log.Infof("knowledge base loaded with %d entries", base.Len())
		deps.Retriever = base
	}

	if cfg.AI.Enabled() {
		aiService, err := ai.NewServiceFromConfig(ctx, profiles, cfg.AI)
		if err != nil {
			log.WithError(err).Warn("failed to initialise AI service, using composer only")
		} else {
			log.Info("AI service initialised")
			deps.Generator = aiService
		}
	} else {
		log.Info("Ark credentials not configured, using composer only")
	}

	var speechService *speech.Service
	if cfg.Speech.Enabled {
		speechService, err = speech.NewServiceFromConfig(cfg.Speech)
		if err != nil {
			log.WithError(err).Warn("failed to initialise speech service")
		} else {
			log.Info("speech service initialised")
			deps.Speech = speechService
		}
	} else {
		log.Info("speech credentials not configured, skipping synthesis")
	}

	advisorService, err := advisor.NewService(deps)
	if err != nil {
		log.Fatalf("failed to build advisor: %v", err)
	}

	router := handler.NewRouter(handler.Services{
		Advisor:  advisorService,
		History:  history,
		Profiles: profiles,
		Speech:   speechService,
	})

	startServer(ctx, cfg.Server, router)
}

func openHistory(ctx context.Context, cfg config.StorageConfig) (chat.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Component("main").Info("DATABASE_URL not set, keeping chat history in memory")
		return chat.NewMemoryStore(), nil
	}
	return chat.OpenPostgres(ctx, cfg.DatabaseURL)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log := logger.Component("main")
	log.Infof("advisor backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
