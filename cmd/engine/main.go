package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/educonnect/reengage-engine/internal/channel"
	"github.com/educonnect/reengage-engine/internal/config"
	"github.com/educonnect/reengage-engine/internal/db"
	"github.com/educonnect/reengage-engine/internal/engine"
	"github.com/educonnect/reengage-engine/internal/handler"
	"github.com/educonnect/reengage-engine/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting re-engagement engine")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := db.New(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// The dedup cache is a fast path, not a dependency: a missing or dead
	// Redis leaves the ledger on the database alone
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cache = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx).Err(); err != nil {
			logger.Warn("dedup cache unreachable, continuing without it",
				slog.String("error", err.Error()))
			cache = nil
		} else {
			logger.Info("connected to dedup cache", slog.String("addr", opts.Addr))
			defer cache.Close()
		}
		cancel()
	}

	// Repositories
	leadRepo := repository.NewLeadRepository(database.DB)
	ruleRepo := repository.NewRuleRepository(database.DB)
	campaignRepo := repository.NewCampaignRepository(database.DB)
	dispatchRepo := repository.NewDispatchRepository(database.DB)
	orgRepo := repository.NewOrgSettingsRepository(database.DB)

	// Channel adapters
	chatAdapter := channel.NewChatAdapter(channel.ChatConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		APIKey:      cfg.Gateway.APIKey,
		CountryCode: cfg.Gateway.CountryCode,
	}, orgRepo, &http.Client{Timeout: 30 * time.Second}, logger)
	emailAdapter := channel.NewEmailAdapter(orgRepo, cfg.Engine.EmailSubject)
	smsAdapter := channel.NewSMSAdapter(logger)
	dispatcher := channel.NewDispatcher(chatAdapter, emailAdapter, smsAdapter, logger)

	// Engine
	ledger := engine.NewLedger(dispatchRepo, cache, engine.DedupPolicy(cfg.Engine.DedupPolicy), logger)
	updater := engine.NewStateUpdater(leadRepo, campaignRepo, dispatchRepo, ledger, logger, nil)
	orchestrator := engine.NewOrchestrator(engine.OrchestratorConfig{
		LeadRepo:         leadRepo,
		RuleRepo:         ruleRepo,
		CampaignRepo:     campaignRepo,
		Dispatcher:       dispatcher,
		Ledger:           ledger,
		Updater:          updater,
		Logger:           logger,
		OrganizationName: cfg.Engine.OrganizationName,
		SendDelay:        cfg.Engine.SendDelay,
		PhasePause:       cfg.Engine.PhasePause,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := engine.NewScheduler(cfg.Engine.Anchors, func(ctx context.Context) {
		if _, err := orchestrator.RunAll(ctx); err != nil {
			logger.Info("scheduled run skipped", slog.String("reason", err.Error()))
		}
	}, logger)
	scheduler.Start(ctx)

	// Manual trigger surface
	engineHandler := handler.NewEngineHandler(orchestrator, scheduler, ctx, logger)
	healthHandler := handler.NewHealthHandler(database, cache, logger)

	r := chi.NewRouter()
	r.Use(handler.RecoveryMiddleware(logger))
	r.Use(handler.LoggingMiddleware(logger))

	r.Get("/health", healthHandler.Health)
	r.Route("/engine", func(r chi.Router) {
		r.Post("/run", engineHandler.RunAll)
		r.Post("/rules/run", engineHandler.RunRules)
		r.Post("/campaigns/{id}/run", engineHandler.RunCampaign)
		r.Post("/scheduler/start", engineHandler.StartScheduler)
		r.Post("/scheduler/stop", engineHandler.StopScheduler)
		r.Get("/status", engineHandler.Status)
	})

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // manual runs answer only after the sweep
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("trigger API listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down engine", slog.String("signal", sig.String()))

		scheduler.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
			_ = server.Close()
		}

		logger.Info("engine stopped gracefully")
	}
}
