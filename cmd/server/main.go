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

	"numcheck/internal/audit"
	"numcheck/internal/check"
	"numcheck/internal/check/simulated"
	"numcheck/internal/platform/config"
	"numcheck/internal/platform/httpserver"
	"numcheck/internal/platform/logger"
	"numcheck/internal/platform/metrics"
	platformredis "numcheck/internal/platform/redis"
	"numcheck/internal/run"
	runhandler "numcheck/internal/run/handler"
	"numcheck/internal/session"
	"numcheck/internal/token"
	tokenhandler "numcheck/internal/token/handler"
	httptransport "numcheck/internal/transport/http"
	id "numcheck/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the feature packages.
func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	var sessions session.Store
	var health httptransport.HealthChecker
	if redisClient != nil {
		sessions = session.NewRedis(redisClient.Client, session.WithRedisTTL(cfg.SessionTTL))
		health = redisClient
		log.Info("using redis session store")
	} else {
		sessions = session.NewInMemoryStore(session.WithTTL(cfg.SessionTTL))
		log.Info("using in-memory session store")
	}

	registry := check.NewRegistry()
	for _, kind := range id.AllCheckKinds() {
		if err := registry.Register(simulated.New(kind, cfg.CheckerSeed)); err != nil {
			log.Error("failed to register checker", "kind", kind.String(), "error", err)
			os.Exit(1)
		}
	}
	log.Warn("running with simulated check backends, results are fabricated")

	auditInbox := make(chan audit.Event, 256)
	auditStore := audit.NewMemoryStore()
	publisher := audit.NewPublisher(auditInbox, audit.WithLogger(log))

	orch := run.NewOrchestrator(registry,
		run.WithOrchestratorLogger(log),
		run.WithOrchestratorMetrics(m),
		run.WithChunkSize(cfg.ChunkSize),
		run.WithChunkPacing(cfg.ChunkPacing),
		run.WithCallTimeout(cfg.CallTimeout),
		run.WithMaxNumbers(cfg.MaxNumbers),
		run.WithProgressSink(run.NewLogProgressSink(log)),
	)
	runs := run.NewService(sessions, orch,
		run.WithLogger(log),
		run.WithMetrics(m),
		run.WithAuditPublisher(publisher),
	)

	tokens := token.NewService(cfg.JWTSigningKey, "numcheck", "numcheck-api", token.WithTTL(cfg.TokenTTL))
	exchanger := token.NewExchanger(tokens, cfg.APIKeys)
	validator := token.NewValidatorAdapter(tokens)

	router := httptransport.NewRouter(health,
		tokenhandler.New(exchanger, log),
		runhandler.New(runs, log, m, validator),
	)

	srv := httpserver.New(cfg.Addr, router)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go func() {
		if err := audit.NewWorker(auditStore, auditInbox, log).Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	log.Info("starting numcheck", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopWorker()
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
