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
	chimw "github.com/go-chi/chi/v5/middleware"

	gwhttp "github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/http"
	gwnats "github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/nats"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/natskv"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/otel"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/postgres"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/ristretto"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/tiered"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/ws"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/config"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/logger"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/middleware"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/cache"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/resilience"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/secrets"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"config_file", cfgPath,
		"port", cfg.Server.Port,
		"backend_url", cfg.Backend.URL,
		"log_level", cfg.Logging.Level,
	)

	ctx := context.Background()

	// --- Observability ---

	otelShutdown, err := otel.Setup(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	// L2 is optional; without NATS the asset URL cache runs in-process only.
	var l2 cache.Cache
	if cfg.NATS.URL != "" {
		queue, err := gwnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()

		kv, err := queue.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		l2 = natskv.New(kv)
		slog.Info("nats connected", "bucket", cfg.Cache.L2Bucket)
	}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	defer l1.Close()

	urlCache := tiered.New(l1, l2, cfg.Assets.URLTTL)

	// --- Backend client ---

	backend := soldieriq.NewClient(cfg.Backend.URL)
	backend.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)

	authSvc := service.NewAuthService(backend)

	// Service-account mode: with credentials in the environment the gateway
	// authenticates at startup instead of waiting for an operator login.
	creds, err := secrets.NewVault(secrets.EnvLoader("SOLDIERIQ_USERNAME", "SOLDIERIQ_PASSWORD"))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	if username := creds.Get("SOLDIERIQ_USERNAME"); username != "" {
		if _, err := authSvc.Login(ctx, username, creds.Get("SOLDIERIQ_PASSWORD")); err != nil {
			return fmt.Errorf("service account login: %w", err)
		}
		slog.Info("service account authenticated", "username", username)
	}
	chatSvc := service.NewChatService(backend, store, hub, metrics, cfg.Chat.IdleTimeout, cfg.Chat.DefaultModel)
	historySvc := service.NewHistoryService(store)
	documentSvc := service.NewDocumentService(backend, authSvc)
	assetSvc := service.NewAssetLinkService(backend, urlCache, metrics, cfg.Assets.URLTTL)

	// --- HTTP ---

	handlers := &gwhttp.Handlers{
		Chat:      chatSvc,
		Auth:      authSvc,
		History:   historySvc,
		Documents: documentSvc,
		Assets:    assetSvc,
		Hub:       hub,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(gwhttp.Logger)
	r.Use(gwhttp.SecurityHeaders)
	r.Use(gwhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(limiter.Handler)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.Recoverer)

	gwhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	// WriteTimeout stays at zero so chat streams are not cut off mid-run.
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
