package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trustverify/trustverify/internal/app"
	"github.com/trustverify/trustverify/internal/audit"
	audithttp "github.com/trustverify/trustverify/internal/audit/http"
	"github.com/trustverify/trustverify/internal/auth"
	"github.com/trustverify/trustverify/internal/authz"
	"github.com/trustverify/trustverify/internal/observability"
	"github.com/trustverify/trustverify/internal/platform/cache"
	"github.com/trustverify/trustverify/internal/platform/db"
	"github.com/trustverify/trustverify/internal/profiles"
	"github.com/trustverify/trustverify/internal/shared"
	"github.com/trustverify/trustverify/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "trustverify_session", cfg.SessionTTL, cfg.IsProduction())

	// The permission table is composed exactly once; a catalog error here is
	// a build defect and must not reach request handling.
	resolver, err := authz.NewResolver()
	if err != nil {
		logger.Error("compose permission table", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	auditStore := audit.NewStore(dbpool)
	emitter := audit.NewEmitter(
		audit.MultiSink{audit.LogSink{Logger: logger}, auditStore},
		cfg.AuditQueueSize,
		logger,
		audit.WithDropHook(metrics.AuditDropHook()),
	)

	gate := authz.NewGate(authz.GateConfig{
		Resolver: resolver,
		Derivation: authz.DerivationConfig{
			SuperAdminEmail:     cfg.SuperAdminEmail,
			OperatorDomain:      cfg.OperatorDomain,
			ModeratorTrustFloor: cfg.ModeratorTrustFloor,
		},
		Recorder: emitter,
		Observer: metrics,
	})
	authzMiddleware := authz.Middleware{Gate: gate, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, gate)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)

	profilesHandler := profiles.NewHandler(logger, usersService, authzMiddleware)
	auditHandler := audithttp.NewHandler(logger, auditStore, authzMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		AuthService:     authService,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		ProfilesHandler: profilesHandler,
		AuditHandler:    auditHandler,
		Authz:           authzMiddleware,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	if err := emitter.Close(shutdownCtx); err != nil {
		logger.Warn("audit emitter flush", slog.Any("error", err))
	}
}
