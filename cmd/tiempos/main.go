package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"tiempos/internal/amqp"
	"tiempos/internal/cache"
	"tiempos/internal/cli"
	"tiempos/internal/export"
	apphttp "tiempos/internal/http"
	"tiempos/internal/log"
	"tiempos/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	deps := services.SessionDeps{
		Store:     res.Backend,
		Directory: res.Backend,
		Logger:    logger,
	}

	// Record events are optional; without AMQP_URL mutations are not published.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldComponent, log.ComponentAMQP, log.FieldError, err)
			os.Exit(1)
		}
		amqpClient = c
		deps.Events = c
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	sessions := services.NewSessionManager(deps, cfg.CacheSize, 8*time.Hour)
	dashboard := services.NewDashboard(cfg.CacheSize, cfg.CacheTTL)

	caches := cache.NewManager(logger.Logger)
	caches.Register(sessions.Cache())
	caches.Register(dashboard.Cache())
	caches.StartCleanup(10 * time.Minute)

	auth := apphttp.NewAuthenticator(cfg.AuthJWTSecret)
	if !auth.UsesTokens() {
		logger.Warn("AUTH_JWT_SECRET not set - trusting X-Forwarded-User headers", log.FieldComponent, log.ComponentAuth)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Sessions:   sessions,
		Dashboard:  dashboard,
		Auth:       auth,
		Exporter:   export.PDFExporter{Author: "tiempos"},
		TotalScope: cfg.TotalScope(),
		Ready:      res.Ready,
		Logger:     logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, _, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting tiempos server", "port", cfg.Port, "backend", cfg.DataBackend, "report_scope", cfg.TotalScope().String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
