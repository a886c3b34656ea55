package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"taskandtime_backend/internal/app/di"
	"taskandtime_backend/internal/app/router"
	"taskandtime_backend/internal/platform/config"
	platformdb "taskandtime_backend/internal/platform/db"
	"taskandtime_backend/internal/platform/observability"
	infraredis "taskandtime_backend/internal/platform/redis"
	"taskandtime_backend/internal/shared/ratelimiter"
)

const serviceName = "taskandtime-backend"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.AppEnv)
	slog.SetDefault(log)
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Error("tracer shutdown failed", "error", err)
		}
	}()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// db
	db, err := platformdb.Open(cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Use(prom.GormPlugin()); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable. Running without token cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	app := di.NewAuth(cfg, db, rdb, prom)

	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD is not set. Skipping admin bootstrap.")
	} else {
		out, err := app.Admin.CreateAdminIfAbsent(ctx)
		if err != nil {
			return err
		}
		log.Info("admin bootstrap", "result", out.Message)
	}

	checks := di.NewReadyChecks(sqlDB, rdb, prom)

	r := router.NewRouter(router.Deps{
		Logger:             log,
		ServiceName:        serviceName,
		Auth:               app.AuthHandler,
		Users:              app.UserHandler,
		Verifier:           app.Verifier,
		TokenStatus:        app.TokenStatus,
		Prom:               prom,
		Gatherer:           reg,
		Limiter:            ratelimiter.NewRateLimiter(cfg.LoginRateLimit, time.Minute),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ReadyChecks:        checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
