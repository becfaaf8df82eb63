package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/config"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	appHTTP "github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/handler/http"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/cron"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/database"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/jwt"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/metrics"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/repository/postgresql"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/repository/rediscache"
	authService "github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/service/auth"
	holidayService "github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/service/holiday"
	timeclockService "github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/service/timeclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	holidayRepo := postgresql.NewHolidayRequestRepository(db)

	var stateCache timeclock.StateCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			slog.Warn("redis unreachable, continuing without state cache", "error", err)
		} else {
			stateCache = rediscache.NewStateCache(redisClient, cfg.Timeclock.StateCacheTTL)
			defer redisClient.Close()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	timeclockMetrics := metrics.New(registry)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	adminAuthService := authService.NewAdminAuthService(cfg.Admin.Email, cfg.Admin.PasswordHash, JWTService)
	punchService := timeclockService.NewTimeclockService(
		userRepo,
		auditRepo,
		stateCache,
		timeclockService.ResolverConfig{
			MaxBreak:       cfg.Timeclock.MaxBreak,
			MaxWorkSession: cfg.Timeclock.MaxWorkSession,
		},
		cfg.Timeclock.DuplicateEpsilon,
		timeclockMetrics,
	)
	requestService := holidayService.NewRequestService(holidayRepo, userRepo)

	authHandler := appHTTP.NewAuthHandler(adminAuthService)
	timeclockHandler := appHTTP.NewTimeclockHandler(punchService)
	holidayHandler := appHTTP.NewHolidayHandler(requestService)

	scheduler := cron.NewScheduler()
	cron.NewTimeclockJobs(userRepo, timeclockMetrics).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Registry:       registry,
		HealthCheck:    db.Ping,
	}, authHandler, timeclockHandler, holidayHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
