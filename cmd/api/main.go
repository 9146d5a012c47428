package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamzen/hris-backend-go/internal/app"
	"github.com/teamzen/hris-backend-go/internal/config"
	appHTTP "github.com/teamzen/hris-backend-go/internal/handler/http"
	"github.com/teamzen/hris-backend-go/internal/pkg/cron"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
	leaveService "github.com/teamzen/hris-backend-go/internal/service/leave"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.App.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeDB, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer closeDB()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize zap logger: ", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	m := metrics.New()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	services := app.NewServices(repos, JWTService,
		leaveService.WithOperationLogger(leaveService.NewZapOperationLogger(zapLogger)),
		leaveService.WithMetrics(m),
	)

	scheduler := cron.NewScheduler()
	cron.NewLeaveJobs(services.Leave).Register(scheduler, cfg.Leave.AccrualInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg.App, JWTService, m, repos.Ping, services.Handlers())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "backend", cfg.Leave.Backend, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
