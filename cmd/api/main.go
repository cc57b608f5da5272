package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enaya12q/smartlabs/internal/api"
	"github.com/enaya12q/smartlabs/internal/auth"
	"github.com/enaya12q/smartlabs/internal/config"
	"github.com/enaya12q/smartlabs/internal/db"
	"github.com/enaya12q/smartlabs/internal/logger"
	"github.com/enaya12q/smartlabs/internal/metrics"
	"github.com/enaya12q/smartlabs/internal/notify"
	"github.com/enaya12q/smartlabs/internal/repository/postgres"
	"github.com/enaya12q/smartlabs/internal/services"
	"github.com/enaya12q/smartlabs/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	verifier := auth.NewVerifier(cfg.BotToken)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	notifier := notify.New(cfg.BotToken, cfg.AdminChatID, wp)

	userSvc := services.NewUserService(repos.Users, repos.AuditLogs, verifier, notifier)
	earningsSvc := services.NewEarningsService(repos.Users, repos.AuditLogs)
	withdrawalSvc := services.NewWithdrawalService(repos.Withdrawals, repos.Users, repos.AuditLogs, notifier)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:           cfg,
		TM:            tm,
		UserSvc:       userSvc,
		EarningsSvc:   earningsSvc,
		WithdrawalSvc: withdrawalSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
