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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeventeLantos/payment-verification/internal/api"
	"github.com/LeventeLantos/payment-verification/internal/cache"
	"github.com/LeventeLantos/payment-verification/internal/client"
	"github.com/LeventeLantos/payment-verification/internal/config"
	"github.com/LeventeLantos/payment-verification/internal/repo"
	"github.com/LeventeLantos/payment-verification/internal/scheduler"
	"github.com/LeventeLantos/payment-verification/internal/service"
	"github.com/LeventeLantos/payment-verification/internal/smssource"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the verification scheduler and operator API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadAll()
	if err != nil {
		return err
	}

	dialect, err := repo.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	db, err := repo.Open(dialect, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	payments := repo.NewSQLPaymentRepo(db, dialect)

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(parent, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		opts = append(opts, service.WithLedger(cache.NewRedisLedger(rdb, cfg.Redis.TTL)))
	}

	var (
		src   smssource.Source
		inbox *smssource.Inbox
	)
	switch cfg.SMS.Source {
	case config.SourceSimulated:
		src = smssource.NewSimulated(nil)
	default:
		inbox = smssource.NewInbox(cfg.SMS.Window, nil)
		src = inbox
	}

	var notifier service.Notifier = client.NewLogNotifier(logger)
	if cfg.Notify.WebhookURL != "" {
		notifier = client.NewWebhookNotifier(cfg.Notify.WebhookURL)
	}

	verifier := service.NewVerifier(payments, src, notifier, opts...)

	sched, err := scheduler.New(cfg.Scheduler.Interval, func(ctx context.Context) {
		verifier.CheckPendingPayments(ctx)
	})
	if err != nil {
		return err
	}
	if cfg.Scheduler.AutoStart {
		sched.Start()
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           loggingMiddleware(api.Router(api.NewHandler(sched, verifier, payments, inbox))),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("payment verifier starting",
			"addr", cfg.Server.Address,
			"db_driver", cfg.Database.Driver,
			"interval", cfg.Scheduler.Interval.String(),
			"sms_source", cfg.SMS.Source,
			"redis", cfg.Redis.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
