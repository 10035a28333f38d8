package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/patient-dashboard-api/internal/config"
	"github.com/iliyamo/patient-dashboard-api/internal/middleware"
	"github.com/iliyamo/patient-dashboard-api/internal/queue"
	"github.com/iliyamo/patient-dashboard-api/internal/router"
	"github.com/iliyamo/patient-dashboard-api/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var host, port string
	serve := func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if host != "" {
			cfg.Host = host
		}
		if port != "" {
			cfg.Port = port
		}
		return runServer(cfg)
	}

	root := &cobra.Command{
		Use:          "patient-dashboard",
		Short:        "Patient Dashboard API server",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&host, "host", "", "interface to bind (overrides APP_HOST)")
	root.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides APP_PORT)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "consume-events",
		Short: "Append lab-report events from RabbitMQ to the events log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsumer(config.Load())
		},
	})
	return root
}

func setupLogger(cfg config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}
	log.Logger = logger
	return logger
}

func runServer(cfg config.Config) error {
	logger := setupLogger(cfg)

	deps := router.Deps{Logger: logger}
	if cfg.Cache.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			defer rdb.Close()
			deps.CacheStore = middleware.NewRedisStore(rdb)
		}
	}
	if cfg.Events.Enabled {
		deps.Events = service.NewRabbitPublisher(cfg.Events.URL, cfg.Events.Queue)
		logger.Info().Str("queue", cfg.Events.Queue).Msg("lab report events enabled")
	}

	e := router.New(cfg, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error().Err(err).Msg("server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func runConsumer(cfg config.Config) error {
	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("queue", cfg.Events.Queue).Str("log_dir", cfg.Events.LogDir).Msg("starting lab report consumer")
	err := queue.StartLabReportConsumer(ctx, queue.ConsumerConfig{
		URL:    cfg.Events.URL,
		Queue:  cfg.Events.Queue,
		LogDir: cfg.Events.LogDir,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
