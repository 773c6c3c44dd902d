package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/catalog"
	"github.com/eventcard/terminal/internal/config"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
	"github.com/eventcard/terminal/internal/httpserver"
	"github.com/eventcard/terminal/internal/logging"
	"github.com/eventcard/terminal/internal/middleware/csrf"
	"github.com/eventcard/terminal/internal/mykafka"
	"github.com/eventcard/terminal/internal/reports"
	"github.com/eventcard/terminal/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	logger.Info("starting terminal", zap.Stringer("config", cfg))

	var opts []backend.Option
	if cfg.BackendToken != "" {
		opts = append(opts, backend.WithToken(cfg.BackendToken))
	}
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, opts...)

	var publisher events.Publisher = events.Nop{}
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Fatal("kafka producer", zap.Error(err))
		}
		publisher = events.NewKafkaPublisher(prod, cfg.EventsTopic)
	}

	formatter := domain.NewFormatter(cfg.Locale, cfg.CurrencySymbol)

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.SkipPaths = []string{"/health/", httpserver.UploadsPath}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	if err := httpserver.Register(e, &httpserver.Deps{
		Registry:   terminal.NewRegistry(client, publisher, formatter),
		Catalog:    &catalog.Service{Backend: client},
		Reports:    reports.NewService(client, formatter),
		Profile:    client,
		Backend:    client,
		BackendURL: cfg.BackendURL,
		JWTSecret:  cfg.JWTSecret,
		CSRF:       &csrfCfg,
		Logger:     logger,
	}); err != nil {
		logger.Fatal("register routes", zap.Error(err))
	}

	srv := httpserver.NewServer(cfg.Addr, e)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
}
