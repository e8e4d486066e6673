package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tuncerburak97/bekci/internal/config"
	"github.com/tuncerburak97/bekci/internal/httplog"
	"github.com/tuncerburak97/bekci/internal/logger"
	"github.com/tuncerburak97/bekci/internal/metrics"
	"github.com/tuncerburak97/bekci/internal/proxy"
	"github.com/tuncerburak97/bekci/internal/repository"
	"github.com/tuncerburak97/bekci/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	metricsCollector := metrics.GetCollector("bekci", "bekci_proxy")

	opts, err := cfg.Log.Options()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log configuration")
	}
	opts.Observer = metricsCollector

	// Every record goes to stdout via zerolog; with persistence enabled it
	// is also decoded and batched into the configured repository.
	sinks := httplog.MultiSink{&httplog.ZerologSink{Logger: logger.GetLogger()}}
	var recorder *service.Recorder
	if cfg.DB.Enabled {
		repo, err := repository.New(&cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize repository")
		}
		if err := repo.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		recorder = service.NewRecorder(repo, logger.GetLogger(), 5, 1000)
		sinks = append(sinks, recorder)
	}

	interceptor := httplog.New(opts, sinks)

	proxyHandler, err := proxy.NewHandler(&cfg.Proxy, logger.GetLogger(), metricsCollector)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize proxy handler")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: httplog.ErrorHandler(interceptor),
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, func(c *fiber.Ctx) error {
			body, err := metricsCollector.MetricsJSON()
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		})
	}

	app.Use(httplog.Middleware(interceptor))
	app.All("/*", proxyHandler.Handle)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	if recorder != nil {
		recorder.Shutdown()
	}
}
