package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"graphgen/internal/events"
	"graphgen/internal/generation"
	"graphgen/internal/http/handlers"
	httpapi "graphgen/internal/http/httpapi"
	"graphgen/internal/infra"
	"graphgen/internal/infra/geoip"
	"graphgen/internal/providers/graphsvc"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	publisher, err := events.New(cfg.NATSURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect event bus")
	}
	defer publisher.Close()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	ctrl, err := generation.NewController(generation.Options{
		Service:   newService(cfg, &logger),
		Timeout:   cfg.RequestTimeout,
		Publisher: publisher,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build controller")
	}

	app := handlers.NewApp(ctrl, cfg.Mode(), &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().
		Str("mode", cfg.Mode()).
		Dur("request_timeout", cfg.RequestTimeout).
		Msgf("API listening on %s", server.Addr())
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}

func newService(cfg *infra.Config, logger *infra.Logger) generation.Service {
	if cfg.UseMock {
		return generation.NewMockService(cfg.MockDelay)
	}
	if !cfg.BackendConfigured() {
		logger.Warn().Msg("GRAPHGEN_BACKEND_URL is not set; submissions will be rejected until it is configured")
	}
	return graphsvc.NewClient(graphsvc.Options{
		BaseURL:        cfg.BackendURL,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})
}
