package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"opencure/internal/adapter/repo"
	"opencure/internal/domain"
	"opencure/internal/escrow"
	"opencure/internal/http/handlers"
	httpapi "opencure/internal/http/httpapi"
	"opencure/internal/infra"
	"opencure/internal/infra/geoip"
	"opencure/internal/token"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	minDonation, err := token.ParseUnits(cfg.MinDonation, cfg.TokenDecimals)
	if err != nil {
		logger.Fatal().Err(err).Str("value", cfg.MinDonation).Msg("invalid ESCROW_MIN_DONATION")
	}

	ctx := context.Background()

	var (
		ledger  token.Ledger = token.NewMemory()
		journal domain.EventJournal
		sinks   = []domain.EventSink{escrow.LogSink{Logger: logger.With().Str("component", "events").Logger()}}
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		runner := infra.NewSQLRunner(dbpool, logger)
		events := repo.NewEventRepository(runner)
		journal = events
		sinks = append(sinks, events)
		if cfg.TokenLedger == infra.LedgerPostgres {
			ledger = token.NewPostgres(runner)
		}
	}
	logger.Info().Str("ledger", cfg.TokenLedger).Bool("journal", journal != nil).Msg("storage configured")

	registry, err := escrow.NewRegistry(escrow.RegistryOptions{
		Ledger:  ledger,
		Factory: cfg.FactoryAddress,
		Sinks:   sinks,
		Logger:  logger,
		Defaults: escrow.Defaults{
			MinDonation:     minDonation,
			VoteThreshold:   cfg.VoteThreshold,
			DisableVoteGate: !cfg.RequireVote,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build escrow registry")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Registry: registry,
		Ledger:   ledger,
		Journal:  journal,
		Logger:   logger,
		Decimals: cfg.TokenDecimals,
		Faucet:   cfg.FaucetEnabled,

		APIVersion: cfg.APIVersion,
		PublicURL:  cfg.PublicURL,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   resolver.Lookup(),
		Logger:          logger.With().Str("component", "http").Logger(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdown(server, logger, cfg.HTTPIdleTimeout)
}

func shutdown(server *infra.HTTPServer, logger zerolog.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
