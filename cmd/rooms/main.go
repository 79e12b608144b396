package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"tvilstat/internal/adapters/browser"
	"tvilstat/internal/adapters/observability"
	redisad "tvilstat/internal/adapters/redis"
	"tvilstat/internal/adapters/tvil"
	"tvilstat/internal/app"
	"tvilstat/internal/domain"
	"tvilstat/internal/shared"
	"tvilstat/internal/storage/csvstore"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr)

	runDate := shared.RunDate(cfg.RunTZ)
	log.Info().Str("date", runDate.Format("2006-01-02")).Msg("rooms stage starting")

	client := newTvilClient(ctx, cfg)
	store := csvstore.New(cfg.TablesDir)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	rooms, err := app.NewCollector(client, store, cache, cfg.CacheTTL).Run(ctx, runDate)
	if err != nil {
		log.Error().Err(err).Msg("rooms stage finished with error")
		return
	}
	log.Info().Int("rooms", len(rooms)).Msg("rooms stage finished")
}

func newTvilClient(ctx context.Context, cfg shared.Config) *tvil.Client {
	var boot domain.SessionBootstrapper = browser.Static{}
	if cfg.BootstrapMode == "browser" {
		boot = browser.New(cfg.BootstrapURL, cfg.BootstrapTimeout)
	}
	cookies, err := boot.AcquireSession(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session bootstrap failed, continuing without cookies")
	}
	client, err := tvil.New(cfg.BaseURL, cfg.GeoID, cfg.RequestDelay, cookies)
	if err != nil {
		log.Fatal().Err(err).Msg("tvil client init failed")
	}
	return client
}
