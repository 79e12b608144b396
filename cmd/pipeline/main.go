// The pipeline binary runs all three stages in sequence for one run date:
// catalog harvest, room collection, statistics aggregation. Stages read each
// other's tables from disk, so a stage failure degrades the later stages to
// empty results instead of aborting the process.
package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tvilstat/internal/adapters/browser"
	"tvilstat/internal/adapters/observability"
	redisad "tvilstat/internal/adapters/redis"
	"tvilstat/internal/adapters/telegram"
	"tvilstat/internal/adapters/tvil"
	"tvilstat/internal/app"
	"tvilstat/internal/domain"
	"tvilstat/internal/shared"
	"tvilstat/internal/storage/csvstore"
	mysqlrepo "tvilstat/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr)

	runDate := shared.RunDate(cfg.RunTZ)
	date := runDate.Format("2006-01-02")
	log.Info().Str("date", date).Msg("pipeline starting")

	client := newTvilClient(ctx, cfg)
	store := csvstore.New(cfg.TablesDir)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	hotels, err := app.NewHarvester(client, store).Run(ctx, runDate)
	if err != nil {
		log.Error().Err(err).Msg("harvest stage failed")
	}
	rooms, err := app.NewCollector(client, store, cache, cfg.CacheTTL).Run(ctx, runDate)
	if err != nil {
		log.Error().Err(err).Msg("collect stage failed")
	}
	stats, err := app.NewAggregator(store, openArchive(ctx, cfg)).Run(ctx, runDate)
	if err != nil {
		log.Error().Err(err).Msg("aggregate stage failed")
	}

	log.Info().
		Int("hotels", len(hotels)).
		Int("rooms", len(rooms)).
		Int("stats", len(stats)).
		Msg("pipeline finished")

	notifier := telegram.New(cfg.TelegramAPIBase, cfg.TelegramToken, cfg.TelegramChatID)
	notifier.Notify(ctx, fmt.Sprintf(
		"Tvil: сбор завершён. Отелей: %d, номеров: %d, строк статистики: %d. Дата: %s.",
		len(hotels), len(rooms), len(stats), date))
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

func openArchive(ctx context.Context, cfg shared.Config) domain.StatisticsArchive {
	if cfg.MySQLDSN == "" {
		return nil
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error().Err(err).Msg("sql.Open failed, statistics mirror disabled")
		return nil
	}
	if err := db.Ping(); err != nil {
		log.Error().Err(err).Msg("db.Ping failed, statistics mirror disabled")
		return nil
	}
	repo := mysqlrepo.New(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("schema setup failed, statistics mirror disabled")
		return nil
	}
	log.Info().Msg("statistics mirror enabled")
	return repo
}
