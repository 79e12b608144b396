package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tvilstat/internal/adapters/observability"
	"tvilstat/internal/adapters/telegram"
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
	log.Info().Str("date", date).Msg("stats stage starting")

	store := csvstore.New(cfg.TablesDir)
	archive := openArchive(ctx, cfg)

	stats, err := app.NewAggregator(store, archive).Run(ctx, runDate)
	if err != nil {
		log.Error().Err(err).Msg("stats stage finished with error")
	}
	log.Info().Int("hotels", len(stats)).Msg("stats stage finished")

	notifier := telegram.New(cfg.TelegramAPIBase, cfg.TelegramToken, cfg.TelegramChatID)
	notifier.Notify(ctx, fmt.Sprintf("Tvil: статистика сформирована. Отелей в отчёте: %d. Дата: %s.", len(stats), date))
}

// openArchive wires the optional MySQL statistics mirror. Any failure here
// only disables the mirror; the CSV output is the canonical result.
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
