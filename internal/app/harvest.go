package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tvilstat/internal/adapters/observability"
	"tvilstat/internal/domain"
)

// Harvester paginates the catalog endpoint and persists the Hotel table for
// a run date. Stay dates are run date +1 .. +2.
type Harvester struct {
	client domain.TvilClient
	store  domain.TableStore
}

func NewHarvester(c domain.TvilClient, s domain.TableStore) *Harvester {
	return &Harvester{client: c, store: s}
}

// Run follows links.next until the last page. Any fetch or parse failure
// stops pagination but keeps the pages already collected; nothing is written
// until pagination ends, and an empty harvest writes no file at all.
func (h *Harvester) Run(ctx context.Context, runDate time.Time) ([]domain.Hotel, error) {
	arrival := runDate.AddDate(0, 0, 1)
	departure := runDate.AddDate(0, 0, 2)
	log.Info().
		Str("arrival", arrival.Format("2006-01-02")).
		Str("departure", departure.Format("2006-01-02")).
		Msg("harvesting catalog")

	var all []domain.Hotel
	pageURL := h.client.SearchURL(arrival, departure)
	for page := 1; pageURL != ""; page++ {
		hotels, next, err := h.client.FetchCatalogPage(ctx, pageURL)
		if err != nil {
			log.Error().Int("page", page).Err(err).Msg("catalog page failed, stopping pagination")
			observability.FetchErrors.WithLabelValues("harvest").Inc()
			break
		}
		observability.CatalogPages.Inc()
		all = append(all, hotels...)
		log.Info().Int("page", page).Int("hotels", len(hotels)).Int("total", len(all)).Msg("catalog page done")
		pageURL = next
	}

	if len(all) == 0 {
		log.Warn().Msg("no hotels harvested, catalog not written")
		return nil, nil
	}
	observability.HotelsHarvested.Add(float64(len(all)))

	date := runDate.Format("2006-01-02")
	if err := h.store.WriteHotels(date, all); err != nil {
		log.Error().Err(err).Str("date", date).Msg("writing hotel table failed")
		return all, err
	}
	log.Info().Int("hotels", len(all)).Str("date", date).Msg("catalog written")
	return all, nil
}
