package app

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tvilstat/internal/domain"
)

// Aggregator folds the day's RoomOffer rows into one DailyStatistic per
// catalog hotel. The catalog drives iteration: offers referencing hotels
// outside the catalog are ignored, and catalog hotels without offers get a
// zeroed row.
type Aggregator struct {
	store   domain.TableStore
	archive domain.StatisticsArchive // optional mirror; nil disables
}

func NewAggregator(s domain.TableStore, archive domain.StatisticsArchive) *Aggregator {
	return &Aggregator{store: s, archive: archive}
}

type rollup struct {
	free     int
	capacity int
	minPrice *float64
}

// Run emits statistics in catalog order so reruns over identical inputs
// produce byte-identical tables.
func (a *Aggregator) Run(ctx context.Context, runDate time.Time) ([]domain.DailyStatistic, error) {
	date := runDate.Format("2006-01-02")

	hotels, err := a.store.ReadHotels(date)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("date", date).Msg("no hotel catalog for date, no statistics")
			return nil, nil
		}
		return nil, err
	}
	rooms, err := a.store.ReadRooms(date)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("date", date).Msg("no room table for date, no statistics")
			return nil, nil
		}
		return nil, err
	}

	byHotel := make(map[string]*rollup, len(hotels))
	for _, r := range rooms {
		if r.HotelID == "" {
			continue
		}
		agg := byHotel[r.HotelID]
		if agg == nil {
			agg = &rollup{}
			byHotel[r.HotelID] = agg
		}

		free, _ := strconv.Atoi(strings.TrimSpace(r.FreeRooms)) // malformed counts as 0
		agg.free += free

		if perRoom, err := strconv.Atoi(strings.TrimSpace(r.Capacity)); err == nil && perRoom > 0 && free > 0 {
			// Achievable occupancy from bookable inventory only: rows with
			// no free rooms or unknown capacity contribute nothing.
			agg.capacity += free * perRoom
		}

		if free > 0 {
			if p, err := strconv.ParseFloat(strings.TrimSpace(r.Price), 64); err == nil && p > 0 {
				if agg.minPrice == nil || p < *agg.minPrice {
					v := p
					agg.minPrice = &v
				}
			}
		}
	}

	stats := make([]domain.DailyStatistic, 0, len(hotels))
	for _, h := range hotels {
		total, _ := strconv.Atoi(strings.TrimSpace(h.RoomsTotal))
		st := domain.DailyStatistic{
			HotelID:    h.ID,
			Name:       h.Name,
			RoomsTotal: total,
			Date:       date,
		}
		if agg := byHotel[h.ID]; agg != nil {
			st.FreeRooms = agg.free
			st.MaxCapacity = agg.capacity
			st.MinPrice = agg.minPrice
		}
		if total > 0 {
			st.Percent = domain.Round2(float64(st.FreeRooms) / float64(total) * 100)
		}
		stats = append(stats, st)
	}

	if err := a.store.WriteStatistics(date, stats); err != nil {
		log.Error().Err(err).Str("date", date).Msg("writing statistics table failed")
		return stats, err
	}
	log.Info().Int("hotels", len(stats)).Str("date", date).Msg("statistics written")

	if a.archive != nil {
		if err := a.archive.SaveStatistics(ctx, date, stats); err != nil {
			log.Error().Err(err).Str("date", date).Msg("statistics mirror failed")
		}
	}
	return stats, nil
}
