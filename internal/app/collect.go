package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"tvilstat/internal/adapters/observability"
	"tvilstat/internal/domain"
	"tvilstat/internal/extract"
)

// Collector walks the harvested catalog hotel by hotel and builds the
// RoomOffer table from the description and calculation endpoints.
type Collector struct {
	client   domain.TvilClient
	store    domain.TableStore
	cache    domain.Cache // optional; nil disables description caching
	cacheTTL time.Duration
}

func NewCollector(c domain.TvilClient, s domain.TableStore, cache domain.Cache, ttl time.Duration) *Collector {
	return &Collector{client: c, store: s, cache: cache, cacheTTL: ttl}
}

// Run reads the run date's catalog and emits all per-hotel offers in catalog
// order. A missing catalog yields an empty result, not an error.
func (c *Collector) Run(ctx context.Context, runDate time.Time) ([]domain.RoomOffer, error) {
	date := runDate.Format("2006-01-02")
	hotels, err := c.store.ReadHotels(date)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("date", date).Msg("no hotel catalog for date, nothing to collect")
			return nil, nil
		}
		return nil, err
	}
	if len(hotels) == 0 {
		log.Warn().Str("date", date).Msg("hotel catalog is empty")
		return nil, nil
	}
	log.Info().Int("hotels", len(hotels)).Str("date", date).Msg("collecting room offers")

	arrival := runDate.AddDate(0, 0, 1)
	departure := runDate.AddDate(0, 0, 2)

	var all []domain.RoomOffer
	for i, h := range hotels {
		log.Info().Int("n", i+1).Int("of", len(hotels)).Str("hotel", h.Name).Str("id", h.ID).Msg("processing hotel")
		all = append(all, c.collectHotel(ctx, h, date, arrival, departure)...)
	}

	if len(all) == 0 {
		log.Warn().Str("date", date).Msg("no room offers collected, table not written")
		return nil, nil
	}
	observability.RoomsCollected.Add(float64(len(all)))

	if err := c.store.WriteRooms(date, all); err != nil {
		log.Error().Err(err).Str("date", date).Msg("writing room table failed")
		return all, err
	}
	log.Info().Int("rooms", len(all)).Str("date", date).Msg("room offers written")
	return all, nil
}

func (c *Collector) collectHotel(ctx context.Context, h domain.Hotel, date string, arrival, departure time.Time) []domain.RoomOffer {
	if h.ID == "" {
		log.Warn().Str("hotel", h.Name).Msg("catalog row without id, skipping")
		return nil
	}

	// Page visit only seeds session state; failure is not fatal.
	if h.URL != "" {
		if err := c.client.VisitPage(ctx, h.URL); err != nil {
			log.Debug().Err(err).Str("hotel", h.Name).Msg("hotel page visit failed, continuing")
		}
	}

	descs := c.descriptions(ctx, h.ID, date)

	entries, err := c.client.Calculate(ctx, h.ID, arrival, departure)
	if err != nil {
		log.Warn().Err(err).Str("hotel", h.Name).Str("id", h.ID).Msg("calculation fetch failed, skipping hotel")
		observability.FetchErrors.WithLabelValues("collect").Inc()
		return nil
	}
	return buildOffers(h, descs, entries)
}

// descriptions returns the room-id → description map, consulting the cache
// first. Any cache or fetch failure degrades to an empty map.
func (c *Collector) descriptions(ctx context.Context, hotelID, date string) map[string]string {
	key := fmt.Sprintf("descriptions:%s:%s", hotelID, date)
	if c.cache != nil {
		var m map[string]string
		if ok, _ := c.cache.Get(ctx, key, &m); ok {
			return m
		}
	}
	m, err := c.client.FetchDescriptions(ctx, hotelID)
	if err != nil {
		log.Warn().Err(err).Str("id", hotelID).Msg("description fetch failed, continuing without names")
		return map[string]string{}
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, key, m, c.cacheTTL)
	}
	return m
}

// buildOffers maps calculation entries to offers. Element 0 is the hotel
// itself and its id becomes the canonical hotel id for the whole row set;
// exactly one element means no distinguishable room types and produces the
// single zeroed placeholder row.
func buildOffers(h domain.Hotel, descs map[string]string, entries []domain.CalcEntry) []domain.RoomOffer {
	if len(entries) == 0 {
		return nil
	}
	hotelID := entries[0].ID
	if hotelID == "" {
		hotelID = h.ID
	}

	if len(entries) == 1 {
		return []domain.RoomOffer{{
			HotelID:   hotelID,
			FreeRooms: "0",
			AllRooms:  "0",
			Price:     "0",
			URL:       h.URL,
		}}
	}

	out := make([]domain.RoomOffer, 0, len(entries)-1)
	for _, e := range entries[1:] {
		desc := descs[e.ID]
		out = append(out, domain.RoomOffer{
			HotelID:   hotelID,
			RoomName:  desc,
			RoomID:    e.ID,
			FreeRooms: strconv.Itoa(e.FreeCount),
			AllRooms:  strconv.Itoa(extract.TotalFromAvailabilityText(e.AvailabilityText)),
			Capacity:  extract.CapacityFromDescription(desc),
			Price:     e.Price,
			URL:       h.URL,
		})
	}
	return out
}
