package app_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tvilstat/internal/domain"
)

// ---- fakes ----

type fakePage struct {
	hotels []domain.Hotel
	next   string
	err    error
}

type fakeClient struct {
	pages       map[string]fakePage
	fetches     int
	descs       map[string]map[string]string
	descErr     error
	descFetches int
	calcs       map[string][]domain.CalcEntry
	calcErr     map[string]error
	visited     []string
}

func (f *fakeClient) SearchURL(arrival, departure time.Time) string { return "page-1" }

func (f *fakeClient) FetchCatalogPage(ctx context.Context, pageURL string) ([]domain.Hotel, string, error) {
	f.fetches++
	p, ok := f.pages[pageURL]
	if !ok {
		return nil, "", fmt.Errorf("unknown page %q", pageURL)
	}
	return p.hotels, p.next, p.err
}

func (f *fakeClient) FetchDescriptions(ctx context.Context, hotelID string) (map[string]string, error) {
	f.descFetches++
	if f.descErr != nil {
		return nil, f.descErr
	}
	m, ok := f.descs[hotelID]
	if !ok {
		return map[string]string{}, nil
	}
	return m, nil
}

func (f *fakeClient) Calculate(ctx context.Context, hotelID string, arrival, departure time.Time) ([]domain.CalcEntry, error) {
	if err := f.calcErr[hotelID]; err != nil {
		return nil, err
	}
	return f.calcs[hotelID], nil
}

func (f *fakeClient) VisitPage(ctx context.Context, pageURL string) error {
	f.visited = append(f.visited, pageURL)
	return nil
}

type fakeStore struct {
	hotels   map[string][]domain.Hotel
	rooms    map[string][]domain.RoomOffer
	stats    map[string][]domain.DailyStatistic
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hotels: map[string][]domain.Hotel{},
		rooms:  map[string][]domain.RoomOffer{},
		stats:  map[string][]domain.DailyStatistic{},
	}
}

func (s *fakeStore) WriteHotels(date string, hotels []domain.Hotel) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.hotels[date] = hotels
	return nil
}

func (s *fakeStore) ReadHotels(date string) ([]domain.Hotel, error) {
	h, ok := s.hotels[date]
	if !ok {
		return nil, os.ErrNotExist
	}
	return h, nil
}

func (s *fakeStore) WriteRooms(date string, rooms []domain.RoomOffer) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.rooms[date] = rooms
	return nil
}

func (s *fakeStore) ReadRooms(date string) ([]domain.RoomOffer, error) {
	r, ok := s.rooms[date]
	if !ok {
		return nil, os.ErrNotExist
	}
	return r, nil
}

func (s *fakeStore) WriteStatistics(date string, stats []domain.DailyStatistic) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.stats[date] = stats
	return nil
}

type fakeCache struct {
	store map[string]map[string]string
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	m, ok := dst.(*map[string]string)
	if !ok {
		return false, errors.New("unexpected dst type")
	}
	*m = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.store == nil {
		c.store = map[string]map[string]string{}
	}
	if m, ok := v.(map[string]string); ok {
		c.store[key] = m
	}
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

type fakeArchive struct {
	saved map[string][]domain.DailyStatistic
	err   error
}

func (a *fakeArchive) SaveStatistics(ctx context.Context, date string, stats []domain.DailyStatistic) error {
	if a.err != nil {
		return a.err
	}
	if a.saved == nil {
		a.saved = map[string][]domain.DailyStatistic{}
	}
	a.saved[date] = stats
	return nil
}
