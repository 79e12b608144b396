package app_test

import (
	"context"
	"testing"

	"tvilstat/internal/app"
	"tvilstat/internal/domain"
)

func TestAggregator_RollsUpPerHotel(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{
		{ID: "1", Name: "A", RoomsTotal: "10"},
	}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "2", AllRooms: "5", Capacity: "3", Price: "100"},
		{HotelID: "1", RoomID: "r2", FreeRooms: "0", AllRooms: "4", Capacity: "4", Price: "50"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 row, got %d", len(stats))
	}
	st := stats[0]
	if st.FreeRooms != 2 {
		t.Fatalf("free rooms: got %d, want 2", st.FreeRooms)
	}
	// only the bookable row contributes: 2 free * 3 beds
	if st.MaxCapacity != 6 {
		t.Fatalf("max capacity: got %d, want 6", st.MaxCapacity)
	}
	if st.PercentString() != "20.0" {
		t.Fatalf("percent: got %q, want \"20.0\"", st.PercentString())
	}
	// the cheaper room has no free inventory, so its price is ignored
	if st.MinPriceString() != "100.00" {
		t.Fatalf("min price: got %q, want \"100.00\"", st.MinPriceString())
	}
	if st.Date != "2026-08-31" {
		t.Fatalf("date: got %q", st.Date)
	}
	if len(store.stats["2026-08-31"]) != 1 {
		t.Fatalf("expected statistics table to be written")
	}
}

func TestAggregator_HotelWithoutOffersGetsZeroRow(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{
		{ID: "1", Name: "A", RoomsTotal: "10"},
		{ID: "2", Name: "B", RoomsTotal: "4"},
	}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "1", Capacity: "2", Price: "200"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected a row per catalog hotel, got %d", len(stats))
	}
	zero := stats[1]
	if zero.HotelID != "2" || zero.FreeRooms != 0 || zero.MaxCapacity != 0 || zero.MinPrice != nil {
		t.Fatalf("unexpected zero row: %+v", zero)
	}
	if zero.PercentString() != "0.0" {
		t.Fatalf("percent of offerless hotel: got %q, want \"0.0\"", zero.PercentString())
	}
}

func TestAggregator_PercentRounding(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A", RoomsTotal: "3"}}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "1", Price: "10"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := stats[0].PercentString(); got != "33.33" {
		t.Fatalf("percent: got %q, want \"33.33\"", got)
	}
}

func TestAggregator_UnknownDeclaredCountMeansZeroPercent(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A"}} // rooms_number empty
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "5", Capacity: "2", Price: "10"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	st := stats[0]
	if st.FreeRooms != 5 || st.MaxCapacity != 10 {
		t.Fatalf("unexpected rollup: %+v", st)
	}
	if st.PercentString() != "0.0" {
		t.Fatalf("percent without declared count: got %q, want \"0.0\"", st.PercentString())
	}
}

func TestAggregator_MalformedNumbersCountAsZero(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A", RoomsTotal: "х"}}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "нет", Capacity: "два", Price: "дорого"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	st := stats[0]
	if st.FreeRooms != 0 || st.MaxCapacity != 0 || st.MinPrice != nil || st.Percent != 0 {
		t.Fatalf("malformed fields must degrade to zero: %+v", st)
	}
}

func TestAggregator_OffersOutsideCatalogAreIgnored(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A", RoomsTotal: "2"}}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "1", Price: "5"},
		{HotelID: "ghost", RoomID: "r9", FreeRooms: "9", Price: "1"},
	}

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stats) != 1 || stats[0].HotelID != "1" || stats[0].FreeRooms != 1 {
		t.Fatalf("offers for unknown hotels must be dropped: %+v", stats)
	}
}

func TestAggregator_MissingTablesAreNotErrors(t *testing.T) {
	store := newFakeStore()

	stats, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("missing catalog must not be an error: %v", err)
	}
	if stats != nil {
		t.Fatalf("expected no statistics, got %+v", stats)
	}

	// catalog present but room table missing
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A"}}
	stats, err = app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("missing room table must not be an error: %v", err)
	}
	if stats != nil {
		t.Fatalf("expected no statistics, got %+v", stats)
	}
}

func TestAggregator_RerunIsDeterministic(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{
		{ID: "3", Name: "C", RoomsTotal: "1"},
		{ID: "1", Name: "A", RoomsTotal: "2"},
		{ID: "2", Name: "B", RoomsTotal: "3"},
	}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "2", RoomID: "r2", FreeRooms: "1", Price: "20"},
		{HotelID: "1", RoomID: "r1", FreeRooms: "1", Price: "10"},
	}

	first, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := app.NewAggregator(store, nil).Run(context.Background(), runDate)
		if err != nil {
			t.Fatalf("rerun: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("rerun changed row count")
		}
		for j := range first {
			if again[j].HotelID != first[j].HotelID {
				t.Fatalf("rerun changed row order: %v vs %v", again[j].HotelID, first[j].HotelID)
			}
		}
	}
	// catalog order, not offer or id order
	if first[0].HotelID != "3" || first[1].HotelID != "1" || first[2].HotelID != "2" {
		t.Fatalf("expected catalog order, got %+v", first)
	}
}

func TestAggregator_MirrorReceivesRowsAndFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	store.hotels["2026-08-31"] = []domain.Hotel{{ID: "1", Name: "A", RoomsTotal: "2"}}
	store.rooms["2026-08-31"] = []domain.RoomOffer{
		{HotelID: "1", RoomID: "r1", FreeRooms: "1", Price: "10"},
	}

	archive := &fakeArchive{}
	stats, err := app.NewAggregator(store, archive).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(archive.saved["2026-08-31"]) != 1 {
		t.Fatalf("expected mirror to receive the rows")
	}

	archive.err = context.DeadlineExceeded
	if _, err := app.NewAggregator(store, archive).Run(context.Background(), runDate); err != nil {
		t.Fatalf("mirror failure must not fail the run: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
