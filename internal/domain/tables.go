package domain

import (
	"math"
	"strconv"
	"strings"
)

// Hotel is one catalog record for a run date. Fields mirror the CSV columns;
// RoomsTotal stays a string because upstream sometimes omits it entirely.
type Hotel struct {
	ID         string
	Name       string
	Address    string
	City       string
	URL        string
	RoomsTotal string
}

// RoomOffer is one bookable room type at a hotel for a run date. A hotel with
// no distinguishable room types is represented by a single placeholder row
// with empty RoomID/RoomName and zeroed numeric fields.
type RoomOffer struct {
	HotelID   string
	RoomName  string
	RoomID    string
	FreeRooms string
	AllRooms  string
	Capacity  string
	Price     string
	URL       string
}

// IsPlaceholder reports whether the offer is the zeroed stand-in row emitted
// for hotels without distinguishable room types.
func (r RoomOffer) IsPlaceholder() bool { return r.RoomID == "" && r.RoomName == "" }

// DailyStatistic is the per-hotel aggregate for one run date.
type DailyStatistic struct {
	HotelID     string
	Name        string
	RoomsTotal  int
	FreeRooms   int
	MaxCapacity int
	// Percent is free rooms over the declared room count, already rounded
	// to two decimals. Zero when the declared count is unknown.
	Percent float64
	Date    string
	// MinPrice is the cheapest bookable offer; nil when no offer had both
	// free rooms and a positive price.
	MinPrice *float64
}

// PercentString renders Percent with minimal digits but at least one decimal
// ("20.0", "33.33", "0.0"), keeping day-over-day diffs stable.
func (s DailyStatistic) PercentString() string {
	v := strconv.FormatFloat(s.Percent, 'f', -1, 64)
	if !strings.Contains(v, ".") {
		v += ".0"
	}
	return v
}

// MinPriceString renders MinPrice with two decimals, or "" when unset.
func (s DailyStatistic) MinPriceString() string {
	if s.MinPrice == nil {
		return ""
	}
	return strconv.FormatFloat(*s.MinPrice, 'f', 2, 64)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
