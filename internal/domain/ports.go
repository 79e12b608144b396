package domain

import (
	"context"
	"net/http"
	"time"
)

// CalcEntry is one element of the reserve-calculation response. Element 0 is
// the hotel itself (only its ID matters); the rest are room types.
type CalcEntry struct {
	ID string
	// Price is the raw decimal text from the API, "0" when absent.
	Price     string
	FreeCount int
	// AvailabilityText is the free-form "Свободны X из Y" fragment.
	AvailabilityText string
}

// TvilClient is the typed boundary to the tvil.ru JSON API.
type TvilClient interface {
	// SearchURL builds the first catalog page URL for the stay-date range.
	SearchURL(arrival, departure time.Time) string
	// FetchCatalogPage returns the hotels on one page plus the normalized
	// next-page URL ("" on the last page). Records missing id or title are
	// skipped inside the client.
	FetchCatalogPage(ctx context.Context, pageURL string) (hotels []Hotel, next string, err error)
	// FetchDescriptions maps room object ids to their free-text descriptions.
	FetchDescriptions(ctx context.Context, hotelID string) (map[string]string, error)
	// Calculate runs the per-hotel reserve calculation for the stay dates.
	Calculate(ctx context.Context, hotelID string, arrival, departure time.Time) ([]CalcEntry, error)
	// VisitPage performs a best-effort GET purely to seed session state.
	VisitPage(ctx context.Context, pageURL string) error
}

// TableStore persists the date-partitioned tables. Reads of a missing
// partition surface os.ErrNotExist; callers treat it as an empty table.
type TableStore interface {
	WriteHotels(date string, hotels []Hotel) error
	ReadHotels(date string) ([]Hotel, error)
	WriteRooms(date string, rooms []RoomOffer) error
	ReadRooms(date string) ([]RoomOffer, error)
	WriteStatistics(date string, stats []DailyStatistic) error
}

// Cache is an optional collaborator; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Notifier delivers a best-effort out-of-band summary. Implementations never
// return errors; failures are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// SessionBootstrapper acquires the cookies the API expects before direct
// HTTP calls are made. Failure is non-fatal for the pipeline.
type SessionBootstrapper interface {
	AcquireSession(ctx context.Context) ([]*http.Cookie, error)
}

// StatisticsArchive mirrors daily statistics into long-term storage.
// Optional; CSV remains the canonical output.
type StatisticsArchive interface {
	SaveStatistics(ctx context.Context, date string, stats []DailyStatistic) error
}
