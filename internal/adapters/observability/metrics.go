package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	CatalogPages = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tvil", Name: "catalog_pages_total", Help: "Catalog pages fetched."},
	)
	HotelsHarvested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tvil", Name: "hotels_total", Help: "Hotels harvested."},
	)
	RoomsCollected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tvil", Name: "rooms_total", Help: "Room offers collected."},
	)
	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tvil", Name: "fetch_errors_total", Help: "Failed upstream fetches."},
		[]string{"stage"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tvil", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tvil", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tvil", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve starts the ops listener in the background when addr is non-empty,
// exposing /metrics and /healthz for the duration of the run.
func Serve(addr string) {
	if addr == "" {
		return // disabled
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", MetricsHandler(InitRegistry()))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ops server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(CatalogPages, HotelsHarvested, RoomsCollected, FetchErrors, ExternalRequests, ExternalLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveExternal(endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
