package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Collector implements the playback metrics surface with Prometheus
// counters and gauges.
type Collector struct {
	ActiveSubscriptions prometheus.Gauge
	SubscriptionsTotal  prometheus.Counter
	TracksPlayed        prometheus.Counter
	TracksFailed        prometheus.Counter
	Rejoins             prometheus.Counter
	SessionsDestroyed   prometheus.Counter
}

// NewCollector creates and registers all metrics on the default registry.
func NewCollector() *Collector {
	return &Collector{
		ActiveSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "eniwa_active_subscriptions",
			Help: "Current number of live voice subscriptions",
		}),
		SubscriptionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eniwa_subscriptions_total",
			Help: "Total number of voice subscriptions created",
		}),
		TracksPlayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eniwa_tracks_played_total",
			Help: "Total number of tracks that started playing",
		}),
		TracksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eniwa_tracks_failed_total",
			Help: "Total number of tracks skipped because their resource could not be materialized",
		}),
		Rejoins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eniwa_voice_rejoins_total",
			Help: "Total number of scheduled voice rejoin attempts",
		}),
		SessionsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eniwa_voice_sessions_destroyed_total",
			Help: "Total number of voice sessions torn down",
		}),
	}
}

// SubscriptionOpened records a new subscription.
func (c *Collector) SubscriptionOpened() {
	c.SubscriptionsTotal.Inc()
	c.ActiveSubscriptions.Inc()
}

// SubscriptionClosed records a terminated subscription.
func (c *Collector) SubscriptionClosed() { c.ActiveSubscriptions.Dec() }

// TrackStarted records a track that began playback.
func (c *Collector) TrackStarted() { c.TracksPlayed.Inc() }

// TrackFailed records a track skipped for a materialization failure.
func (c *Collector) TrackFailed() { c.TracksFailed.Inc() }

// RejoinScheduled records a scheduled transport rejoin.
func (c *Collector) RejoinScheduled() { c.Rejoins.Inc() }

// SessionDestroyed records a voice session teardown.
func (c *Collector) SessionDestroyed() { c.SessionsDestroyed.Inc() }

// Serve exposes /metrics on addr until the process exits.
func Serve(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
