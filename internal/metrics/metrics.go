package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion cycle metrics
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherhub_ingest_cycles_total",
			Help: "Total number of ingestion cycle triggers by outcome",
		},
		[]string{"status"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatherhub_ingest_cycle_duration_seconds",
			Help:    "Duration of complete ingestion cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Source adapter metrics
	AdapterFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherhub_adapter_fetches_total",
			Help: "Total number of source adapter invocations by outcome",
		},
		[]string{"adapter", "status"},
	)

	RawEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_raw_events_total",
			Help: "Total number of raw events yielded by source adapters",
		},
	)

	// Normalization metrics
	EventsNormalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_events_normalized_total",
			Help: "Total number of raw events normalized into canonical events",
		},
	)

	EventsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_events_rejected_total",
			Help: "Total number of raw events rejected during normalization",
		},
	)

	// Persistence metrics
	EventsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_events_saved_total",
			Help: "Total number of canonical events inserted into the store",
		},
	)

	EventsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_events_skipped_total",
			Help: "Total number of events skipped during upsert (already present or failed)",
		},
	)

	// Cache metrics
	CacheRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherhub_cache_refreshes_total",
			Help: "Total number of feed cache refreshes by outcome",
		},
		[]string{"status"},
	)

	CacheReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherhub_cache_reads_total",
			Help: "Total number of feed cache reads by outcome",
		},
		[]string{"status"},
	)

	// Distribution metrics
	NewEventsBroadcastTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_new_events_broadcast_total",
			Help: "Total number of new events pushed to subscribers",
		},
	)

	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherhub_ws_connected_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)
)
