package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Check-in pipeline
	// ============================================
	CheckinOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_checkin_outcomes_total",
			Help: "Terminal outcomes of check-in pipeline runs by stage",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_pipeline_stage_duration_seconds",
			Help:    "Duration of individual check-in pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// ============================================
	// Verification oracle
	// ============================================
	OracleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_oracle_decisions_total",
			Help: "Verification oracle decisions (verified/rejected)",
		},
		[]string{"decision"},
	)

	OracleFailClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_oracle_fail_closed_total",
			Help: "Oracle calls rejected fail-closed due to model or parse errors",
		},
		[]string{"cause"},
	)

	// ============================================
	// Sponsorship relay
	// ============================================
	SponsorSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_sponsor_submissions_total",
			Help: "Transactions forwarded to the gas-sponsoring relay",
		},
		[]string{"result"},
	)

	SponsorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_sponsor_duration_seconds",
		Help:    "Duration of sponsor-and-submit relay calls",
		Buckets: prometheus.DefBuckets,
	})

	// ============================================
	// Chain client
	// ============================================
	FinalityWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_finality_wait_duration_seconds",
		Help:    "Time spent polling for transaction finality",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	ChainRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_chain_requests_failed_total",
			Help: "Failed fullnode REST requests",
		},
		[]string{"endpoint"},
	)

	// ============================================
	// Database
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	// ============================================
	// NATS events
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_nats_events_published_total",
			Help: "Events published to NATS by subject",
		},
		[]string{"subject"},
	)

	// ============================================
	// WebSocket push
	// ============================================
	WSActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_ws_active_connections",
		Help: "Number of active WebSocket status-push connections",
	})

	WSMessagesPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backend_ws_messages_pushed_total",
		Help: "Total status messages pushed over WebSocket",
	})
)
