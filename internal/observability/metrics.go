package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	realtimeConnections    prometheus.Gauge
	relayDeliveriesTotal   prometheus.Counter
	relayDroppedTotal      prometheus.Counter
	bridgeEventsTotal      *prometheus.CounterVec
	messagesCreatedTotal   prometheus.Counter
	voiceTokensIssuedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alo_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alo_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alo_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alo_realtime_connections",
			Help: "Number of websocket connections currently served by this node.",
		})

		relayDeliveriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alo_relay_deliveries_total",
			Help: "Events enqueued to realtime subscribers.",
		})

		relayDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alo_relay_dropped_total",
			Help: "Events dropped because a subscriber queue was full.",
		})

		bridgeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alo_bridge_events_total",
			Help: "Relay events exchanged with other nodes.",
		}, []string{"transport", "direction"})

		messagesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alo_messages_created_total",
			Help: "Messages persisted by the API.",
		})

		voiceTokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alo_voice_tokens_issued_total",
			Help: "Voice access tokens minted.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			realtimeConnections,
			relayDeliveriesTotal,
			relayDroppedTotal,
			bridgeEventsTotal,
			messagesCreatedTotal,
			voiceTokensIssuedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RealtimeConnections exposes the active websocket gauge.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// RelayDeliveries exposes the counter of enqueued realtime events.
func RelayDeliveries() prometheus.Counter {
	RegisterMetrics()
	return relayDeliveriesTotal
}

// RelayDropped exposes the counter of events dropped for slow subscribers.
func RelayDropped() prometheus.Counter {
	RegisterMetrics()
	return relayDroppedTotal
}

// BridgeEvents exposes the cross-node event counter labelled by transport and direction.
func BridgeEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return bridgeEventsTotal
}

// MessagesCreated exposes the counter of persisted messages.
func MessagesCreated() prometheus.Counter {
	RegisterMetrics()
	return messagesCreatedTotal
}

// VoiceTokensIssued exposes the counter of minted voice tokens.
func VoiceTokensIssued() prometheus.Counter {
	RegisterMetrics()
	return voiceTokensIssuedTotal
}
